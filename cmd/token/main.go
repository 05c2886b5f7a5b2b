// token 为操作员签发或吊销访问 Token。
//
//	go run ./cmd/token -operator jefa.carrera -role admin -ttl 12h
//	go run ./cmd/token -revoke <jti> -ttl 12h
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"sgte/backend/config"
	"sgte/backend/pkg/jwt"
	applogger "sgte/backend/pkg/logger"
	"sgte/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	operator := flag.String("operator", "", "操作员标识（写入审计日志）")
	role := flag.String("role", jwt.RoleOperator, "角色: admin | operador | mailer")
	ttl := flag.Duration("ttl", 0, "有效期，默认取 auth.token_ttl")
	revoke := flag.String("revoke", "", "吊销指定 jti（需要启用 Redis）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mgr := jwt.NewManager(&cfg.Auth)
	if *ttl <= 0 {
		*ttl = mgr.TTL()
	}

	if *revoke != "" {
		if !cfg.Redis.Enabled {
			logger.Fatal("吊销 Token 需要启用 Redis")
		}
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.RevokeToken(ctx, *revoke, *ttl); err != nil {
			logger.Fatal("吊销 Token 失败", zap.Error(err))
		}
		logger.Info("Token 已吊销", zap.String("jti", *revoke))
		return
	}

	if *operator == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -operator")
		flag.Usage()
		os.Exit(2)
	}
	if !jwt.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "无效角色: %s\n", *role)
		os.Exit(2)
	}

	token, claims, err := mgr.Issue(*operator, *role, *ttl)
	if err != nil {
		logger.Fatal("签发 Token 失败", zap.Error(err))
	}
	logger.Info("Token 已签发",
		zap.String("operator", claims.OperatorID),
		zap.String("role", claims.Role),
		zap.String("jti", claims.ID),
		zap.Time("expires_at", claims.ExpiresAt.Time),
	)
	fmt.Println(token)
}
