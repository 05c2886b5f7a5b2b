package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sgte/backend/config"
	"sgte/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-at-least-16",
		TokenTTL:  time.Hour,
		Issuer:    "sgte",
	})
}

func protectedEngine(mgr *jwt.Manager, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(mgr, nil, zap.NewNop())}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuth(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextOperatorID))
	})
	r.GET("/p", handlers...)
	return r
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	token, _, err := mgr.Issue("jefa.carrera", jwt.RoleOperator, 0)
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"签名无效", "Bearer " + token + "x", http.StatusUnauthorized},
		{"有效 Token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedEngine(mgr).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("期望 %d，实际 %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && w.Body.String() != "jefa.carrera" {
				t.Errorf("操作员应注入上下文，实际 %q", w.Body.String())
			}
		})
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	mgr := newTestJWT()
	operador, _, _ := mgr.Issue("ayudante", jwt.RoleOperator, 0)
	admin, _, _ := mgr.Issue("jefa.carrera", jwt.RoleAdmin, 0)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"普通操作员", operador, http.StatusForbidden},
		{"管理员", admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/p", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			protectedEngine(mgr, jwt.RoleAdmin).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("期望 %d，实际 %d", tt.want, w.Code)
			}
		})
	}
}

func TestRoleAuth_MultipleRoles(t *testing.T) {
	mgr := newTestJWT()
	operador, _, _ := mgr.Issue("ayudante", jwt.RoleOperator, 0)
	admin, _, _ := mgr.Issue("jefa.carrera", jwt.RoleAdmin, 0)
	mailer, _, _ := mgr.Issue("envio-actas", jwt.RoleMailer, 0)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"普通操作员", operador, http.StatusForbidden},
		{"管理员", admin, http.StatusOK},
		{"发件程序", mailer, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/p", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			protectedEngine(mgr, jwt.RoleAdmin, jwt.RoleMailer).ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("期望 %d，实际 %d", tt.want, w.Code)
			}
		})
	}
}

// ── RateLimit ──

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/bulk", RateLimit(nil, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/bulk", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("未启用 Redis 时应放行，第 %d 次实际 %d", i+1, w.Code)
		}
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/r", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	upstream := "3f2b8f0e-8c1a-4d3e-9a61-2b7c5d9e0f14"
	req := httptest.NewRequest("GET", "/r", nil)
	req.Header.Set("X-Request-ID", upstream)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != upstream || w.Body.String() != upstream {
		t.Errorf("应沿用上游 UUID，实际 %q", w.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest("GET", "/r", nil)
	req.Header.Set("X-Request-ID", "abc\nforged=1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got == "" || strings.Contains(got, "forged") {
		t.Errorf("非 UUID 的请求 ID 应被替换，实际 %q", got)
	}
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/c", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/c", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("预检请求期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("允许的来源应回写，实际 %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Error("应暴露 Content-Disposition")
	}

	req = httptest.NewRequest("GET", "/c", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("未允许的来源不应返回 CORS 头")
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/b", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/b", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际 %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/b", strings.NewReader("0123")))
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}

// ── SecurityHeaders ──

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/api/v1/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/x", nil))
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("安全响应头不完整: %v", w.Header())
	}
}
