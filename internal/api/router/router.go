package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sgte/backend/config"
	"sgte/backend/internal/api/handler"
	"sgte/backend/internal/api/middleware"
	"sgte/backend/pkg/jwt"
	"sgte/backend/pkg/redis"
	"sgte/backend/pkg/run"
)

// 批量操作与导出的限流：每操作员每分钟 10 次
const (
	heavyOpLimit  = 10
	heavyOpWindow = time.Minute
)

// markSentRoles 可标记卷宗已寄送的角色；普通操作员不可
var markSentRoles = []string{jwt.RoleAdmin, jwt.RoleMailer}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// 注册 RUN 校验标签
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := run.RegisterValidator(v); err != nil {
			logger.Fatal("注册 RUN 校验器失败", zap.Error(err))
		}
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	heavy := middleware.RateLimit(rdb, heavyOpLimit, heavyOpWindow, logger)

	// ── API v1（全部需要操作员 Token）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	{
		v1.GET("/identity/validate", h.Student.ValidateIdentity)

		// 学生模块
		students := v1.Group("/students")
		{
			students.POST("", h.Student.CreateStudent)
			students.GET("", h.Student.SearchStudents)
			students.GET("/checklist-status", h.Student.ChecklistStatus)
			students.GET("/:run", h.Student.GetStudent)
			students.PUT("/:run", h.Student.UpdateStudent)
			students.DELETE("/:run", middleware.RoleAuth(jwt.RoleAdmin), h.Student.DeleteStudent)
			students.GET("/:run/projects", h.Student.ListProjects)
			students.GET("/:run/documents", h.Student.ListDocuments)
			students.GET("/:run/checklist", h.Student.GetChecklist)
		}

		// 材料模块
		documents := v1.Group("/documents")
		{
			documents.POST("", h.Document.UpsertDocument)
			documents.POST("/upload", h.Document.UploadDocument)
			documents.PUT("/:id/validation", h.Document.SetValidation)
			documents.DELETE("/:id", middleware.RoleAuth(jwt.RoleAdmin), h.Document.DeleteDocument)
		}

		// 项目模块（含委员会、里程碑与卷宗）
		projects := v1.Group("/projects")
		{
			projects.POST("", h.Project.CreateProject)
			projects.GET("/:id", h.Project.GetProject)
			projects.DELETE("/:id", middleware.RoleAuth(jwt.RoleAdmin), h.Project.DeleteProject)
			projects.PUT("/:id/committee", h.Project.UpdateCommittee)
			projects.POST("/:id/milestones", h.Project.AddMilestone)
			projects.GET("/:id/milestones.ics", h.Project.ExportMilestones)

			projects.GET("/:id/expediente", h.Expediente.GetExpediente)
			projects.PUT("/:id/expediente", h.Expediente.UpdateExpediente)
			projects.GET("/:id/expediente/status", h.Expediente.GetStatus)
			projects.PUT("/:id/expediente/status", h.Expediente.SetStatus)
			projects.POST("/:id/expediente/sent", middleware.RoleAuth(markSentRoles...), h.Expediente.MarkSent)
			projects.POST("/:id/expediente/approval", h.Expediente.RecordApproval)
			projects.POST("/:id/expediente/graduation", h.Expediente.RecordGraduation)
			projects.POST("/:id/expediente/sync", h.Expediente.SyncWithChecklist)
		}
		v1.PUT("/milestones/:id", h.Project.UpdateMilestone)

		// 卷宗模块
		expedientes := v1.Group("/expedientes")
		{
			expedientes.GET("", h.Expediente.ListExpedientes)
			expedientes.GET("/stats", h.Expediente.GetStats)
			expedientes.POST("/bulk-status", middleware.RoleAuth(jwt.RoleAdmin), heavy, h.Expediente.BulkSetStatus)
		}

		v1.GET("/dashboard", h.Dashboard.GetMetrics)

		// 导出与审计
		v1.GET("/export/expedientes", heavy, h.Export.ExportExpedientes)
		v1.GET("/export/audit", middleware.RoleAuth(jwt.RoleAdmin), heavy, h.Export.ExportAuditLog)
		v1.GET("/audit", middleware.RoleAuth(jwt.RoleAdmin), h.Audit.ListAuditLogs)
	}

	return r
}
