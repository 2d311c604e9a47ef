package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timereport/backend/config"
	"timereport/backend/internal/api/handler"
	"timereport/backend/internal/api/middleware"
	"timereport/backend/pkg/jwt"
	"timereport/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（管理员）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin"), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth("admin"), h.User.GetUser)
				users.POST("", middleware.RoleAuth("admin"), h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser) // admin 或本人（Service 层鉴权）
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
			}

			// 客户模块
			clients := authorized.Group("/clients")
			{
				clients.GET("", h.Client.ListClients)
				clients.GET("/:id", h.Client.GetClient)
				clients.POST("", middleware.RoleAuth("admin"), h.Client.CreateClient)
				clients.PUT("/:id", middleware.RoleAuth("admin"), h.Client.UpdateClient)
				clients.DELETE("/:id", middleware.RoleAuth("admin"), h.Client.DeleteClient)
			}

			// 项目模块
			projects := authorized.Group("/projects")
			{
				projects.GET("", h.Project.ListProjects)
				projects.GET("/:id", h.Project.GetProject)
				projects.POST("", middleware.RoleAuth("admin"), h.Project.CreateProject)
				projects.PUT("/:id", middleware.RoleAuth("admin"), h.Project.UpdateProject)
				projects.DELETE("/:id", middleware.RoleAuth("admin"), h.Project.DeleteProject)
			}

			// 任务模块
			tasks := authorized.Group("/tasks")
			{
				tasks.GET("", h.Task.ListTasks)
				tasks.GET("/:id", h.Task.GetTask)
				tasks.POST("", middleware.RoleAuth("admin"), h.Task.CreateTask)
				tasks.PUT("/:id", middleware.RoleAuth("admin"), h.Task.UpdateTask)
				tasks.DELETE("/:id", middleware.RoleAuth("admin"), h.Task.DeleteTask)
			}

			// 考勤模块
			attendances := authorized.Group("/attendances")
			{
				attendances.GET("", h.Attendance.ListAttendances)
				attendances.GET("/:id", h.Attendance.GetAttendance)
				attendances.POST("", h.Attendance.CreateAttendance)
				attendances.PUT("/:id", h.Attendance.UpdateAttendance)
			}

			// 工时模块
			timeLogs := authorized.Group("/time-logs")
			{
				timeLogs.GET("", h.TimeLog.ListTimeLogs)
				timeLogs.POST("", h.TimeLog.CreateTimeLog)
				timeLogs.POST("/batch", h.TimeLog.BatchCreateTimeLogs)
				timeLogs.PUT("/:id", h.TimeLog.UpdateTimeLog)
				timeLogs.DELETE("/:id", h.TimeLog.DeleteTimeLog)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/monthly-report", h.Export.ExportMonthlyReport)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
