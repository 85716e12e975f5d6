package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/api/handler"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/api/middleware"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/jwt"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/redis"
)

const (
	roleAdmin      = model.RoleAdmin
	roleSupervisor = model.RoleSupervisor
	roleInstructor = model.RoleInstructor
	roleStudent    = model.RoleStudent

	scheduleImportPath = "/api/v1/courses/:id/schedules/import"
)

// newEngine 创建带全局中间件的引擎
func newEngine(cfg *config.Config, health *handler.HealthHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, map[string]int64{
		scheduleImportPath: cfg.Server.UploadLimit,
	}))

	// ── 运维端点 ──
	r.GET("/health", health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	health *handler.HealthHandler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	r := newEngine(cfg, health, logger)
	limit := middleware.RateLimit(rdb, middleware.RateRule{
		Scope: "auth", Limit: cfg.Server.RateLimit, Window: cfg.Server.RateWindow,
	}, logger)
	// 在 JWTAuth 之后执行，按学生计数
	checkInLimit := middleware.RateLimit(rdb, middleware.RateRule{
		Scope: "check-in", Limit: cfg.Server.CheckInRate, Window: cfg.Server.RateWindow,
	}, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 公开接口
		v1.POST("/signup", limit, h.Auth.Signup)
		v1.GET("/stats/public", h.Stats.Public)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", limit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/complete-email", h.Auth.CompleteEmail)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户档案
			profiles := authorized.Group("/profiles")
			{
				profiles.GET("", middleware.RoleAuth(roleAdmin, roleSupervisor), h.Profile.List)
				profiles.GET("/:id", h.Profile.Get) // 本人或管理员、督导（Service 层鉴权）
				profiles.PUT("/:id/role", middleware.RoleAuth(roleAdmin), h.Profile.UpdateRole)
			}

			// 课程、选课、课表、导出
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.List)
				courses.POST("", middleware.RoleAuth(roleAdmin, roleInstructor), h.Course.Create)
				courses.GET("/:id", h.Course.Get)
				courses.POST("/:id/enrollments", middleware.RoleAuth(roleAdmin, roleInstructor), h.Course.Enroll)
				courses.DELETE("/:id/enrollments/:student_id", middleware.RoleAuth(roleAdmin, roleInstructor), h.Course.Unenroll)
				courses.GET("/:id/students", middleware.RoleAuth(roleAdmin, roleSupervisor, roleInstructor), h.Course.ListStudents)
				courses.GET("/:id/schedules", h.Course.ListSchedules)
				courses.POST("/:id/schedules/import", middleware.RoleAuth(roleAdmin, roleInstructor), h.Course.ImportSchedules)
				courses.GET("/:id/attendance/export", middleware.RoleAuth(roleAdmin, roleSupervisor, roleInstructor), h.Course.ExportAttendance)
			}

			// 签到会话
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Session.List)
				sessions.POST("", middleware.RoleAuth(roleAdmin, roleInstructor), h.Session.Create)
				sessions.POST("/check-in", middleware.RoleAuth(roleStudent), checkInLimit, h.Session.CheckIn)
				sessions.GET("/:id", h.Session.Get)
				sessions.POST("/:id/close", middleware.RoleAuth(roleAdmin, roleInstructor), h.Session.Close)
				sessions.GET("/:id/attendance", middleware.RoleAuth(roleAdmin, roleSupervisor, roleInstructor), h.Session.ListAttendance)
			}

			// 出勤记录
			attendance := authorized.Group("/attendance")
			{
				attendance.GET("/me", middleware.RoleAuth(roleStudent), h.Attendance.ListMine)
				attendance.PUT("/:id", middleware.RoleAuth(roleAdmin, roleInstructor), h.Attendance.UpdateStatus)
			}

			// 模拟指纹
			bio := authorized.Group("/biometric")
			{
				bio.POST("/verify", checkInLimit, h.Biometric.Verify)
				bio.GET("/status", h.Biometric.Status)
			}

			// 仪表盘
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/admin", middleware.RoleAuth(roleAdmin), h.Dashboard.Admin)
				dashboard.GET("/supervisor", middleware.RoleAuth(roleSupervisor, roleAdmin), h.Dashboard.Supervisor)
				dashboard.GET("/instructor", middleware.RoleAuth(roleInstructor), h.Dashboard.Instructor)
				dashboard.GET("/student", middleware.RoleAuth(roleStudent), h.Dashboard.Student)
			}

			// 统计
			authorized.GET("/stats", middleware.RoleAuth(roleAdmin, roleSupervisor), h.Stats.Dashboard)
			authorized.DELETE("/stats/cache", middleware.RoleAuth(roleAdmin), h.Stats.Invalidate)

			// 演示数据
			authorized.POST("/admin/seed", middleware.RoleAuth(roleAdmin), h.Seed.Seed)
		}
	}

	return r
}

// SetupMode 数据库未配置时的引导模式引擎：/health 与 /metrics 照常，其余请求一律 503
func SetupMode(cfg *config.Config, health *handler.HealthHandler, logger *zap.Logger) *gin.Engine {
	r := newEngine(cfg, health, logger)

	guide := middleware.SetupGuide{
		SetupRequired: true,
		Missing:       missingDatabaseSettings(&cfg.Database),
		Steps: []string{
			"copy config/config.example.yaml to config/config.yaml",
			"set db.host, db.name and db.user (or ATTEND_DB_HOST, ATTEND_DB_NAME, ATTEND_DB_USER)",
			"restart the server; migrations run automatically on startup",
		},
	}
	r.NoRoute(middleware.SetupMode(guide))

	return r
}

func missingDatabaseSettings(db *config.DatabaseConfig) []string {
	var missing []string
	if db.Host == "" {
		missing = append(missing, "db.host")
	}
	if db.Name == "" {
		missing = append(missing, "db.name")
	}
	if db.User == "" {
		missing = append(missing, "db.user")
	}
	return missing
}
