package handler

import (
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Course     *CourseHandler
	Session    *SessionHandler
	Attendance *AttendanceHandler
	Biometric  *BiometricHandler
	Dashboard  *DashboardHandler
	Stats      *StatsHandler
	Seed       *SeedHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Profile:    NewProfileHandler(svc.Profile),
		Course:     NewCourseHandler(svc.Course, svc.Schedule, svc.Export),
		Session:    NewSessionHandler(svc.Session),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Biometric:  NewBiometricHandler(svc.Biometric),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
		Stats:      NewStatsHandler(svc.Stats, cfg.Feature.PublicStats),
		Seed:       NewSeedHandler(svc.Seed),
	}
}
