package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// DashboardHandler 各角色仪表盘 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Admin GET /api/v1/dashboard/admin
func (h *DashboardHandler) Admin(c *gin.Context) {
	data, err := h.dashboardSvc.Admin(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, data)
}

// Supervisor GET /api/v1/dashboard/supervisor
func (h *DashboardHandler) Supervisor(c *gin.Context) {
	data, err := h.dashboardSvc.Supervisor(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, data)
}

// Instructor GET /api/v1/dashboard/instructor
func (h *DashboardHandler) Instructor(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.dashboardSvc.Instructor(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, data)
}

// Student GET /api/v1/dashboard/student
func (h *DashboardHandler) Student(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.dashboardSvc.Student(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, data)
}
