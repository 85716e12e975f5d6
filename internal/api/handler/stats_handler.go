package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// StatsHandler 统计 HTTP 处理器
type StatsHandler struct {
	statsSvc     service.StatsService
	publicEnable bool
}

// NewStatsHandler 创建 StatsHandler；publicEnable 控制匿名统计接口
func NewStatsHandler(statsSvc service.StatsService, publicEnable bool) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc, publicEnable: publicEnable}
}

// Dashboard 完整统计（管理员、督导）
// GET /api/v1/stats
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsSvc.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, stats)
}

// Public 匿名统计，仅含计数
// GET /api/v1/stats/public
func (h *StatsHandler) Public(c *gin.Context) {
	if !h.publicEnable {
		response.NotFound(c, 18001, "public stats are disabled")
		return
	}

	stats, err := h.statsSvc.GetPublicStats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	c.Header("Cache-Control", "public, max-age=30")
	response.OK(c, stats)
}

// Invalidate 清空统计缓存
// DELETE /api/v1/stats/cache
func (h *StatsHandler) Invalidate(c *gin.Context) {
	if err := h.statsSvc.Invalidate(c.Request.Context()); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
