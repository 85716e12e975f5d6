package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// SeedHandler 演示数据 HTTP 处理器
type SeedHandler struct {
	seedSvc service.SeedService
}

// NewSeedHandler 创建 SeedHandler
func NewSeedHandler(seedSvc service.SeedService) *SeedHandler {
	return &SeedHandler{seedSvc: seedSvc}
}

// Seed 初始化演示数据（幂等）
// POST /api/v1/admin/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.seedSvc.SeedDemoData(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrSeedDisabled) {
			response.Forbidden(c, 17001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
