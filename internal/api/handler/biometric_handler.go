package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/biometric"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// BiometricHandler 模拟指纹验证 HTTP 处理器
type BiometricHandler struct {
	biometricSvc service.BiometricService
}

// NewBiometricHandler 创建 BiometricHandler
func NewBiometricHandler(biometricSvc service.BiometricService) *BiometricHandler {
	return &BiometricHandler{biometricSvc: biometricSvc}
}

// Verify 触发一次指纹扫描，请求会阻塞到扫描结束
// POST /api/v1/biometric/verify
func (h *BiometricHandler) Verify(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BiometricVerifyRequest
	// 请求体可为空
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, response.CodeInvalidParam, "invalid session_code")
		return
	}

	result, err := h.biometricSvc.Verify(c.Request.Context(), userID, req.SessionCode)
	if err != nil {
		if errors.Is(err, biometric.ErrScanInProgress) {
			response.Conflict(c, 16001, err.Error())
			return
		}
		writeSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// Status 扫描器当前状态
// GET /api/v1/biometric/status
func (h *BiometricHandler) Status(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	response.OK(c, h.biometricSvc.Status(c.Request.Context(), userID))
}
