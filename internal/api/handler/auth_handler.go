package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Signup 注册
// POST /api/v1/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidParam, "invalid signup request", err.Error())
		return
	}

	result, err := h.authSvc.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid login request")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "refresh_token is required")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// CompleteEmail 邮箱补全
// POST /api/v1/auth/complete-email
func (h *AuthHandler) CompleteEmail(c *gin.Context) {
	var req dto.CompleteEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid request")
		return
	}

	response.OK(c, dto.CompleteEmailResponse{Email: h.authSvc.CompleteEmail(req.Input, req.Role)})
}

// Logout 用户登出，当前 Access Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	jti, exp := GetTokenMeta(c)

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp, userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Me 当前用户档案
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	profile, err := h.authSvc.GetCurrentProfile(c.Request.Context(), id)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, profile)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, err.Error())
	case errors.Is(err, service.ErrInvalidEmail):
		response.BadRequest(c, 11002, err.Error())
	case errors.Is(err, service.ErrEmailDomain):
		response.BadRequest(c, 11003, err.Error())
	case errors.Is(err, service.ErrInvalidUniversityID):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(c, 11005, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11006, err.Error())
	case errors.Is(err, service.ErrUniversityIDExists):
		response.Conflict(c, 11007, err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11008, err.Error())
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 11009, err.Error())
	default:
		response.InternalError(c)
	}
}
