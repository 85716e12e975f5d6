package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// SessionHandler 签到会话 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// List 会话列表
// GET /api/v1/sessions?course_id=&active=
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid query parameters")
		return
	}

	list, total, err := h.sessionSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Create 开启签到会话
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid session request")
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// Get 会话详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	session, err := h.sessionSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// Close 关闭会话
// POST /api/v1/sessions/:id/close
func (h *SessionHandler) Close(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.sessionSvc.Close(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAttendance 会话出勤名单
// GET /api/v1/sessions/:id/attendance
func (h *SessionHandler) ListAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.sessionSvc.ListAttendance(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}

	response.OK(c, list)
}

// CheckIn 学生凭签到码签到
// POST /api/v1/sessions/check-in
func (h *SessionHandler) CheckIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "code is required")
		return
	}

	record, err := h.sessionSvc.CheckIn(c.Request.Context(), userID, req.Code, model.MethodCode)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	response.Created(c, record)
}

// writeSessionError 会话与签到错误映射，指纹签到复用
func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrInvalidSessionCode):
		response.NotFound(c, 14002, err.Error())
	case errors.Is(err, service.ErrSessionExpired):
		response.Error(c, http.StatusGone, 14003, err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 14004, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 14005, err.Error())
	case errors.Is(err, service.ErrCodeExhausted):
		response.Error(c, http.StatusServiceUnavailable, 14006, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	default:
		response.InternalError(c)
	}
}
