package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// AttendanceHandler 出勤记录 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// ListMine 本人出勤记录
// GET /api/v1/attendance/me?course_id=
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid query parameters")
		return
	}

	list, total, err := h.attendanceSvc.ListMine(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UpdateStatus 手动修改出勤状态
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) UpdateStatus(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "status must be present or absent")
		return
	}

	record, err := h.attendanceSvc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttendanceNotFound):
			response.NotFound(c, 15001, err.Error())
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, response.CodeForbidden, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, record)
}
