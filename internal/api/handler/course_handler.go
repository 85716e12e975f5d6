package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CourseHandler 课程、选课、课表与导出 HTTP 处理器
type CourseHandler struct {
	courseSvc   service.CourseService
	scheduleSvc service.ScheduleService
	exportSvc   service.ExportService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(
	courseSvc service.CourseService,
	scheduleSvc service.ScheduleService,
	exportSvc service.ExportService,
) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, scheduleSvc: scheduleSvc, exportSvc: exportSvc}
}

// List 课程列表（按角色过滤）
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid query parameters")
		return
	}

	list, total, err := h.courseSvc.List(c.Request.Context(), actor, &page)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Create 创建课程
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidParam, "invalid course request", err.Error())
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// Get 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// Enroll 学生选课
// POST /api/v1/courses/:id/enrollments
func (h *CourseHandler) Enroll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "student_id is required")
		return
	}

	enrollment, err := h.courseSvc.Enroll(c.Request.Context(), actor, c.Param("id"), req.StudentID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// Unenroll 退课
// DELETE /api/v1/courses/:id/enrollments/:student_id
func (h *CourseHandler) Unenroll(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Unenroll(c.Request.Context(), actor, c.Param("id"), c.Param("student_id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListStudents 课程学生名单
// GET /api/v1/courses/:id/students
func (h *CourseHandler) ListStudents(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	students, err := h.courseSvc.ListStudents(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, students)
}

// ListSchedules 课程上课时段
// GET /api/v1/courses/:id/schedules
func (h *CourseHandler) ListSchedules(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	schedules, err := h.scheduleSvc.ListByCourse(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, schedules)
}

// ImportSchedules 导入 ICS 课表
// POST /api/v1/courses/:id/schedules/import
// multipart 字段 file 上传文件，或 JSON {"url": "..."} 远程订阅
func (h *CourseHandler) ImportSchedules(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	courseID := c.Param("id")

	var (
		result *dto.ImportScheduleResponse
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			response.BadRequest(c, response.CodeInvalidParam, "file is required")
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			response.BadRequest(c, response.CodeInvalidParam, "cannot read uploaded file")
			return
		}
		defer f.Close()
		result, err = h.scheduleSvc.ImportICS(c.Request.Context(), actor, courseID, f)
	} else {
		var req dto.ImportScheduleRequest
		if berr := c.ShouldBindJSON(&req); berr != nil {
			response.BadRequest(c, response.CodeInvalidParam, "url is required")
			return
		}
		result, err = h.scheduleSvc.ImportICSFromURL(c.Request.Context(), actor, courseID, req.URL)
	}
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportAttendance 导出课程出勤表
// GET /api/v1/courses/:id/attendance/export
func (h *CourseHandler) ExportAttendance(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCourseAttendance(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrCourseCodeExists):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrInstructorInvalid):
		response.BadRequest(c, 13003, err.Error())
	case errors.Is(err, service.ErrStudentInvalid):
		response.BadRequest(c, 13004, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 13005, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.NotFound(c, 13006, err.Error())
	case errors.Is(err, service.ErrICSInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13007, service.ErrICSInvalid.Error(), err.Error())
	case errors.Is(err, service.ErrICSFetch):
		response.ErrorWithDetails(c, http.StatusBadGateway, 13008, service.ErrICSFetch.Error(), err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	default:
		response.InternalError(c)
	}
}
