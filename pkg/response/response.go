package response

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// 通用业务码；各模块的专属码（11xxx 认证、13xxx 课程、14xxx 会话等）在 handler 中定义
const (
	CodeOK              = 0
	CodeInvalidParam    = 10001
	CodeUnauthenticated = 10002
	CodeForbidden       = 10003
	CodeRateLimited     = 10004
	CodeBodyTooLarge    = 10005
	CodeInternal        = 50000
	CodeSetupRequired   = 50301
)

// requestIDKey 与 RequestID 中间件写入的键一致
const requestIDKey = "request_id"

// Response 统一响应结构；出错时带 request_id，便于学生或教师反馈签到失败时定位日志
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Details   string      `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 成功响应 ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "success", Data: data})
}

// OKPage 200 分页列表（课程、会话、出勤记录）
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	OK(c, PageData{
		List: list,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages(total, pageSize),
		},
	})
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	fail(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带详情的错误响应（如校验失败的字段）
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	fail(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

// ErrorWithData 带数据的错误响应（如引导模式的配置说明）
func ErrorWithData(c *gin.Context, httpStatus int, code int, message string, data interface{}) {
	fail(c, httpStatus, Response{Code: code, Message: message, Data: data})
}

func fail(c *gin.Context, httpStatus int, resp Response) {
	resp.RequestID = c.GetString(requestIDKey)
	c.JSON(httpStatus, resp)
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// PayloadTooLarge 413，details 给出上限便于前端提示（ICS 文件过大等）
func PayloadTooLarge(c *gin.Context, limit int64) {
	ErrorWithDetails(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
		"request body too large", fmt.Sprintf("limit is %d bytes", limit))
}

// TooManyRequests 429，Retry-After 向上取整到秒
func TooManyRequests(c *gin.Context, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	Error(c, http.StatusTooManyRequests, CodeRateLimited, "too many attempts, please retry later")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "internal server error")
}
