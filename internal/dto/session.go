package dto

import "time"

// ── 签到会话 DTO ──

// CreateSessionRequest 开启会话请求
type CreateSessionRequest struct {
	CourseID        string `json:"course_id"        binding:"required,uuid"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=240"` // 默认 15 分钟
}

// SessionListRequest 会话列表查询参数
type SessionListRequest struct {
	PaginationRequest
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	Active   *bool  `form:"active"`
}

// CheckInRequest 学生凭签到码签到
type CheckInRequest struct {
	Code string `json:"code" binding:"required,min=4,max=12"`
}

// SessionResponse 会话信息
type SessionResponse struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	CourseCode string    `json:"course_code,omitempty"`
	CourseName string    `json:"course_name,omitempty"`
	Code       string    `json:"code"`
	StartsAt   time.Time `json:"starts_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsActive   bool      `json:"is_active"`
}

// CloseSessionResponse 关闭会话结果
type CloseSessionResponse struct {
	Session      SessionResponse `json:"session"`
	MarkedAbsent int             `json:"marked_absent"`
}
