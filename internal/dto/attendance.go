package dto

import "time"

// ── 出勤 DTO ──

// UpdateAttendanceRequest 教师手动修改出勤状态
type UpdateAttendanceRequest struct {
	Status string `json:"status" binding:"required,oneof=present absent"`
}

// AttendanceListRequest 本人出勤列表查询参数
type AttendanceListRequest struct {
	PaginationRequest
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}

// AttendanceResponse 出勤记录
type AttendanceResponse struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	SessionID   string    `json:"session_id"`
	CourseCode  string    `json:"course_code,omitempty"`
	CourseName  string    `json:"course_name,omitempty"`
	Status      string    `json:"status"`
	Method      string    `json:"method"`
	RecordedAt  time.Time `json:"recorded_at"`
}
