package dto

import "time"

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
// 管理员可指定授课教师；教师创建时默认为本人
type CreateCourseRequest struct {
	Code         string `json:"code"          binding:"required,min=2,max=20"`
	Name         string `json:"name"          binding:"required,min=2,max=150"`
	InstructorID string `json:"instructor_id" binding:"omitempty,uuid"`
	Room         string `json:"room"          binding:"omitempty,max=50"`
	Description  string `json:"description"   binding:"omitempty,max=2000"`
}

// EnrollRequest 选课请求
type EnrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	InstructorID   string `json:"instructor_id,omitempty"`
	InstructorName string `json:"instructor_name,omitempty"`
	Room           string `json:"room,omitempty"`
	Description    string `json:"description,omitempty"`
}

// EnrollmentResponse 选课记录
type EnrollmentResponse struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// ScheduleResponse 上课时段
type ScheduleResponse struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location,omitempty"`
	Weeks     []int  `json:"weeks,omitempty"`
	Source    string `json:"source"`
}

// ImportScheduleRequest ICS 链接导入请求（文件上传走 multipart）
type ImportScheduleRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ImportScheduleResponse 课表导入结果
type ImportScheduleResponse struct {
	Imported  int                `json:"imported"`
	Schedules []ScheduleResponse `json:"schedules"`
}
