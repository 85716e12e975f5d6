package dto

import "time"

// ── 统计 DTO ──

// DashboardStats 仪表盘统计
type DashboardStats struct {
	TotalUsers           int64            `json:"total_users"`
	Students             int64            `json:"students"`
	Instructors          int64            `json:"instructors"`
	Supervisors          int64            `json:"supervisors"`
	Admins               int64            `json:"admins"`
	Courses              int64            `json:"courses"`
	TodaySessions        int64            `json:"today_sessions"`
	TodayAttendanceTotal int64            `json:"today_attendance_total"`
	Present              int64            `json:"present"`
	Absent               int64            `json:"absent"`
	AttendanceRate       int              `json:"attendance_rate"` // 百分比 0-100
	RecentActivity       []RecentActivity `json:"recent_activity"`
	GeneratedAt          time.Time        `json:"generated_at"`
	Stale                bool             `json:"stale,omitempty"` // 刷新失败，返回的是旧数据
}

// RecentActivity 最近出勤动态
type RecentActivity struct {
	AttendanceID string    `json:"attendance_id"`
	StudentName  string    `json:"student_name"`
	CourseCode   string    `json:"course_code"`
	CourseName   string    `json:"course_name"`
	Status       string    `json:"status"`
	Method       string    `json:"method"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// PublicStats 公开统计（不含个人信息）
type PublicStats struct {
	Students       int64     `json:"students"`
	Courses        int64     `json:"courses"`
	TodaySessions  int64     `json:"today_sessions"`
	AttendanceRate int       `json:"attendance_rate"`
	GeneratedAt    time.Time `json:"generated_at"`
}
