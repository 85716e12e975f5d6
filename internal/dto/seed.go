package dto

// SeedResult 演示数据初始化结果
type SeedResult struct {
	InstructorID string           `json:"instructor_id"`
	Courses      []CourseResponse `json:"courses"`
	Enrollments  int64            `json:"enrollments"` // 本次新增选课数
	LiveSession  *SessionResponse `json:"live_session,omitempty"`
}
