package dto

// ── 角色仪表盘 DTO ──

// AdminDashboard 管理员仪表盘
type AdminDashboard struct {
	Stats DashboardStats `json:"stats"`
}

// SupervisorDashboard 督导仪表盘；CoursesTruncated 为 true 时概览只含前若干门课程
type SupervisorDashboard struct {
	Stats            DashboardStats         `json:"stats"`
	CourseOverview   []CourseAttendanceStat `json:"course_overview"`
	TotalCourses     int64                  `json:"total_courses"`
	CoursesTruncated bool                   `json:"courses_truncated"`
}

// InstructorDashboard 教师仪表盘
type InstructorDashboard struct {
	Courses        []CourseAttendanceStat `json:"courses"`
	ActiveSessions []SessionResponse      `json:"active_sessions"`
	TotalStudents  int64                  `json:"total_students"`
}

// StudentDashboard 学生仪表盘
type StudentDashboard struct {
	Courses        []CourseResponse     `json:"courses"`
	ActiveSessions []SessionResponse    `json:"active_sessions"`
	Recent         []AttendanceResponse `json:"recent"`
	Present        int64                `json:"present"`
	Absent         int64                `json:"absent"`
	AttendanceRate int                  `json:"attendance_rate"`
}

// CourseAttendanceStat 单门课程出勤汇总
type CourseAttendanceStat struct {
	CourseID       string `json:"course_id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Students       int64  `json:"students"`
	Sessions       int64  `json:"sessions"`
	Present        int64  `json:"present"`
	Absent         int64  `json:"absent"`
	AttendanceRate int    `json:"attendance_rate"`
}
