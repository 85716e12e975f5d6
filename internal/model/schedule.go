package model

// Schedule 课程每周上课时段 — 对应 schedules
type Schedule struct {
	ScheduleID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	CourseID   string   `gorm:"type:uuid;not null"                             json:"course_id"`
	DayOfWeek  int      `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1-7
	StartTime  string   `gorm:"type:time;not null"                             json:"start_time"`
	EndTime    string   `gorm:"type:time;not null"                             json:"end_time"`
	Location   string   `gorm:"type:varchar(100)"                              json:"location"`
	Weeks      IntArray `gorm:"type:int[]"                                     json:"weeks"`
	Source     string   `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // ics | manual
	BaseModel
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }
