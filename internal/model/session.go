package model

import "time"

// Session 课堂签到会话 — 对应 sessions
type Session struct {
	SessionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CourseID  string    `gorm:"type:uuid;not null"                             json:"course_id"`
	Code      string    `gorm:"type:varchar(12);not null"                      json:"code"`
	StartsAt  time.Time `gorm:"not null"                                       json:"starts_at"`
	ExpiresAt time.Time `gorm:"not null"                                       json:"expires_at"`
	IsActive  bool      `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// Open 会话在 now 时刻是否可签到
func (s *Session) Open(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
