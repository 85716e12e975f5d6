package model

import "time"

// 出勤状态
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// 签到方式
const (
	MethodCode      = "code"
	MethodBiometric = "biometric"
	MethodManual    = "manual"
	MethodAuto      = "auto" // 关闭会话时自动补记缺勤
)

// Attendance 出勤记录 — 对应 attendance
type Attendance struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID    string    `gorm:"type:uuid;not null"                             json:"student_id"`
	SessionID    string    `gorm:"type:uuid;not null"                             json:"session_id"`
	Status       string    `gorm:"type:varchar(10);not null"                      json:"status"`
	Method       string    `gorm:"type:varchar(20);not null;default:'code'"       json:"method"`
	RecordedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"recorded_at"`
	BaseModel

	// 关联
	Student *Profile `gorm:"foreignKey:StudentID;references:ProfileID" json:"student,omitempty"`
	Session *Session `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendance" }
