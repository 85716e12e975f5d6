package model

import "time"

// Course 课程 — 对应 courses
type Course struct {
	CourseID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code         string  `gorm:"type:varchar(20);not null"                      json:"code"`
	Name         string  `gorm:"type:varchar(150);not null"                     json:"name"`
	InstructorID *string `gorm:"type:uuid"                                      json:"instructor_id,omitempty"`
	Room         string  `gorm:"type:varchar(50)"                               json:"room"`
	Description  string  `gorm:"type:text"                                      json:"description"`
	SoftDeleteModel

	// 关联
	Instructor *Profile `gorm:"foreignKey:InstructorID;references:ProfileID" json:"instructor,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Enrollment 选课关系 — 对应 enrollments
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string    `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID     string    `gorm:"type:uuid;not null"                             json:"course_id"`
	EnrolledAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`
	BaseModel

	// 关联
	Student *Profile `gorm:"foreignKey:StudentID;references:ProfileID" json:"student,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID;references:CourseID"   json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
