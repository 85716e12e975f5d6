package model

// 角色
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)

// Roles 全部合法角色
var Roles = []string{RoleStudent, RoleInstructor, RoleAdmin, RoleSupervisor}

// IsValidRole 角色是否合法
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Profile 用户档案 — 对应 profiles
type Profile struct {
	ProfileID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"profile_id"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	FullName     string  `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Role         string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	UniversityID *string `gorm:"type:varchar(20)"                               json:"university_id,omitempty"` // 仅学生
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }
