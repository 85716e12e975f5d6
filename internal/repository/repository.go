package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Profile      ProfileRepository
	Course       CourseRepository
	Enrollment   EnrollmentRepository
	Session      SessionRepository
	Attendance   AttendanceRepository
	Schedule     ScheduleRepository
	Verification VerificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		Profile:      NewProfileRepo(db),
		Course:       NewCourseRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Session:      NewSessionRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Schedule:     NewScheduleRepo(db),
		Verification: NewVerificationRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Ping 检查数据库连通性（健康检查）
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
