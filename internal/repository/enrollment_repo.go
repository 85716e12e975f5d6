package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	// EnsureMany 批量选课，已存在的跳过，返回新增条数
	EnsureMany(ctx context.Context, enrollments []model.Enrollment) (int64, error)
	Delete(ctx context.Context, courseID, studentID string) error
	Exists(ctx context.Context, courseID, studentID string) (bool, error)
	ListStudents(ctx context.Context, courseID string) ([]model.Profile, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	CountStudentsByInstructor(ctx context.Context, instructorID string) (int64, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) EnsureMany(ctx context.Context, enrollments []model.Enrollment) (int64, error) {
	if len(enrollments) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollments)
	return res.RowsAffected, res.Error
}

func (r *enrollmentRepo) Delete(ctx context.Context, courseID, studentID string) error {
	res := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&model.Enrollment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, courseID, studentID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&n).Error
	return n > 0, err
}

func (r *enrollmentRepo) ListStudents(ctx context.Context, courseID string) ([]model.Profile, error) {
	var students []model.Profile
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments e ON e.student_id = profiles.profile_id").
		Where("e.course_id = ?", courseID).
		Order("profiles.full_name ASC").
		Find(&students).Error
	return students, err
}

func (r *enrollmentRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&n).Error
	return n, err
}

func (r *enrollmentRepo) CountStudentsByInstructor(ctx context.Context, instructorID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Joins("JOIN courses c ON c.course_id = enrollments.course_id AND c.deleted_at IS NULL").
		Where("c.instructor_id = ?", instructorID).
		Distinct("enrollments.student_id").
		Count(&n).Error
	return n, err
}
