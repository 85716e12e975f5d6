package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context, offset, limit int) ([]model.Course, int64, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Course, error)
	Count(ctx context.Context) (int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("course_id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	var c model.Course
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) List(ctx context.Context, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Instructor").
		Offset(offset).Limit(limit).
		Order("code ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *courseRepo) ListByInstructor(ctx context.Context, instructorID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("instructor_id = ?", instructorID).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Joins("JOIN enrollments e ON e.course_id = courses.course_id").
		Where("e.student_id = ?", studentID).
		Order("courses.code ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Course{}).Count(&n).Error
	return n, err
}
