package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// ScheduleRepository 课程时段数据访问接口
type ScheduleRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]model.Schedule, error)
	// ReplaceByCourse 以新时段替换课程同来源的旧时段
	ReplaceByCourse(ctx context.Context, courseID, source string, schedules []model.Schedule) error
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) ReplaceByCourse(ctx context.Context, courseID, source string, schedules []model.Schedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 硬删除：导入替换场景无需保留旧时段
		if err := tx.Where("course_id = ? AND source = ?", courseID, source).
			Delete(&model.Schedule{}).Error; err != nil {
			return err
		}
		if len(schedules) > 0 {
			if err := tx.Create(&schedules).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
