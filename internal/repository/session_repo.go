package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// SessionFilter 会话列表过滤条件
type SessionFilter struct {
	CourseID  string
	CourseIDs []string // 非 nil 时限定在这些课程内
	Active    *bool
}

// SessionRepository 签到会话数据访问接口
type SessionRepository interface {
	// Open 关闭该课程现有的活动会话后创建新会话
	Open(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetActiveByCode(ctx context.Context, code string) (*model.Session, error)
	List(ctx context.Context, filter SessionFilter, offset, limit int) ([]model.Session, int64, error)
	ListActive(ctx context.Context, courseIDs []string, now time.Time) ([]model.Session, error)
	// ListOverdue 已过期但仍标记为活动的会话
	ListOverdue(ctx context.Context, now time.Time) ([]model.Session, error)
	// Close 关闭会话并为未签到的选课学生补记缺勤，返回补记条数；closedBy 为空表示系统关闭
	Close(ctx context.Context, sessionID, closedBy string, now time.Time) (int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo 创建 SessionRepository 实例
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Open(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Session{}).
			Where("course_id = ? AND is_active", session.CourseID).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_by": session.CreatedBy,
			}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) GetActiveByCode(ctx context.Context, code string) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("code = ? AND is_active", code).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) List(ctx context.Context, filter SessionFilter, offset, limit int) ([]model.Session, int64, error) {
	var sessions []model.Session
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Session{})
	if filter.CourseID != "" {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.CourseIDs != nil {
		db = db.Where("course_id IN ?", filter.CourseIDs)
	}
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Course").
		Offset(offset).Limit(limit).
		Order("starts_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *sessionRepo) ListActive(ctx context.Context, courseIDs []string, now time.Time) ([]model.Session, error) {
	var sessions []model.Session
	if len(courseIDs) == 0 {
		return sessions, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ? AND is_active AND expires_at > ?", courseIDs, now).
		Order("starts_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("is_active AND expires_at <= ?", now).
		Order("expires_at").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) Close(ctx context.Context, sessionID, closedBy string, now time.Time) (int64, error) {
	var by interface{}
	if closedBy != "" {
		by = closedBy
	}
	var marked int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Session{}).
			Where("session_id = ?", sessionID).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_by": by,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		// 已有记录的学生由唯一约束跳过
		res = tx.Exec(`
			INSERT INTO attendance (student_id, session_id, status, method, recorded_at, created_at, updated_at, created_by)
			SELECT e.student_id, s.session_id, ?, ?, ?, ?, ?, ?
			FROM sessions s
			JOIN enrollments e ON e.course_id = s.course_id
			WHERE s.session_id = ?
			ON CONFLICT (student_id, session_id) DO NOTHING`,
			model.StatusAbsent, model.MethodAuto, now, now, now, by, sessionID)
		if res.Error != nil {
			return res.Error
		}
		marked = res.RowsAffected
		return nil
	})
	return marked, err
}

func (r *sessionRepo) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Count(&n).Error
	return n, err
}

func (r *sessionRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("course_id = ?", courseID).
		Count(&n).Error
	return n, err
}
