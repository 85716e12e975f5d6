package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// StatusCounts 按出勤状态计数
type StatusCounts struct {
	Present int64
	Absent  int64
}

// Total 记录总数
func (c StatusCounts) Total() int64 { return c.Present + c.Absent }

// AttendanceRepository 出勤记录数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	UpdateStatus(ctx context.Context, id, status, method, updatedBy string) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error)
	ListByStudent(ctx context.Context, studentID, courseID string, offset, limit int) ([]model.Attendance, int64, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Attendance, error)
	Recent(ctx context.Context, limit int) ([]model.Attendance, error)
	CountBetween(ctx context.Context, from, to time.Time) (StatusCounts, error)
	CountByStudent(ctx context.Context, studentID string) (StatusCounts, error)
	CountByCourse(ctx context.Context, courseID string) (StatusCounts, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.Attendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Session.Course").
		Where("attendance_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, id, status, method, updatedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("attendance_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"method":     method,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("recorded_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID, courseID string, offset, limit int) ([]model.Attendance, int64, error) {
	var records []model.Attendance
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Attendance{}).Where("attendance.student_id = ?", studentID)
	if courseID != "" {
		db = db.Joins("JOIN sessions s ON s.session_id = attendance.session_id").
			Where("s.course_id = ?", courseID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Session.Course").
		Offset(offset).Limit(limit).
		Order("attendance.recorded_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Session").
		Joins("JOIN sessions s ON s.session_id = attendance.session_id").
		Where("s.course_id = ?", courseID).
		Order("s.starts_at ASC, attendance.recorded_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) Recent(ctx context.Context, limit int) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Session.Course").
		Order("recorded_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) CountBetween(ctx context.Context, from, to time.Time) (StatusCounts, error) {
	return r.countByStatus(r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("recorded_at >= ? AND recorded_at < ?", from, to))
}

func (r *attendanceRepo) CountByStudent(ctx context.Context, studentID string) (StatusCounts, error) {
	return r.countByStatus(r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("student_id = ?", studentID))
}

func (r *attendanceRepo) CountByCourse(ctx context.Context, courseID string) (StatusCounts, error) {
	return r.countByStatus(r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Joins("JOIN sessions s ON s.session_id = attendance.session_id").
		Where("s.course_id = ?", courseID))
}

func (r *attendanceRepo) countByStatus(db *gorm.DB) (StatusCounts, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	var c StatusCounts
	if err := db.Select("attendance.status AS status, COUNT(*) AS count").
		Group("attendance.status").
		Scan(&rows).Error; err != nil {
		return c, err
	}
	for _, row := range rows {
		switch row.Status {
		case model.StatusPresent:
			c.Present = row.Count
		case model.StatusAbsent:
			c.Absent = row.Count
		}
	}
	return c, nil
}
