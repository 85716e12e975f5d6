package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	pkgerrors "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/errors"
)

var ErrAttendanceNotFound = errors.New("attendance record not found")

// AttendanceService 出勤记录业务接口
type AttendanceService interface {
	ListMine(ctx context.Context, studentID string, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error)
	// UpdateStatus 教师或管理员手动修改出勤状态
	UpdateStatus(ctx context.Context, actor Actor, id, status string) (*dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	stats  StatsService
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, stats StatsService, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, stats: stats, logger: logger}
}

func (s *attendanceService) ListMine(ctx context.Context, studentID string, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	records, total, err := s.repo.Attendance.ListByStudent(ctx, studentID, req.CourseID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		list = append(list, toAttendanceResponse(&records[i]))
	}
	return list, total, nil
}

func (s *attendanceService) UpdateStatus(ctx context.Context, actor Actor, id, status string) (*dto.AttendanceResponse, error) {
	record, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	if record.Session == nil {
		return nil, ErrAttendanceNotFound
	}
	if _, err := loadCourse(ctx, s.repo, actor, record.Session.CourseID, true); err != nil {
		return nil, err
	}

	if err := s.repo.Attendance.UpdateStatus(ctx, id, status, model.MethodManual, actor.UserID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("修改出勤状态失败", zap.String("attendance_id", id), zap.Error(err))
		return nil, err
	}
	record.Status = status
	record.Method = model.MethodManual

	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.logger.Warn("清除统计缓存失败", zap.Error(err))
		}
	}

	s.logger.Info("出勤状态已手动修改",
		zap.String("attendance_id", id),
		zap.String("status", status),
		zap.String("operator", actor.UserID),
	)
	resp := toAttendanceResponse(record)
	return &resp, nil
}
