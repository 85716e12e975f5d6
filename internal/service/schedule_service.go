package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
)

var (
	ErrICSInvalid = errors.New("invalid ics calendar")
	ErrICSFetch   = errors.New("failed to fetch ics calendar")
)

// ScheduleService 课程时段业务接口
type ScheduleService interface {
	ListByCourse(ctx context.Context, actor Actor, courseID string) ([]dto.ScheduleResponse, error)
	// ImportICS 以 ICS 内容替换课程此前导入的时段
	ImportICS(ctx context.Context, actor Actor, courseID string, r io.Reader) (*dto.ImportScheduleResponse, error)
	ImportICSFromURL(ctx context.Context, actor Actor, courseID, url string) (*dto.ImportScheduleResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ScheduleService {
	loc, err := time.LoadLocation(cfg.University.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &scheduleService{repo: repo, loc: loc, logger: logger}
}

func (s *scheduleService) ListByCourse(ctx context.Context, actor Actor, courseID string) ([]dto.ScheduleResponse, error) {
	if _, err := loadCourse(ctx, s.repo, actor, courseID, false); err != nil {
		return nil, err
	}
	schedules, err := s.repo.Schedule.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程时段失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		list = append(list, toScheduleResponse(&schedules[i]))
	}
	return list, nil
}

func (s *scheduleService) ImportICS(ctx context.Context, actor Actor, courseID string, r io.Reader) (*dto.ImportScheduleResponse, error) {
	if _, err := loadCourse(ctx, s.repo, actor, courseID, true); err != nil {
		return nil, err
	}

	schedules, err := ParseICS(io.LimitReader(r, icsMaxFileSize), courseID, s.loc)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, ErrICSInvalid
	}
	for i := range schedules {
		schedules[i].CreatedBy = &actor.UserID
	}

	if err := s.repo.Schedule.ReplaceByCourse(ctx, courseID, "ics", schedules); err != nil {
		s.logger.Error("保存课程时段失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ImportScheduleResponse{
		Imported:  len(schedules),
		Schedules: make([]dto.ScheduleResponse, 0, len(schedules)),
	}
	for i := range schedules {
		resp.Schedules = append(resp.Schedules, toScheduleResponse(&schedules[i]))
	}
	s.logger.Info("ICS 课表已导入", zap.String("course_id", courseID), zap.Int("slots", len(schedules)))
	return resp, nil
}

func (s *scheduleService) ImportICSFromURL(ctx context.Context, actor Actor, courseID, url string) (*dto.ImportScheduleResponse, error) {
	if _, err := loadCourse(ctx, s.repo, actor, courseID, true); err != nil {
		return nil, err
	}
	body, err := FetchICSContent(ctx, url)
	if err != nil {
		s.logger.Warn("获取 ICS 失败", zap.String("url", url), zap.Error(err))
		return nil, ErrICSFetch
	}
	defer body.Close()
	return s.ImportICS(ctx, actor, courseID, body)
}
