package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/cache"
)

const dashboardStatsKey = "stats:dashboard"

// StatsService 仪表盘统计业务接口
type StatsService interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStats, error)
	// GetPublicStats 仅含计数，不含个人信息
	GetPublicStats(ctx context.Context) (*dto.PublicStats, error)
	Invalidate(ctx context.Context) error
	// StartPolling 按 cache.poll_interval 后台刷新，ctx 结束即停止
	StartPolling(ctx context.Context)
}

// AttendanceRate 出勤率百分比（四舍五入），无记录时为 0
func AttendanceRate(present, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// dayBounds 返回 now 所在自然日在 loc 时区下的 [起, 止)
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	t := now.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

type statsService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  *cache.Cache[dto.DashboardStats]
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(
	cfg *config.Config,
	repo *repository.Repository,
	c *cache.Cache[dto.DashboardStats],
	logger *zap.Logger,
) StatsService {
	loc, err := time.LoadLocation(cfg.University.Timezone)
	if err != nil {
		// 配置校验已拦截无效时区
		loc = time.UTC
	}
	return &statsService{
		cfg:    cfg,
		repo:   repo,
		cache:  c,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

func (s *statsService) GetDashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	stats, err := s.cache.GetOrFetch(ctx, dashboardStatsKey, s.cfg.Cache.StatsTTL, s.compute)
	if err != nil {
		if cache.IsStale(err) {
			s.logger.Warn("统计刷新失败，返回旧数据", zap.Error(err))
			stats.Stale = true
			return &stats, nil
		}
		s.logger.Error("统计查询失败", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

func (s *statsService) GetPublicStats(ctx context.Context) (*dto.PublicStats, error) {
	stats, err := s.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.PublicStats{
		Students:       stats.Students,
		Courses:        stats.Courses,
		TodaySessions:  stats.TodaySessions,
		AttendanceRate: stats.AttendanceRate,
		GeneratedAt:    stats.GeneratedAt,
	}, nil
}

func (s *statsService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, dashboardStatsKey)
}

func (s *statsService) StartPolling(ctx context.Context) {
	interval := s.cfg.Cache.PollInterval
	if interval <= 0 {
		return
	}
	s.logger.Info("统计后台刷新已启动", zap.Duration("interval", interval))
	s.cache.Poll(ctx, dashboardStatsKey, interval, s.compute, func(_ dto.DashboardStats, err error) {
		if err != nil {
			s.logger.Warn("统计后台刷新失败", zap.Error(err))
		}
	})
}

// compute 并发执行计数查询，汇合后再查最近动态
func (s *statsService) compute(ctx context.Context) (dto.DashboardStats, error) {
	var (
		stats    dto.DashboardStats
		roles    map[string]int64
		courses  int64
		sessions int64
		counts   repository.StatusCounts
	)
	now := s.now()
	from, to := dayBounds(now, s.loc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.repo.Profile.CountByRole(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = s.repo.Course.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.repo.Session.CountBetween(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.repo.Attendance.CountBetween(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return stats, err
	}

	recent, err := s.repo.Attendance.Recent(ctx, s.recentLimit())
	if err != nil {
		return stats, err
	}

	for _, n := range roles {
		stats.TotalUsers += n
	}
	stats.Students = roles[model.RoleStudent]
	stats.Instructors = roles[model.RoleInstructor]
	stats.Supervisors = roles[model.RoleSupervisor]
	stats.Admins = roles[model.RoleAdmin]
	stats.Courses = courses
	stats.TodaySessions = sessions
	stats.TodayAttendanceTotal = counts.Total()
	stats.Present = counts.Present
	stats.Absent = counts.Absent
	stats.AttendanceRate = AttendanceRate(counts.Present, counts.Total())
	stats.GeneratedAt = now

	stats.RecentActivity = make([]dto.RecentActivity, 0, len(recent))
	for _, a := range recent {
		item := dto.RecentActivity{
			AttendanceID: a.AttendanceID,
			Status:       a.Status,
			Method:       a.Method,
			RecordedAt:   a.RecordedAt,
		}
		if a.Student != nil {
			item.StudentName = a.Student.FullName
		}
		if a.Session != nil && a.Session.Course != nil {
			item.CourseCode = a.Session.Course.Code
			item.CourseName = a.Session.Course.Name
		}
		stats.RecentActivity = append(stats.RecentActivity, item)
	}
	return stats, nil
}

func (s *statsService) recentLimit() int {
	if s.cfg.Stats.RecentLimit > 0 {
		return s.cfg.Stats.RecentLimit
	}
	return 10
}
