package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
)

const (
	dashboardRecentLimit  = 5
	dashboardCourseLimit  = 100
	courseStatConcurrency = 4
)

// DashboardService 角色仪表盘业务接口
type DashboardService interface {
	Admin(ctx context.Context) (*dto.AdminDashboard, error)
	Supervisor(ctx context.Context) (*dto.SupervisorDashboard, error)
	Instructor(ctx context.Context, instructorID string) (*dto.InstructorDashboard, error)
	Student(ctx context.Context, studentID string) (*dto.StudentDashboard, error)
}

type dashboardService struct {
	repo        *repository.Repository
	stats       StatsService
	logger      *zap.Logger
	now         func() time.Time
	courseLimit int
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, stats StatsService, logger *zap.Logger) DashboardService {
	return &dashboardService{
		repo:        repo,
		stats:       stats,
		logger:      logger,
		now:         time.Now,
		courseLimit: dashboardCourseLimit,
	}
}

func (s *dashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	stats, err := s.stats.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AdminDashboard{Stats: *stats}, nil
}

func (s *dashboardService) Supervisor(ctx context.Context) (*dto.SupervisorDashboard, error) {
	stats, err := s.stats.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	courses, total, err := s.repo.Course.List(ctx, 0, s.courseLimit)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	overview, err := s.courseStats(ctx, courses)
	if err != nil {
		return nil, err
	}

	// 只汇总前 courseLimit 门，完整列表走 /courses 分页
	truncated := total > int64(len(courses))
	if truncated {
		s.logger.Warn("督导仪表盘课程概览已截断",
			zap.Int("shown", len(courses)),
			zap.Int64("total", total),
		)
	}
	return &dto.SupervisorDashboard{
		Stats:            *stats,
		CourseOverview:   overview,
		TotalCourses:     total,
		CoursesTruncated: truncated,
	}, nil
}

func (s *dashboardService) Instructor(ctx context.Context, instructorID string) (*dto.InstructorDashboard, error) {
	courses, err := s.repo.Course.ListByInstructor(ctx, instructorID)
	if err != nil {
		s.logger.Error("查询教师课程失败", zap.String("instructor_id", instructorID), zap.Error(err))
		return nil, err
	}

	overview, err := s.courseStats(ctx, courses)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.Session.ListActive(ctx, courseIDs(courses), s.now())
	if err != nil {
		return nil, err
	}
	students, err := s.repo.Enrollment.CountStudentsByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	d := &dto.InstructorDashboard{
		Courses:        overview,
		ActiveSessions: make([]dto.SessionResponse, 0, len(active)),
		TotalStudents:  students,
	}
	for i := range active {
		d.ActiveSessions = append(d.ActiveSessions, toSessionResponse(&active[i]))
	}
	return d, nil
}

func (s *dashboardService) Student(ctx context.Context, studentID string) (*dto.StudentDashboard, error) {
	courses, err := s.repo.Course.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生课程失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	active, err := s.repo.Session.ListActive(ctx, courseIDs(courses), s.now())
	if err != nil {
		return nil, err
	}
	recent, _, err := s.repo.Attendance.ListByStudent(ctx, studentID, "", 0, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Attendance.CountByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	d := &dto.StudentDashboard{
		Courses:        make([]dto.CourseResponse, 0, len(courses)),
		ActiveSessions: make([]dto.SessionResponse, 0, len(active)),
		Recent:         make([]dto.AttendanceResponse, 0, len(recent)),
		Present:        counts.Present,
		Absent:         counts.Absent,
		AttendanceRate: AttendanceRate(counts.Present, counts.Total()),
	}
	for i := range courses {
		d.Courses = append(d.Courses, toCourseResponse(&courses[i]))
	}
	for i := range active {
		// 签到码由教师现场公布
		resp := toSessionResponse(&active[i])
		resp.Code = ""
		d.ActiveSessions = append(d.ActiveSessions, resp)
	}
	for i := range recent {
		d.Recent = append(d.Recent, toAttendanceResponse(&recent[i]))
	}
	return d, nil
}

// courseStats 按课程汇总选课、会话与出勤，限制并发查询数
func (s *dashboardService) courseStats(ctx context.Context, courses []model.Course) ([]dto.CourseAttendanceStat, error) {
	out := make([]dto.CourseAttendanceStat, len(courses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(courseStatConcurrency)
	for i := range courses {
		i, c := i, courses[i]
		g.Go(func() error {
			students, err := s.repo.Enrollment.CountByCourse(gctx, c.CourseID)
			if err != nil {
				return err
			}
			sessions, err := s.repo.Session.CountByCourse(gctx, c.CourseID)
			if err != nil {
				return err
			}
			counts, err := s.repo.Attendance.CountByCourse(gctx, c.CourseID)
			if err != nil {
				return err
			}
			out[i] = dto.CourseAttendanceStat{
				CourseID:       c.CourseID,
				Code:           c.Code,
				Name:           c.Name,
				Students:       students,
				Sessions:       sessions,
				Present:        counts.Present,
				Absent:         counts.Absent,
				AttendanceRate: AttendanceRate(counts.Present, counts.Total()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("课程出勤汇总失败", zap.Error(err))
		return nil, err
	}
	return out, nil
}
