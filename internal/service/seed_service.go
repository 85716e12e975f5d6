package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	pkgerrors "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/errors"
)

var ErrSeedDisabled = errors.New("demo seeding is disabled")

const (
	demoStudentLimit   = 1000
	demoSessionMinutes = 60
)

type demoCourse struct {
	code, name, room string
	slots            []demoSlot
}

type demoSlot struct {
	day        int // 1=周一 … 7=周日
	start, end string
}

// 周日至周四上课
var demoCourses = []demoCourse{
	{"CS101", "Introduction to Programming", "B12-101", []demoSlot{{7, "08:00", "09:40"}, {2, "08:00", "09:40"}}},
	{"CS210", "Data Structures", "B12-204", []demoSlot{{1, "10:00", "11:40"}, {3, "10:00", "11:40"}}},
	{"MATH150", "Calculus I", "A3-015", []demoSlot{{7, "12:00", "13:40"}, {4, "12:00", "13:40"}}},
}

// SeedService 演示数据业务接口
type SeedService interface {
	// SeedDemoData 幂等地创建演示教师、课程、时段，为全部学生选课并开启一场会话
	SeedDemoData(ctx context.Context, operatorID string) (*dto.SeedResult, error)
	// EnrollInDemoCourses 为单个学生选修全部演示课程，返回新增条数
	EnrollInDemoCourses(ctx context.Context, studentID string) (int64, error)
}

type seedService struct {
	cfg    *config.Config
	repo   *repository.Repository
	stats  StatsService
	logger *zap.Logger
}

// NewSeedService 创建 SeedService 实例
func NewSeedService(cfg *config.Config, repo *repository.Repository, stats StatsService, logger *zap.Logger) SeedService {
	return &seedService{cfg: cfg, repo: repo, stats: stats, logger: logger}
}

func (s *seedService) SeedDemoData(ctx context.Context, operatorID string) (*dto.SeedResult, error) {
	if !s.cfg.Feature.DemoSeed {
		return nil, ErrSeedDisabled
	}

	instructor, err := s.ensureInstructor(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.ensureCourses(ctx, instructor)
	if err != nil {
		return nil, err
	}

	// 时段：以演示数据覆盖手工录入的时段
	for i, dc := range demoCourses {
		slots := make([]model.Schedule, 0, len(dc.slots))
		for _, sl := range dc.slots {
			slots = append(slots, model.Schedule{
				CourseID:  courses[i].CourseID,
				DayOfWeek: sl.day,
				StartTime: sl.start,
				EndTime:   sl.end,
				Location:  dc.room,
				Source:    "manual",
			})
		}
		if err := s.repo.Schedule.ReplaceByCourse(ctx, courses[i].CourseID, "manual", slots); err != nil {
			s.logger.Error("写入演示时段失败", zap.String("course", dc.code), zap.Error(err))
			return nil, err
		}
	}

	students, _, err := s.repo.Profile.List(ctx, repository.ProfileFilter{Role: model.RoleStudent}, 0, demoStudentLimit)
	if err != nil {
		return nil, err
	}
	var enrollments []model.Enrollment
	now := time.Now()
	for _, st := range students {
		for _, c := range courses {
			enrollments = append(enrollments, model.Enrollment{StudentID: st.ProfileID, CourseID: c.CourseID, EnrolledAt: now})
		}
	}
	added, err := s.repo.Enrollment.EnsureMany(ctx, enrollments)
	if err != nil {
		s.logger.Error("演示选课失败", zap.Error(err))
		return nil, err
	}

	live, err := s.openLiveSession(ctx, &courses[0], operatorID)
	if err != nil {
		return nil, err
	}

	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.logger.Warn("清除统计缓存失败", zap.Error(err))
		}
	}

	result := &dto.SeedResult{
		InstructorID: instructor.ProfileID,
		Courses:      make([]dto.CourseResponse, 0, len(courses)),
		Enrollments:  added,
		LiveSession:  live,
	}
	for i := range courses {
		result.Courses = append(result.Courses, toCourseResponse(&courses[i]))
	}

	s.logger.Info("演示数据已初始化",
		zap.Int("courses", len(courses)),
		zap.Int("students", len(students)),
		zap.Int64("enrollments_added", added),
		zap.String("operator", operatorID),
	)
	return result, nil
}

func (s *seedService) EnrollInDemoCourses(ctx context.Context, studentID string) (int64, error) {
	instructor, err := s.ensureInstructor(ctx)
	if err != nil {
		return 0, err
	}
	courses, err := s.ensureCourses(ctx, instructor)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	enrollments := make([]model.Enrollment, 0, len(courses))
	for _, c := range courses {
		enrollments = append(enrollments, model.Enrollment{StudentID: studentID, CourseID: c.CourseID, EnrolledAt: now})
	}
	return s.repo.Enrollment.EnsureMany(ctx, enrollments)
}

// ensureInstructor 演示教师不可登录（随机密码哈希）
func (s *seedService) ensureInstructor(ctx context.Context) (*model.Profile, error) {
	email := "demo.instructor@" + NewRules(s.cfg.University.EmailDomain).domain
	p, err := s.repo.Profile.GetByEmail(ctx, email)
	if err == nil {
		return p, nil
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	p = &model.Profile{
		Email:        email,
		FullName:     "Demo Instructor",
		Role:         model.RoleInstructor,
		PasswordHash: string(hash),
	}
	if err := s.repo.Profile.Create(ctx, p); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return s.repo.Profile.GetByEmail(ctx, email)
		}
		s.logger.Error("创建演示教师失败", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ensureCourses 按 demoCourses 顺序返回课程，缺失的创建
func (s *seedService) ensureCourses(ctx context.Context, instructor *model.Profile) ([]model.Course, error) {
	courses := make([]model.Course, 0, len(demoCourses))
	for _, dc := range demoCourses {
		c, err := s.repo.Course.GetByCode(ctx, dc.code)
		if err == nil {
			courses = append(courses, *c)
			continue
		}
		if !pkgerrors.IsNotFound(err) {
			return nil, err
		}

		c = &model.Course{
			Code:         dc.code,
			Name:         dc.name,
			Room:         dc.room,
			InstructorID: &instructor.ProfileID,
			Description:  "Demo course",
		}
		if err := s.repo.Course.Create(ctx, c); err != nil {
			if pkgerrors.IsDuplicate(err) {
				if c, err = s.repo.Course.GetByCode(ctx, dc.code); err == nil {
					courses = append(courses, *c)
					continue
				}
			}
			s.logger.Error("创建演示课程失败", zap.String("course", dc.code), zap.Error(err))
			return nil, err
		}
		c.Instructor = instructor
		courses = append(courses, *c)
	}
	return courses, nil
}

func (s *seedService) openLiveSession(ctx context.Context, course *model.Course, operatorID string) (*dto.SessionResponse, error) {
	now := time.Now()
	for attempt := 0; attempt < sessionCodeAttempts; attempt++ {
		code, err := generateSessionCode()
		if err != nil {
			return nil, err
		}
		session := &model.Session{
			CourseID:  course.CourseID,
			Code:      code,
			StartsAt:  now,
			ExpiresAt: now.Add(demoSessionMinutes * time.Minute),
			IsActive:  true,
		}
		session.CreatedBy = &operatorID
		err = s.repo.Session.Open(ctx, session)
		if err == nil {
			session.Course = course
			resp := toSessionResponse(session)
			return &resp, nil
		}
		if !pkgerrors.IsDuplicate(err) {
			return nil, err
		}
	}
	return nil, ErrCodeExhausted
}
