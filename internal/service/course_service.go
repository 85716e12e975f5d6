package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	pkgerrors "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/errors"
)

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrCourseCodeExists  = errors.New("course code already exists")
	ErrInstructorInvalid = errors.New("instructor must be an existing instructor profile")
	ErrStudentInvalid    = errors.New("student must be an existing student profile")
	ErrAlreadyEnrolled   = errors.New("student already enrolled in this course")
	ErrNotEnrolled       = errors.New("student is not enrolled in this course")
)

// CourseService 课程与选课业务接口
type CourseService interface {
	// List 学生返回已选课程，教师返回所授课程，其他角色返回全部
	List(ctx context.Context, actor Actor, req *dto.PaginationRequest) ([]dto.CourseResponse, int64, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.CourseResponse, error)
	Create(ctx context.Context, actor Actor, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Enroll(ctx context.Context, actor Actor, courseID, studentID string) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, actor Actor, courseID, studentID string) error
	ListStudents(ctx context.Context, actor Actor, courseID string) ([]dto.ProfileResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) List(ctx context.Context, actor Actor, req *dto.PaginationRequest) ([]dto.CourseResponse, int64, error) {
	var (
		courses []model.Course
		total   int64
		err     error
	)
	switch actor.Role {
	case model.RoleStudent:
		courses, err = s.repo.Course.ListByStudent(ctx, actor.UserID)
		total = int64(len(courses))
	case model.RoleInstructor:
		courses, err = s.repo.Course.ListByInstructor(ctx, actor.UserID)
		total = int64(len(courses))
	default:
		courses, total, err = s.repo.Course.List(ctx, req.GetOffset(), req.GetPageSize())
	}
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.String("role", actor.Role), zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		list = append(list, toCourseResponse(&courses[i]))
	}
	return list, total, nil
}

func (s *courseService) Get(ctx context.Context, actor Actor, id string) (*dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.repo, actor, id, false)
	if err != nil {
		return nil, err
	}
	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	// 教师只能为自己开课
	instructorID := req.InstructorID
	if actor.Is(model.RoleInstructor) {
		instructorID = actor.UserID
	}

	var instructor *model.Profile
	if instructorID != "" {
		p, err := s.repo.Profile.GetByID(ctx, instructorID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return nil, ErrInstructorInvalid
			}
			return nil, err
		}
		if p.Role != model.RoleInstructor {
			return nil, ErrInstructorInvalid
		}
		instructor = p
	}

	if _, err := s.repo.Course.GetByCode(ctx, code); err == nil {
		return nil, ErrCourseCodeExists
	} else if !pkgerrors.IsNotFound(err) {
		s.logger.Error("查询课程编码失败", zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Room:        req.Room,
		Description: req.Description,
	}
	if instructor != nil {
		course.InstructorID = &instructor.ProfileID
	}
	course.CreatedBy = &actor.UserID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	course.Instructor = instructor

	resp := toCourseResponse(course)
	return &resp, nil
}

func (s *courseService) Enroll(ctx context.Context, actor Actor, courseID, studentID string) (*dto.EnrollmentResponse, error) {
	if _, err := loadCourse(ctx, s.repo, actor, courseID, true); err != nil {
		return nil, err
	}

	student, err := s.repo.Profile.GetByID(ctx, studentID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrStudentInvalid
		}
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentInvalid
	}

	e := &model.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	e.CreatedBy = &actor.UserID
	if err := s.repo.Enrollment.Create(ctx, e); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("选课失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	return &dto.EnrollmentResponse{
		ID:         e.EnrollmentID,
		StudentID:  e.StudentID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
	}, nil
}

func (s *courseService) Unenroll(ctx context.Context, actor Actor, courseID, studentID string) error {
	if _, err := loadCourse(ctx, s.repo, actor, courseID, true); err != nil {
		return err
	}
	if err := s.repo.Enrollment.Delete(ctx, courseID, studentID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return ErrNotEnrolled
		}
		s.logger.Error("退课失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

func (s *courseService) ListStudents(ctx context.Context, actor Actor, courseID string) ([]dto.ProfileResponse, error) {
	if actor.Is(model.RoleStudent) {
		return nil, ErrForbidden
	}
	if _, err := loadCourse(ctx, s.repo, actor, courseID, false); err != nil {
		return nil, err
	}

	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.ProfileResponse, 0, len(students))
	for i := range students {
		list = append(list, toProfileResponse(&students[i]))
	}
	return list, nil
}
