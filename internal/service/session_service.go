package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	pkgerrors "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/errors"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidSessionCode = errors.New("no active session matches this code")
	ErrSessionExpired     = errors.New("session has expired")
	ErrAlreadyCheckedIn   = errors.New("attendance already recorded for this session")
	ErrCodeExhausted      = errors.New("could not allocate a unique session code")
)

const (
	defaultSessionDuration = 15 * time.Minute
	sessionCodeLength      = 6
	sessionCodeAttempts    = 5
	// 去掉易混淆的 0/O、1/I
	sessionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// SessionService 签到会话业务接口
type SessionService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	List(ctx context.Context, actor Actor, req *dto.SessionListRequest) ([]dto.SessionResponse, int64, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error)
	// Close 关闭会话，未签到的选课学生记为缺勤
	Close(ctx context.Context, actor Actor, id string) (*dto.CloseSessionResponse, error)
	ListAttendance(ctx context.Context, actor Actor, id string) ([]dto.AttendanceResponse, error)
	// CheckIn 学生凭签到码签到；method 为 code 或 biometric
	CheckIn(ctx context.Context, studentID, code, method string) (*dto.AttendanceResponse, error)
	// ExpireOverdue 关闭所有已过期的活动会话并补记缺勤，返回关闭的会话数
	ExpireOverdue(ctx context.Context) (int, error)
	// StartExpirySweeper 按 interval 后台执行 ExpireOverdue，ctx 结束即停止
	StartExpirySweeper(ctx context.Context, interval time.Duration)
}

type sessionService struct {
	repo    *repository.Repository
	stats   StatsService
	logger  *zap.Logger
	now     func() time.Time
	newCode func() (string, error)
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(repo *repository.Repository, stats StatsService, logger *zap.Logger) SessionService {
	return &sessionService{
		repo:    repo,
		stats:   stats,
		logger:  logger,
		now:     time.Now,
		newCode: generateSessionCode,
	}
}

// generateSessionCode 生成随机签到码
func generateSessionCode() (string, error) {
	max := big.NewInt(int64(len(sessionCodeAlphabet)))
	b := make([]byte, sessionCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = sessionCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (s *sessionService) Create(ctx context.Context, actor Actor, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	course, err := loadCourse(ctx, s.repo, actor, req.CourseID, true)
	if err != nil {
		return nil, err
	}

	// 过期未关的会话仍占用签到码
	if _, err := s.ExpireOverdue(ctx); err != nil {
		return nil, err
	}

	duration := defaultSessionDuration
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}
	now := s.now()

	// 活动会话的签到码唯一，冲突时换码重试
	for attempt := 0; attempt < sessionCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		session := &model.Session{
			CourseID:  course.CourseID,
			Code:      code,
			StartsAt:  now,
			ExpiresAt: now.Add(duration),
			IsActive:  true,
		}
		session.CreatedBy = &actor.UserID

		err = s.repo.Session.Open(ctx, session)
		if err == nil {
			session.Course = course
			s.invalidateStats(ctx)
			s.logger.Info("签到会话已开启",
				zap.String("session_id", session.SessionID),
				zap.String("course_id", course.CourseID),
				zap.Duration("duration", duration),
			)
			resp := toSessionResponse(session)
			return &resp, nil
		}
		if !pkgerrors.IsDuplicate(err) {
			s.logger.Error("开启会话失败", zap.String("course_id", course.CourseID), zap.Error(err))
			return nil, err
		}
	}
	return nil, ErrCodeExhausted
}

func (s *sessionService) List(ctx context.Context, actor Actor, req *dto.SessionListRequest) ([]dto.SessionResponse, int64, error) {
	filter := repository.SessionFilter{CourseID: req.CourseID, Active: req.Active}

	// 学生与教师只能看到自己相关课程的会话
	var courses []model.Course
	var err error
	switch actor.Role {
	case model.RoleStudent:
		courses, err = s.repo.Course.ListByStudent(ctx, actor.UserID)
	case model.RoleInstructor:
		courses, err = s.repo.Course.ListByInstructor(ctx, actor.UserID)
	}
	if err != nil {
		return nil, 0, err
	}
	if actor.Is(model.RoleStudent, model.RoleInstructor) {
		filter.CourseIDs = courseIDs(courses)
	}

	sessions, total, err := s.repo.Session.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询会话列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, s.view(actor, &sessions[i]))
	}
	return list, total, nil
}

func (s *sessionService) Get(ctx context.Context, actor Actor, id string) (*dto.SessionResponse, error) {
	session, err := s.load(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	resp := s.view(actor, session)
	return &resp, nil
}

func (s *sessionService) Close(ctx context.Context, actor Actor, id string) (*dto.CloseSessionResponse, error) {
	session, err := s.load(ctx, actor, id, true)
	if err != nil {
		return nil, err
	}

	marked, err := s.repo.Session.Close(ctx, id, actor.UserID, s.now())
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("关闭会话失败", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	session.IsActive = false
	s.invalidateStats(ctx)

	s.logger.Info("签到会话已关闭",
		zap.String("session_id", id),
		zap.Int64("marked_absent", marked),
	)
	return &dto.CloseSessionResponse{
		Session:      toSessionResponse(session),
		MarkedAbsent: int(marked),
	}, nil
}

func (s *sessionService) ListAttendance(ctx context.Context, actor Actor, id string) ([]dto.AttendanceResponse, error) {
	if actor.Is(model.RoleStudent) {
		return nil, ErrForbidden
	}
	if _, err := s.load(ctx, actor, id, false); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListBySession(ctx, id)
	if err != nil {
		s.logger.Error("查询会话出勤失败", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	list := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		list = append(list, toAttendanceResponse(&records[i]))
	}
	return list, nil
}

func (s *sessionService) CheckIn(ctx context.Context, studentID, code, method string) (*dto.AttendanceResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	session, err := s.repo.Session.GetActiveByCode(ctx, code)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrInvalidSessionCode
		}
		s.logger.Error("查询会话失败", zap.Error(err))
		return nil, err
	}
	now := s.now()
	if !session.Open(now) {
		// 到期后首次签到时补做关闭
		if _, err := s.expire(ctx, session, now); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, session.CourseID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	record := &model.Attendance{
		StudentID:  studentID,
		SessionID:  session.SessionID,
		Status:     model.StatusPresent,
		Method:     method,
		RecordedAt: now,
	}
	record.CreatedBy = &studentID
	if err := s.repo.Attendance.Create(ctx, record); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrAlreadyCheckedIn
		}
		s.logger.Error("签到失败",
			zap.String("session_id", session.SessionID),
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil, err
	}
	record.Session = session
	s.invalidateStats(ctx)

	resp := toAttendanceResponse(record)
	return &resp, nil
}

func (s *sessionService) ExpireOverdue(ctx context.Context) (int, error) {
	now := s.now()
	overdue, err := s.repo.Session.ListOverdue(ctx, now)
	if err != nil {
		s.logger.Error("查询过期会话失败", zap.Error(err))
		return 0, err
	}
	closed := 0
	for i := range overdue {
		ok, err := s.expire(ctx, &overdue[i], now)
		if err != nil {
			return closed, err
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

func (s *sessionService) StartExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.logger.Info("过期会话清理已启动", zap.Duration("interval", interval))
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.ExpireOverdue(ctx); err != nil && ctx.Err() == nil {
					s.logger.Warn("过期会话清理失败", zap.Error(err))
				}
			}
		}
	}()
}

// expire 由系统关闭过期会话；会话已不存在时返回 false
func (s *sessionService) expire(ctx context.Context, session *model.Session, now time.Time) (bool, error) {
	marked, err := s.repo.Session.Close(ctx, session.SessionID, "", now)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return false, nil
		}
		s.logger.Error("关闭过期会话失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return false, err
	}
	session.IsActive = false
	s.invalidateStats(ctx)
	s.logger.Info("过期会话已关闭",
		zap.String("session_id", session.SessionID),
		zap.Int64("marked_absent", marked),
	)
	return true, nil
}

// load 查询会话并按所属课程校验权限
func (s *sessionService) load(ctx context.Context, actor Actor, id string, manage bool) (*model.Session, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, actor, session.CourseID, manage)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	session.Course = course
	return session, nil
}

// view 学生看不到签到码，需由教师现场公布
func (s *sessionService) view(actor Actor, session *model.Session) dto.SessionResponse {
	resp := toSessionResponse(session)
	if actor.Is(model.RoleStudent) {
		resp.Code = ""
	}
	return resp
}

func (s *sessionService) invalidateStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx); err != nil {
		s.logger.Warn("清除统计缓存失败", zap.Error(err))
	}
}

func courseIDs(courses []model.Course) []string {
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.CourseID)
	}
	return ids
}
