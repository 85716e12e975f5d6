package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/biometric"
)

// BiometricService 模拟指纹验证业务接口
type BiometricService interface {
	// Verify 触发一次扫描；成功且带签到码时以 biometric 方式签到
	Verify(ctx context.Context, userID, sessionCode string) (*dto.BiometricVerifyResponse, error)
	Status(ctx context.Context, userID string) *dto.BiometricStatusResponse
}

type biometricService struct {
	repo     *repository.Repository
	scanners *biometric.Registry
	sessions SessionService
	logger   *zap.Logger
}

// NewBiometricService 创建 BiometricService 实例
func NewBiometricService(
	repo *repository.Repository,
	scanners *biometric.Registry,
	sessions SessionService,
	logger *zap.Logger,
) BiometricService {
	return &biometricService{repo: repo, scanners: scanners, sessions: sessions, logger: logger}
}

func (s *biometricService) Verify(ctx context.Context, userID, sessionCode string) (*dto.BiometricVerifyResponse, error) {
	scanner := s.scanners.For(userID)
	res, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	state, _ := scanner.Snapshot()
	resp := toVerifyResponse(state, res)

	if !res.Success || sessionCode == "" {
		s.audit(ctx, res, nil)
		return resp, nil
	}

	attendance, err := s.sessions.CheckIn(ctx, userID, sessionCode, model.MethodBiometric)
	if err != nil {
		s.audit(ctx, res, nil)
		return nil, err
	}
	s.audit(ctx, res, &attendance.SessionID)
	resp.Attendance = attendance
	return resp, nil
}

func (s *biometricService) Status(_ context.Context, userID string) *dto.BiometricStatusResponse {
	state, last := s.scanners.For(userID).Snapshot()
	resp := &dto.BiometricStatusResponse{State: string(state)}
	if last != nil {
		resp.Last = toVerifyResponse(state, last)
	}
	return resp
}

// audit 记录验证结果，写入失败只记日志
func (s *biometricService) audit(ctx context.Context, res *biometric.Result, sessionID *string) {
	checks, err := json.Marshal(res.Checks)
	if err != nil {
		s.logger.Warn("序列化检查结果失败", zap.Error(err))
		checks = []byte("{}")
	}

	v := &model.BiometricVerification{
		ProfileID:  res.UserID,
		SessionID:  sessionID,
		Success:    res.Success,
		MatchScore: res.MatchScore,
		Checks:     datatypes.JSON(checks),
		VerifiedAt: res.Timestamp,
	}
	if res.FailedCheck != "" {
		fc := string(res.FailedCheck)
		v.FailedCheck = &fc
	}
	if err := s.repo.Verification.Create(ctx, v); err != nil {
		s.logger.Warn("保存验证记录失败", zap.String("profile_id", res.UserID), zap.Error(err))
	}

	s.logger.Info("指纹验证完成",
		zap.String("profile_id", res.UserID),
		zap.Bool("success", res.Success),
		zap.String("failed_check", string(res.FailedCheck)),
	)
}

func toVerifyResponse(state biometric.State, res *biometric.Result) *dto.BiometricVerifyResponse {
	checks := make(map[string]bool, len(res.Checks))
	for c, ok := range res.Checks {
		checks[string(c)] = ok
	}
	return &dto.BiometricVerifyResponse{
		Success:     res.Success,
		State:       string(state),
		MatchScore:  res.MatchScore,
		Checks:      checks,
		FailedCheck: string(res.FailedCheck),
		Message:     res.Message,
		Timestamp:   res.Timestamp,
	}
}
