package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/repository"
	pkgerrors "github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/errors"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/jwt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrEmailDomain         = errors.New("email must use the university domain")
	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidUniversityID = errors.New("university id must be 44 followed by 7 digits")
	ErrUniversityIDExists  = errors.New("university id already registered")
	ErrWeakPassword        = errors.New("password must be 8-20 characters and contain letters and digits")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrProfileNotFound     = errors.New("profile not found")
)

// TokenBlacklist Token 黑名单（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time, userID string) error
	// GetCurrentProfile 返回当前用户档案，档案缺失时按 Token 身份补建
	GetCurrentProfile(ctx context.Context, id jwt.Identity) (*dto.ProfileResponse, error)
	CompleteEmail(input, role string) string
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // 可为 nil（Redis 不可用）
	seed      SeedService
	rules     Rules
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	seed SeedService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		seed:      seed,
		rules:     NewRules(cfg.University.EmailDomain),
		logger:    logger,
	}
}

func (s *authService) CompleteEmail(input, role string) string {
	return s.rules.CompleteEmail(input, role)
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	// 1. 输入规则
	email := s.rules.CompleteEmail(req.Email, req.Role)
	if err := s.rules.ValidateEmail(email, req.Role); err != nil {
		return nil, err
	}

	var universityID *string
	if req.Role == model.RoleStudent {
		if !ValidateUniversityID(req.UniversityID) {
			return nil, ErrInvalidUniversityID
		}
		id := req.UniversityID
		universityID = &id
	}

	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	// 2. 唯一性检查
	if _, err := s.repo.Profile.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !pkgerrors.IsNotFound(err) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return nil, err
	}
	if universityID != nil {
		if _, err := s.repo.Profile.GetByUniversityID(ctx, *universityID); err == nil {
			return nil, ErrUniversityIDExists
		} else if !pkgerrors.IsNotFound(err) {
			s.logger.Error("查询学号失败", zap.Error(err))
			return nil, err
		}
	}

	// 3. 创建档案
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	profile := &model.Profile{
		Email:        email,
		FullName:     req.FullName,
		Role:         req.Role,
		UniversityID: universityID,
		PasswordHash: string(hash),
	}
	if err := s.repo.Profile.Create(ctx, profile); err != nil {
		// 并发注册由唯一索引兜底
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建档案失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.SignupResponse{Profile: toProfileResponse(profile)}

	// 4. 演示模式下为新学生自动选课，失败不影响注册
	if s.cfg.Feature.DemoSeed && s.seed != nil && profile.Role == model.RoleStudent {
		n, err := s.seed.EnrollInDemoCourses(ctx, profile.ProfileID)
		if err != nil {
			s.logger.Warn("演示选课失败", zap.String("profile_id", profile.ProfileID), zap.Error(err))
		}
		resp.Enrollments = int(n)
	}

	s.logger.Info("新用户注册",
		zap.String("profile_id", profile.ProfileID),
		zap.String("role", profile.Role),
	)
	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询档案（允许只输入邮箱用户名）
	email := s.rules.CompleteEmail(req.Email, "")
	profile, err := s.repo.Profile.GetByEmail(ctx, email)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询档案失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(profile, req.RememberMe)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidRefreshToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrInvalidRefreshToken
		}
	}

	// 重新读取档案，角色变更即时生效
	profile, err := s.repo.Profile.GetByID(ctx, claims.UserID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("查询档案失败", zap.Error(err))
		return nil, err
	}

	resp, err := s.issueTokens(profile, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// 轮换：旧 refresh token 作废
	if s.blacklist != nil && claims.ExpiresAt != nil {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("旧 RefreshToken 加入黑名单失败", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time, userID string) error {
	if s.blacklist == nil {
		s.logger.Warn("Redis 不可用，跳过 Token 黑名单", zap.String("user_id", userID))
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) GetCurrentProfile(ctx context.Context, id jwt.Identity) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Profile.GetByID(ctx, id.UserID)
	if err == nil {
		resp := toProfileResponse(profile)
		return &resp, nil
	}
	if !pkgerrors.IsNotFound(err) {
		s.logger.Error("查询档案失败", zap.Error(err))
		return nil, err
	}

	// 档案缺失：按 Token 中的身份补建，不可用密码登录
	if id.Email == "" || !model.IsValidRole(id.Role) {
		return nil, ErrProfileNotFound
	}
	profile = &model.Profile{
		ProfileID: id.UserID,
		Email:     id.Email,
		FullName:  id.FullName,
		Role:      id.Role,
	}
	if profile.FullName == "" {
		profile.FullName = id.Email
	}
	if err := s.repo.Profile.Create(ctx, profile); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("补建档案失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("首次访问补建档案", zap.String("profile_id", profile.ProfileID))

	resp := toProfileResponse(profile)
	return &resp, nil
}

// issueTokens 为档案签发 Token 对
func (s *authService) issueTokens(profile *model.Profile, rememberMe bool) (*dto.TokenResponse, error) {
	identity := jwt.Identity{
		UserID:   profile.ProfileID,
		Role:     profile.Role,
		Email:    profile.Email,
		FullName: profile.FullName,
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(identity)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(identity, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Profile:      toProfileResponse(profile),
	}, nil
}
