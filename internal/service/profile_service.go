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

var ErrCannotChangeOwnRole = errors.New("cannot change your own role")

// ProfileService 用户档案业务接口
type ProfileService interface {
	List(ctx context.Context, req *dto.ProfileListRequest) ([]dto.ProfileResponse, int64, error)
	Get(ctx context.Context, actor Actor, id string) (*dto.ProfileResponse, error)
	UpdateRole(ctx context.Context, actor Actor, id, role string) (*dto.ProfileResponse, error)
}

type profileService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProfileService 创建 ProfileService 实例
func NewProfileService(repo *repository.Repository, logger *zap.Logger) ProfileService {
	return &profileService{repo: repo, logger: logger}
}

func (s *profileService) List(ctx context.Context, req *dto.ProfileListRequest) ([]dto.ProfileResponse, int64, error) {
	profiles, total, err := s.repo.Profile.List(ctx, repository.ProfileFilter{
		Role:    req.Role,
		Keyword: req.Keyword,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询档案列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		list = append(list, toProfileResponse(&profiles[i]))
	}
	return list, total, nil
}

// Get 管理员与督导可查看任意档案，其他人只能查看自己
func (s *profileService) Get(ctx context.Context, actor Actor, id string) (*dto.ProfileResponse, error) {
	if id != actor.UserID && !actor.Is(model.RoleAdmin, model.RoleSupervisor) {
		return nil, ErrForbidden
	}
	p, err := s.repo.Profile.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询档案失败", zap.String("profile_id", id), zap.Error(err))
		return nil, err
	}
	resp := toProfileResponse(p)
	return &resp, nil
}

func (s *profileService) UpdateRole(ctx context.Context, actor Actor, id, role string) (*dto.ProfileResponse, error) {
	if id == actor.UserID {
		return nil, ErrCannotChangeOwnRole
	}
	if err := s.repo.Profile.UpdateRole(ctx, id, role, actor.UserID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("修改角色失败", zap.String("profile_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("角色已修改",
		zap.String("profile_id", id),
		zap.String("role", role),
		zap.String("operator", actor.UserID),
	)
	return s.Get(ctx, actor, id)
}
