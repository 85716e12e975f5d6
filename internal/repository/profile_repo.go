package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// ProfileFilter 档案列表过滤条件
type ProfileFilter struct {
	Role    string
	Keyword string
}

// ProfileRepository 用户档案数据访问接口
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByUniversityID(ctx context.Context, universityID string) (*model.Profile, error)
	List(ctx context.Context, filter ProfileFilter, offset, limit int) ([]model.Profile, int64, error)
	UpdateRole(ctx context.Context, id, role, updatedBy string) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo 创建 ProfileRepository 实例
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("profile_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByUniversityID(ctx context.Context, universityID string) (*model.Profile, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("university_id = ?", universityID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) List(ctx context.Context, filter ProfileFilter, offset, limit int) ([]model.Profile, int64, error) {
	var profiles []model.Profile
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Profile{})
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		db = db.Where("full_name ILIKE ? OR email ILIKE ? OR university_id ILIKE ?", kw, kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *profileRepo) UpdateRole(ctx context.Context, id, role, updatedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("profile_id = ?", id).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *profileRepo) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
