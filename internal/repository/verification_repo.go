package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/model"
)

// VerificationRepository 指纹验证审计数据访问接口
type VerificationRepository interface {
	Create(ctx context.Context, v *model.BiometricVerification) error
	ListByProfile(ctx context.Context, profileID string, limit int) ([]model.BiometricVerification, error)
}

type verificationRepo struct {
	db *gorm.DB
}

// NewVerificationRepo 创建 VerificationRepository 实例
func NewVerificationRepo(db *gorm.DB) VerificationRepository {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) Create(ctx context.Context, v *model.BiometricVerification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *verificationRepo) ListByProfile(ctx context.Context, profileID string, limit int) ([]model.BiometricVerification, error) {
	var list []model.BiometricVerification
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("verified_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
