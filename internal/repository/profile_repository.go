package repository

import (
	"coinbrief_backend/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// FindByWallet 档案不存在时返回 nil, nil
func (r *ProfileRepository) FindByWallet(ctx context.Context, wallet string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.WithContext(ctx).First(&profile, "wallet_address = ?", wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindTopByCoins(ctx context.Context, limit int) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	err := r.DB.WithContext(ctx).
		Order("total_coins desc").
		Order("total_quizzes desc").
		Order("wallet_address asc").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}
