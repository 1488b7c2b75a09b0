package repository

import (
	"coinbrief_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) ListQuestions(ctx context.Context, slug string) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.WithContext(ctx).
		Where("article_slug = ?", slug).
		Order("id asc").
		Find(&qs).Error
	return qs, err
}

// FindCallToAction 文章没有增强内容时返回空串
func (r *QuizRepository) FindCallToAction(ctx context.Context, slug string) (string, error) {
	var ctas []string
	err := r.DB.WithContext(ctx).
		Model(&model.ArticleEnhancement{}).
		Where("slug = ?", slug).
		Limit(1).
		Pluck("quiz_call_to_action", &ctas).Error
	if err != nil || len(ctas) == 0 {
		return "", err
	}
	return ctas[0], nil
}

// RecordAttempt 建档、写答题记录、累加积分在同一事务内完成，任一步失败全部回滚
func (r *QuizRepository) RecordAttempt(ctx context.Context, attempt *model.QuizAttempt) (*model.UserProfile, error) {
	var profile model.UserProfile

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// 已存在的档案不能被覆盖
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserProfile{
			WalletAddress: attempt.WalletAddress,
			CreatedAt:     now,
			UpdatedAt:     now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(attempt).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.UserProfile{}).
			Where("wallet_address = ?", attempt.WalletAddress).
			Updates(map[string]interface{}{
				"total_coins":   gorm.Expr("total_coins + ?", attempt.CoinsAwarded),
				"total_quizzes": gorm.Expr("total_quizzes + ?", 1),
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		return tx.First(&profile, "wallet_address = ?", attempt.WalletAddress).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *QuizRepository) ListRecentAttempts(ctx context.Context, wallet string, limit int) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := r.DB.WithContext(ctx).
		Table("quiz_attempts qa").
		Select("qa.id, qa.article_slug, qa.score, qa.total_questions, qa.coins_awarded, qa.completed_at, a.title, a.image_url").
		Joins("JOIN articles a ON a.slug = qa.article_slug").
		Where("qa.wallet_address = ?", wallet).
		Order("qa.completed_at desc, qa.id desc").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
