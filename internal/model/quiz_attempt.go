package model

import "time"

// QuizAttempt 只追加，写入后不再修改
type QuizAttempt struct {
	ID            uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletAddress string   `gorm:"type:varchar(191);not null;index" json:"walletAddress"`
	ArticleSlug   string   `gorm:"type:varchar(191);not null;index" json:"articleSlug"`
	Article       *Article `gorm:"foreignKey:ArticleSlug;references:Slug;constraint:OnDelete:CASCADE" json:"-"`

	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"totalQuestions"`
	CoinsAwarded   int       `gorm:"not null" json:"coinsAwarded"`
	CompletedAt    time.Time `gorm:"index" json:"completedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
