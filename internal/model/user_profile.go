package model

import "time"

// UserProfile 以小写钱包地址为主键，只做累加更新
type UserProfile struct {
	WalletAddress string    `gorm:"primaryKey;type:varchar(191)" json:"walletAddress"`
	TotalCoins    int       `gorm:"not null;default:0" json:"totalCoins"`
	TotalQuizzes  int       `gorm:"not null;default:0" json:"totalQuizzes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Attempts []QuizAttempt `gorm:"foreignKey:WalletAddress;references:WalletAddress;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
