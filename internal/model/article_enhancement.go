package model

import (
	"time"

	"gorm.io/datatypes"
)

// ArticleEnhancement 与文章一对一，重新生成时整体覆盖
type ArticleEnhancement struct {
	Slug string `gorm:"primaryKey;type:varchar(191)" json:"slug"`

	Summary          string                       `gorm:"type:text;not null" json:"summary"`
	KeyTakeaways     datatypes.JSONSlice[string]  `gorm:"not null" json:"keyTakeaways"`
	Sections         datatypes.JSONSlice[Section] `gorm:"not null" json:"sections"`
	Sources          datatypes.JSONSlice[Source]  `gorm:"not null" json:"sources"`
	QuizCallToAction string                       `gorm:"type:varchar(512);not null;default:''" json:"quizCallToAction"`
	GeneratedAt      time.Time                    `json:"generatedAt"`
}

func (ArticleEnhancement) TableName() string {
	return "article_enhancements"
}
