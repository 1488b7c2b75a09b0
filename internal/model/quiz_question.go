package model

import "time"

type QuizQuestion struct {
	ID          uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	ArticleSlug string   `gorm:"type:varchar(191);not null;index" json:"articleSlug"`
	Article     *Article `gorm:"foreignKey:ArticleSlug;references:Slug;constraint:OnDelete:CASCADE" json:"-"`

	Prompt        string    `gorm:"type:text;not null" json:"prompt"`
	OptionA       string    `gorm:"column:option_a;type:text;not null" json:"optionA"`
	OptionB       string    `gorm:"column:option_b;type:text;not null" json:"optionB"`
	OptionC       string    `gorm:"column:option_c;type:text;not null" json:"optionC"`
	OptionD       string    `gorm:"column:option_d;type:text;not null" json:"optionD"`
	CorrectOption string    `gorm:"type:char(1);not null" json:"correctOption"`
	Explanation   *string   `gorm:"type:text" json:"explanation"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (q QuizQuestion) Options() QuizOptions {
	return QuizOptions{A: q.OptionA, B: q.OptionB, C: q.OptionC, D: q.OptionD}
}
