package model

import "time"

type AnswerSubmission struct {
	QuestionID     uint   `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

type QuestionResult struct {
	QuestionID     uint        `json:"questionId"`
	Prompt         string      `json:"prompt"`
	SelectedOption *string     `json:"selectedOption"`
	CorrectOption  string      `json:"correctOption"`
	IsCorrect      bool        `json:"isCorrect"`
	Explanation    *string     `json:"explanation"`
	Options        QuizOptions `json:"options"`
}

type AttemptSummary struct {
	ID             uint      `json:"id"`
	CompletedAt    time.Time `json:"completedAt"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CoinsAwarded   int       `json:"coinsAwarded"`
}

type ProfileSnapshot struct {
	TotalCoins   int `json:"totalCoins"`
	TotalQuizzes int `json:"totalQuizzes"`
}

type RewardInfo struct {
	PerCorrect int `json:"perCorrect"`
	MaxReward  int `json:"maxReward"`
}

type AttemptResult struct {
	Attempt AttemptSummary   `json:"attempt"`
	Profile ProfileSnapshot  `json:"profile"`
	Results []QuestionResult `json:"results"`
	Reward  RewardInfo       `json:"reward"`
}

type QuizArticle struct {
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	ImageURL     *string `json:"imageUrl"`
	SourceName   *string `json:"sourceName"`
	SourceLink   *string `json:"sourceLink"`
	CallToAction *string `json:"callToAction,omitempty"`
}

type QuizMeta struct {
	QuestionCount     int `json:"questionCount"`
	RewardPerQuestion int `json:"rewardPerQuestion"`
	MaxReward         int `json:"maxReward"`
}

// PublicQuestion 答题前下发的题目，不含正确答案
type PublicQuestion struct {
	ID      uint        `json:"id"`
	Prompt  string      `json:"prompt"`
	Options QuizOptions `json:"options"`
}

type QuizView struct {
	Article   QuizArticle      `json:"article"`
	Quiz      QuizMeta         `json:"quiz"`
	Questions []PublicQuestion `json:"questions"`
}

type HistoryEntry struct {
	ID             uint      `json:"id"`
	ArticleSlug    string    `json:"articleSlug"`
	Title          string    `json:"title"`
	ImageURL       *string   `json:"imageUrl"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CoinsAwarded   int       `json:"coinsAwarded"`
	CompletedAt    time.Time `json:"completedAt"`
}

type QuizHistory struct {
	Profile  ProfileSnapshot `json:"profile"`
	Attempts []HistoryEntry  `json:"attempts"`
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	WalletAddress string `json:"walletAddress"`
	TotalCoins    int    `json:"totalCoins"`
	TotalQuizzes  int    `json:"totalQuizzes"`
}
