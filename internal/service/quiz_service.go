package service

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/repository"
	"coinbrief_backend/internal/util"
	"coinbrief_backend/pkg/logger"
	"coinbrief_backend/pkg/monitoring"
	"coinbrief_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type QuizService struct {
	Articles *repository.ArticleRepository
	Quizzes  *repository.QuizRepository
	Profiles *repository.ProfileRepository
}

func NewQuizService(articles *repository.ArticleRepository, quizzes *repository.QuizRepository, profiles *repository.ProfileRepository) *QuizService {
	return &QuizService{Articles: articles, Quizzes: quizzes, Profiles: profiles}
}

func rewardInfo() model.RewardInfo {
	return model.RewardInfo{PerCorrect: util.CoinsPerCorrect, MaxReward: util.MaxCoinsPerQuiz}
}

// GetQuiz 答题页数据，不下发正确答案
func (s *QuizService) GetQuiz(ctx context.Context, slug string) (*model.QuizView, error) {
	article, err := s.Articles.FindArticle(ctx, slug)
	if errors.Is(err, util.ErrArticleNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	questions, err := s.Quizzes.ListQuestions(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizUnavailable
	}

	cta, err := s.Quizzes.FindCallToAction(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	view := &model.QuizView{
		Article: model.QuizArticle{
			Slug:        article.Slug,
			Title:       article.Title,
			Description: article.Description,
			ImageURL:    article.ImageURL,
			SourceName:  article.SourceName,
			SourceLink:  article.SourceLink,
		},
		Quiz: model.QuizMeta{
			QuestionCount:     util.QuizQuestionCount,
			RewardPerQuestion: util.CoinsPerCorrect,
			MaxReward:         util.MaxCoinsPerQuiz,
		},
		Questions: make([]model.PublicQuestion, 0, len(questions)),
	}
	if cta != "" {
		view.Article.CallToAction = &cta
	}
	for _, q := range questions {
		view.Questions = append(view.Questions, model.PublicQuestion{ID: q.ID, Prompt: q.Prompt, Options: q.Options()})
	}
	return view, nil
}

// SubmitAttempt 评分并记账；同一题多次作答以最后一次为准，未知题号忽略
func (s *QuizService) SubmitAttempt(ctx context.Context, wallet, slug string, answers []model.AnswerSubmission) (*model.AttemptResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "QuizService.SubmitAttempt")
	defer span.End()

	wallet = util.NormalizeWallet(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet address is required", util.ErrInvalidInput)
	}
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("%w: missing quiz identifier", util.ErrInvalidInput)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: at least one answer is required", util.ErrInvalidInput)
	}
	for _, a := range answers {
		if !util.IsQuizOption(a.SelectedOption) {
			return nil, fmt.Errorf("%w: invalid option %q", util.ErrInvalidInput, a.SelectedOption)
		}
	}
	span.SetAttributes(attribute.String("article.slug", slug))

	questions, err := s.Quizzes.ListQuestions(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizUnavailable
	}

	results, score := Evaluate(questions, answers)
	coins := score * util.CoinsPerCorrect

	attempt := &model.QuizAttempt{
		WalletAddress:  wallet,
		ArticleSlug:    slug,
		Score:          score,
		TotalQuestions: len(questions),
		CoinsAwarded:   coins,
		CompletedAt:    time.Now().UTC(),
	}
	profile, err := s.Quizzes.RecordAttempt(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	monitoring.QuizAttempts.Inc()
	monitoring.CoinsAwarded.Add(float64(coins))
	logger.Log.Info("Quiz attempt recorded",
		zap.String("wallet", wallet),
		zap.String("slug", slug),
		zap.Int("score", score),
		zap.Int("coins", coins),
	)

	return &model.AttemptResult{
		Attempt: model.AttemptSummary{
			ID:             attempt.ID,
			CompletedAt:    attempt.CompletedAt,
			Score:          score,
			TotalQuestions: attempt.TotalQuestions,
			CoinsAwarded:   coins,
		},
		Profile: model.ProfileSnapshot{
			TotalCoins:   profile.TotalCoins,
			TotalQuizzes: profile.TotalQuizzes,
		},
		Results: results,
		Reward:  rewardInfo(),
	}, nil
}

// Evaluate 按题目顺序逐题判分，未作答的题目判错
func Evaluate(questions []model.QuizQuestion, answers []model.AnswerSubmission) ([]model.QuestionResult, int) {
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	selected := make(map[uint]string, len(answers))
	for _, a := range answers {
		if known[a.QuestionID] {
			selected[a.QuestionID] = a.SelectedOption
		}
	}

	results := make([]model.QuestionResult, 0, len(questions))
	score := 0
	for _, q := range questions {
		result := model.QuestionResult{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			Options:       q.Options(),
		}
		if option, ok := selected[q.ID]; ok {
			opt := option
			result.SelectedOption = &opt
			result.IsCorrect = option == q.CorrectOption
		}
		if result.IsCorrect {
			score++
		}
		results = append(results, result)
	}
	return results, score
}

// GetHistory 钱包尚无档案时返回零值
func (s *QuizService) GetHistory(ctx context.Context, wallet string) (*model.QuizHistory, error) {
	wallet = util.NormalizeWallet(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("%w: walletAddress query parameter required", util.ErrInvalidInput)
	}

	profile, err := s.Profiles.FindByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	attempts, err := s.Quizzes.ListRecentAttempts(ctx, wallet, util.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	history := &model.QuizHistory{Attempts: attempts}
	if history.Attempts == nil {
		history.Attempts = []model.HistoryEntry{}
	}
	if profile != nil {
		history.Profile = model.ProfileSnapshot{TotalCoins: profile.TotalCoins, TotalQuizzes: profile.TotalQuizzes}
	}
	return history, nil
}

// GetLeaderboard limit 非法时取默认值，超过上限时截断
func (s *QuizService) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = util.DefaultLeaderboardLimit
	}
	if limit > util.MaxLeaderboardLimit {
		limit = util.MaxLeaderboardLimit
	}

	profiles, err := s.Profiles.FindTopByCoins(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, model.LeaderboardEntry{
			Rank:          i + 1,
			WalletAddress: p.WalletAddress,
			TotalCoins:    p.TotalCoins,
			TotalQuizzes:  p.TotalQuizzes,
		})
	}
	return entries, nil
}
