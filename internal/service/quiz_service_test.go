package service

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/repository"
	"coinbrief_backend/internal/testutil"
	"coinbrief_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuizFixture(t *testing.T) (*QuizService, *model.Briefing, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	articles := repository.NewArticleRepository(db)
	briefing, err := articles.SaveBriefing(context.Background(), testutil.SampleInput("btc-rally"), testutil.SampleBriefing())
	require.NoError(t, err)
	svc := NewQuizService(articles, repository.NewQuizRepository(db), repository.NewProfileRepository(db))
	return svc, briefing, db
}

func answerAll(b *model.Briefing, option string) []model.AnswerSubmission {
	answers := make([]model.AnswerSubmission, 0, len(b.Quiz.Questions))
	for _, q := range b.Quiz.Questions {
		answers = append(answers, model.AnswerSubmission{QuestionID: q.ID, SelectedOption: option})
	}
	return answers
}

func TestQuizService_SubmitAttempt_EndToEnd(t *testing.T) {
	svc, briefing, _ := newQuizFixture(t)

	// 正确答案依次为 A B A A C，全选 A 得 3 分
	result, err := svc.SubmitAttempt(context.Background(), "0xABC", "btc-rally", answerAll(briefing, "A"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Attempt.Score)
	assert.Equal(t, 5, result.Attempt.TotalQuestions)
	assert.Equal(t, 30, result.Attempt.CoinsAwarded)
	assert.NotZero(t, result.Attempt.ID)
	assert.Equal(t, model.ProfileSnapshot{TotalCoins: 30, TotalQuizzes: 1}, result.Profile)
	assert.Equal(t, model.RewardInfo{PerCorrect: 10, MaxReward: 50}, result.Reward)

	require.Len(t, result.Results, 5)
	expected := []bool{true, false, true, true, false}
	for i, r := range result.Results {
		assert.Equal(t, briefing.Quiz.Questions[i].ID, r.QuestionID)
		assert.Equal(t, expected[i], r.IsCorrect, "question %d", i+1)
		require.NotNil(t, r.SelectedOption)
		assert.Equal(t, "A", *r.SelectedOption)
	}
	assert.Equal(t, "B", result.Results[1].CorrectOption)
}

func TestQuizService_SubmitAttempt_WalletNormalized(t *testing.T) {
	svc, briefing, _ := newQuizFixture(t)
	ctx := context.Background()

	_, err := svc.SubmitAttempt(ctx, "  0xAbC  ", "btc-rally", answerAll(briefing, "A"))
	require.NoError(t, err)
	second, err := svc.SubmitAttempt(ctx, "0xabc", "btc-rally", answerAll(briefing, "B"))
	require.NoError(t, err)

	// 全选 B 只对第 2 题
	assert.Equal(t, 1, second.Attempt.Score)
	assert.Equal(t, model.ProfileSnapshot{TotalCoins: 40, TotalQuizzes: 2}, second.Profile)

	history, err := svc.GetHistory(ctx, "0XABC")
	require.NoError(t, err)
	assert.Equal(t, 40, history.Profile.TotalCoins)
	assert.Len(t, history.Attempts, 2)
}

func TestQuizService_SubmitAttempt_Validation(t *testing.T) {
	svc, briefing, _ := newQuizFixture(t)
	ctx := context.Background()
	valid := answerAll(briefing, "A")

	_, err := svc.SubmitAttempt(ctx, "   ", "btc-rally", valid)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.SubmitAttempt(ctx, "0xabc", "btc-rally", nil)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.SubmitAttempt(ctx, "0xabc", "btc-rally", []model.AnswerSubmission{{QuestionID: briefing.Quiz.Questions[0].ID, SelectedOption: "E"}})
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = svc.SubmitAttempt(ctx, "0xabc", "unknown-slug", valid)
	assert.ErrorIs(t, err, util.ErrQuizUnavailable)

	history, err := svc.GetHistory(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, model.ProfileSnapshot{}, history.Profile)
	assert.Empty(t, history.Attempts)
}

func TestQuizService_SubmitAttempt_PartialAnswers(t *testing.T) {
	svc, briefing, _ := newQuizFixture(t)
	qs := briefing.Quiz.Questions

	result, err := svc.SubmitAttempt(context.Background(), "0xabc", "btc-rally", []model.AnswerSubmission{
		{QuestionID: qs[4].ID, SelectedOption: "C"},
		{QuestionID: 99999, SelectedOption: "A"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Attempt.Score)
	assert.Equal(t, 5, result.Attempt.TotalQuestions)
	assert.Equal(t, 10, result.Attempt.CoinsAwarded)
	assert.Nil(t, result.Results[0].SelectedOption)
	assert.False(t, result.Results[0].IsCorrect)
}

func TestEvaluate(t *testing.T) {
	questions := []model.QuizQuestion{
		{ID: 1, CorrectOption: "A"},
		{ID: 2, CorrectOption: "B"},
		{ID: 3, CorrectOption: "C"},
	}

	cases := []struct {
		name    string
		answers []model.AnswerSubmission
		score   int
	}{
		{"all correct", []model.AnswerSubmission{{QuestionID: 1, SelectedOption: "A"}, {QuestionID: 2, SelectedOption: "B"}, {QuestionID: 3, SelectedOption: "C"}}, 3},
		{"all wrong", []model.AnswerSubmission{{QuestionID: 1, SelectedOption: "D"}, {QuestionID: 2, SelectedOption: "D"}, {QuestionID: 3, SelectedOption: "D"}}, 0},
		{"last answer wins", []model.AnswerSubmission{{QuestionID: 1, SelectedOption: "A"}, {QuestionID: 1, SelectedOption: "B"}, {QuestionID: 2, SelectedOption: "B"}}, 1},
		{"correction wins", []model.AnswerSubmission{{QuestionID: 3, SelectedOption: "A"}, {QuestionID: 3, SelectedOption: "C"}}, 1},
		{"unknown ids ignored", []model.AnswerSubmission{{QuestionID: 7, SelectedOption: "A"}, {QuestionID: 8, SelectedOption: "B"}}, 0},
		{"unanswered never correct", []model.AnswerSubmission{{QuestionID: 2, SelectedOption: "B"}}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, score := Evaluate(questions, tc.answers)
			assert.Equal(t, tc.score, score)
			require.Len(t, results, len(questions))

			correct := 0
			for _, r := range results {
				if r.IsCorrect {
					correct++
				}
			}
			assert.Equal(t, score, correct)
			assert.LessOrEqual(t, score, len(questions))
		})
	}
}

func TestQuizService_GetQuiz(t *testing.T) {
	svc, briefing, db := newQuizFixture(t)
	ctx := context.Background()

	view, err := svc.GetQuiz(ctx, "btc-rally")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin rallies past resistance", view.Article.Title)
	require.NotNil(t, view.Article.CallToAction)
	assert.Equal(t, model.QuizMeta{QuestionCount: 5, RewardPerQuestion: 10, MaxReward: 50}, view.Quiz)
	require.Len(t, view.Questions, 5)
	assert.Equal(t, briefing.Quiz.Questions[0].ID, view.Questions[0].ID)
	assert.Equal(t, briefing.Quiz.Questions[0].Options, view.Questions[0].Options)

	_, err = svc.GetQuiz(ctx, "nope")
	assert.ErrorIs(t, err, util.ErrQuizNotFound)

	require.NoError(t, db.Where("article_slug = ?", "btc-rally").Delete(&model.QuizQuestion{}).Error)
	_, err = svc.GetQuiz(ctx, "btc-rally")
	assert.ErrorIs(t, err, util.ErrQuizUnavailable)
}

func TestQuizService_GetHistory_RequiresWallet(t *testing.T) {
	svc, _, _ := newQuizFixture(t)

	_, err := svc.GetHistory(context.Background(), " ")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestQuizService_GetLeaderboard(t *testing.T) {
	svc, briefing, _ := newQuizFixture(t)
	ctx := context.Background()

	_, err := svc.SubmitAttempt(ctx, "0xaaa", "btc-rally", answerAll(briefing, "A"))
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(ctx, "0xbbb", "btc-rally", answerAll(briefing, "B"))
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, model.LeaderboardEntry{Rank: 1, WalletAddress: "0xaaa", TotalCoins: 30, TotalQuizzes: 1}, board[0])
	assert.Equal(t, 2, board[1].Rank)

	board, err = svc.GetLeaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}
