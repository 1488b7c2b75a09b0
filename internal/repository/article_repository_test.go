package repository

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/testutil"
	"coinbrief_backend/internal/util"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleRepository_GetBriefing_Miss(t *testing.T) {
	repo := NewArticleRepository(testutil.NewTestDB(t))

	_, err := repo.GetBriefing(context.Background(), "missing")

	assert.ErrorIs(t, err, util.ErrBriefingNotFound)
}

func TestArticleRepository_SaveThenGet(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(testutil.NewTestDB(t))
	input := testutil.SampleInput("btc-rally")
	generated := testutil.SampleBriefing()

	saved, err := repo.SaveBriefing(ctx, input, generated)
	require.NoError(t, err)
	require.Len(t, saved.Quiz.Questions, 5)

	got, err := repo.GetBriefing(ctx, "btc-rally")
	require.NoError(t, err)

	assert.Equal(t, input.Title, got.Article.Title)
	assert.Equal(t, *input.SourceName, *got.Article.SourceName)
	assert.Equal(t, generated.Summary, got.Summary)
	assert.Equal(t, generated.KeyTakeaways, got.KeyTakeaways)
	assert.Equal(t, generated.Sections, got.Sections)
	assert.Equal(t, generated.Sources, got.Sources)
	assert.Equal(t, generated.Quiz.CallToAction, got.Quiz.CallToAction)

	require.Len(t, got.Quiz.Questions, 5)
	for i, q := range got.Quiz.Questions {
		assert.Equal(t, saved.Quiz.Questions[i].ID, q.ID)
		assert.Equal(t, generated.Quiz.Questions[i].Prompt, q.Prompt)
		assert.Equal(t, generated.Quiz.Questions[i].Options, q.Options)
		assert.Equal(t, generated.Quiz.Questions[i].CorrectOption, q.CorrectOption)
		require.NotNil(t, q.Explanation)
		assert.Equal(t, generated.Quiz.Questions[i].Explanation, *q.Explanation)
	}
}

func TestArticleRepository_SaveReplacesQuestions(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	input := testutil.SampleInput("btc-rally")

	first, err := repo.SaveBriefing(ctx, input, testutil.SampleBriefing())
	require.NoError(t, err)

	regenerated := testutil.SampleBriefing()
	regenerated.Summary = "A second take."
	regenerated.Quiz.Questions[0].Prompt = "Fresh question?"
	input.Title = "Bitcoin rally, updated"

	second, err := repo.SaveBriefing(ctx, input, regenerated)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.QuizQuestion{}).Where("article_slug = ?", "btc-rally").Count(&count).Error)
	assert.EqualValues(t, 5, count)

	got, err := repo.GetBriefing(ctx, "btc-rally")
	require.NoError(t, err)
	assert.Equal(t, "A second take.", got.Summary)
	assert.Equal(t, "Bitcoin rally, updated", got.Article.Title)
	assert.Equal(t, "Fresh question?", got.Quiz.Questions[0].Prompt)
	assert.NotEqual(t, first.Quiz.Questions[0].ID, got.Quiz.Questions[0].ID)
	assert.Equal(t, second.Quiz.Questions[0].ID, got.Quiz.Questions[0].ID)
	// created_at 保留首次写入的值
	assert.True(t, first.Article.CreatedAt.Equal(second.Article.CreatedAt))
}

func TestArticleRepository_GetBriefing_RequiresFiveQuestions(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)

	_, err := repo.SaveBriefing(ctx, testutil.SampleInput("btc-rally"), testutil.SampleBriefing())
	require.NoError(t, err)

	var q model.QuizQuestion
	require.NoError(t, db.Where("article_slug = ?", "btc-rally").Order("id desc").First(&q).Error)
	require.NoError(t, db.Delete(&q).Error)

	_, err = repo.GetBriefing(ctx, "btc-rally")
	assert.ErrorIs(t, err, util.ErrBriefingNotFound)
}

func TestArticleRepository_OptionalFieldsStayNull(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(testutil.NewTestDB(t))
	input := model.ArticleInput{Slug: "bare", Title: "Bare article"}
	generated := testutil.SampleBriefing()
	generated.Quiz.Questions[2].Explanation = ""

	_, err := repo.SaveBriefing(ctx, input, generated)
	require.NoError(t, err)

	got, err := repo.GetBriefing(ctx, "bare")
	require.NoError(t, err)
	assert.Nil(t, got.Article.Description)
	assert.Nil(t, got.Article.ImageURL)
	assert.Nil(t, got.Quiz.Questions[2].Explanation)
}

func TestArticleRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)

	_, err := repo.SaveBriefing(ctx, testutil.SampleInput("btc-rally"), testutil.SampleBriefing())
	require.NoError(t, err)

	result := db.WithContext(ctx).Delete(&model.Article{}, "slug = ?", "btc-rally")
	require.NoError(t, result.Error)
	assert.EqualValues(t, 1, result.RowsAffected)

	var enhancements, questions int64
	require.NoError(t, db.Model(&model.ArticleEnhancement{}).Count(&enhancements).Error)
	require.NoError(t, db.Model(&model.QuizQuestion{}).Count(&questions).Error)
	assert.Zero(t, enhancements)
	assert.Zero(t, questions)
}

func TestArticleRepository_FindArticle(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(testutil.NewTestDB(t))

	_, err := repo.FindArticle(ctx, "btc-rally")
	assert.ErrorIs(t, err, util.ErrArticleNotFound)

	_, err = repo.SaveBriefing(ctx, testutil.SampleInput("btc-rally"), testutil.SampleBriefing())
	require.NoError(t, err)

	article, err := repo.FindArticle(ctx, "btc-rally")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin rallies past resistance", article.Title)
}

func TestArticleRepository_ConcurrentReadsSeeWholeGenerations(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	input := testutil.SampleInput("btc-rally")

	generation := func(n int) *model.GeneratedBriefing {
		b := testutil.SampleBriefing()
		b.Summary = fmt.Sprintf("gen-%d", n)
		for i := range b.Quiz.Questions {
			b.Quiz.Questions[i].Prompt = fmt.Sprintf("gen-%d question %d", n, i)
		}
		return b
	}
	_, err := repo.SaveBriefing(ctx, input, generation(0))
	require.NoError(t, err)

	const writes = 10
	done := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, 64)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for n := 1; n <= writes; n++ {
			if _, err := repo.SaveBriefing(ctx, input, generation(n)); err != nil {
				errs <- err
				return
			}
		}
	}()

	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				b, err := repo.GetBriefing(ctx, "btc-rally")
				if err != nil {
					errs <- err
					return
				}
				if len(b.Quiz.Questions) != 5 {
					errs <- fmt.Errorf("read %d questions", len(b.Quiz.Questions))
					return
				}
				// 题目与摘要必须来自同一次生成
				for _, q := range b.Quiz.Questions {
					if !strings.HasPrefix(q.Prompt, b.Summary+" ") {
						errs <- fmt.Errorf("question %q mixed with summary %q", q.Prompt, b.Summary)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	got, err := repo.GetBriefing(ctx, "btc-rally")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("gen-%d", writes), got.Summary)
}
