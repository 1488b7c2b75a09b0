package repository

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/util"
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository 简报缓存：articles + article_enhancements + quiz_questions
type ArticleRepository struct {
	DB *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{DB: db}
}

func (r *ArticleRepository) FindArticle(ctx context.Context, slug string) (*model.Article, error) {
	var article model.Article
	err := r.DB.WithContext(ctx).First(&article, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// FindEnhancement 尚未生成时返回 nil, nil
func (r *ArticleRepository) FindEnhancement(ctx context.Context, slug string) (*model.ArticleEnhancement, error) {
	var enhancement model.ArticleEnhancement
	err := r.DB.WithContext(ctx).First(&enhancement, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enhancement, nil
}

// GetBriefing 只有增强内容存在且恰好有 5 道题时才算命中
func (r *ArticleRepository) GetBriefing(ctx context.Context, slug string) (*model.Briefing, error) {
	var briefing *model.Briefing

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article model.Article
		if err := tx.First(&article, "slug = ?", slug).Error; err != nil {
			return err
		}

		var enhancement model.ArticleEnhancement
		if err := tx.Omit(clause.Associations).First(&enhancement, "slug = ?", slug).Error; err != nil {
			return err
		}

		var questions []model.QuizQuestion
		if err := tx.Where("article_slug = ?", slug).Order("id asc").Find(&questions).Error; err != nil {
			return err
		}
		if len(questions) != util.QuizQuestionCount {
			return gorm.ErrRecordNotFound
		}

		briefing = assembleBriefing(article, enhancement, questions)
		return nil
	}, r.readTxOptions()...)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrBriefingNotFound
	}
	if err != nil {
		return nil, err
	}
	return briefing, nil
}

// SaveBriefing 在同一事务内 upsert 文章与增强内容，并整体替换题目
func (r *ArticleRepository) SaveBriefing(ctx context.Context, input model.ArticleInput, generated *model.GeneratedBriefing) (*model.Briefing, error) {
	now := time.Now().UTC()

	article := input.ToArticle()
	article.CreatedAt = now
	article.UpdatedAt = now

	enhancement := model.ArticleEnhancement{
		Slug:             input.Slug,
		Summary:          generated.Summary,
		KeyTakeaways:     datatypes.JSONSlice[string](generated.KeyTakeaways),
		Sections:         datatypes.JSONSlice[model.Section](generated.Sections),
		Sources:          datatypes.JSONSlice[model.Source](generated.Sources),
		QuizCallToAction: generated.Quiz.CallToAction,
		GeneratedAt:      now,
	}

	questions := make([]model.QuizQuestion, 0, len(generated.Quiz.Questions))
	for _, q := range generated.Quiz.Questions {
		var explanation *string
		if q.Explanation != "" {
			e := q.Explanation
			explanation = &e
		}
		questions = append(questions, model.QuizQuestion{
			ArticleSlug:   input.Slug,
			Prompt:        q.Prompt,
			OptionA:       q.Options.A,
			OptionB:       q.Options.B,
			OptionC:       q.Options.C,
			OptionD:       q.Options.D,
			CorrectOption: q.CorrectOption,
			Explanation:   explanation,
			CreatedAt:     now,
		})
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "image_url", "source_name", "source_link", "updated_at"}),
		}).Create(&article).Error; err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"summary", "key_takeaways", "sections", "sources", "quiz_call_to_action", "generated_at"}),
		}).Create(&enhancement).Error; err != nil {
			return err
		}

		// 先删后插，不做合并
		if err := tx.Where("article_slug = ?", input.Slug).Delete(&model.QuizQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&questions).Error; err != nil {
			return err
		}

		// upsert 命中时 created_at 以库中为准
		return tx.First(&article, "slug = ?", input.Slug).Error
	})
	if err != nil {
		return nil, err
	}

	return assembleBriefing(article, enhancement, questions), nil
}

// readTxOptions PostgreSQL 下读取使用快照，避免读到新旧两次生成的混合结果
func (r *ArticleRepository) readTxOptions() []*sql.TxOptions {
	if r.DB.Dialector.Name() == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
	}
	return nil
}

func assembleBriefing(article model.Article, enhancement model.ArticleEnhancement, questions []model.QuizQuestion) *model.Briefing {
	quizQuestions := make([]model.BriefingQuestion, 0, len(questions))
	for _, q := range questions {
		quizQuestions = append(quizQuestions, model.BriefingQuestion{
			ID:            q.ID,
			Prompt:        q.Prompt,
			Options:       q.Options(),
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		})
	}

	return &model.Briefing{
		Article:      article,
		Summary:      enhancement.Summary,
		KeyTakeaways: []string(enhancement.KeyTakeaways),
		Sections:     []model.Section(enhancement.Sections),
		Sources:      []model.Source(enhancement.Sources),
		Quiz: model.BriefingQuiz{
			CallToAction: enhancement.QuizCallToAction,
			Questions:    quizQuestions,
		},
		GeneratedAt: enhancement.GeneratedAt,
	}
}
