package service

import (
	"coinbrief_backend/internal/citation"
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/repository"
	"coinbrief_backend/internal/util"
	"coinbrief_backend/pkg/logger"
	"coinbrief_backend/pkg/monitoring"
	"coinbrief_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type BriefingGenerator interface {
	Generate(ctx context.Context, input model.ArticleInput) (*model.GeneratedBriefing, []byte, error)
}

// BriefingCache 简报读缓存，Get 未命中返回 nil, nil
type BriefingCache interface {
	Get(ctx context.Context, slug string) (*model.Briefing, error)
	Set(ctx context.Context, briefing *model.Briefing) error
	Invalidate(ctx context.Context, slug string) error
}

type BriefingService struct {
	Repo      *repository.ArticleRepository
	Generator BriefingGenerator
	Cache     BriefingCache
	Storage   *StorageService

	group singleflight.Group
}

// NewBriefingService cache 与 storage 可以为 nil
func NewBriefingService(repo *repository.ArticleRepository, generator BriefingGenerator, cache BriefingCache, storage *StorageService) *BriefingService {
	return &BriefingService{
		Repo:      repo,
		Generator: generator,
		Cache:     cache,
		Storage:   storage,
	}
}

// GetOrGenerate 命中缓存直接返回；未命中时同一 slug 只发起一次生成
func (s *BriefingService) GetOrGenerate(ctx context.Context, input model.ArticleInput, force bool) (*model.Briefing, error) {
	input.Normalize()
	if err := util.ValidateStruct(input); err != nil {
		return nil, err
	}

	if !force {
		briefing, err := s.lookup(ctx, input.Slug)
		if err != nil {
			return nil, err
		}
		if briefing != nil {
			return briefing, nil
		}
	}

	// 强制生成单独成组，不复用进行中的普通生成
	key := input.Slug
	if force {
		key += "|force"
	}
	ch := s.group.DoChan(key, func() (interface{}, error) {
		// 生成结果由所有等待者共享，不随单个请求取消
		return s.loadOrGenerate(context.WithoutCancel(ctx), input, force)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Briefing), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// loadOrGenerate 进入单飞后再查一次库，前一组刚写入的结果直接复用
func (s *BriefingService) loadOrGenerate(ctx context.Context, input model.ArticleInput, force bool) (*model.Briefing, error) {
	if !force {
		briefing, err := s.Repo.GetBriefing(ctx, input.Slug)
		switch {
		case err == nil && s.valid(briefing):
			return briefing, nil
		case err != nil && !errors.Is(err, util.ErrBriefingNotFound):
			return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
		}
	}
	return s.generate(ctx, input)
}

func (s *BriefingService) lookup(ctx context.Context, slug string) (*model.Briefing, error) {
	if s.Cache != nil {
		briefing, err := s.Cache.Get(ctx, slug)
		if err != nil {
			logger.Log.Warn("Briefing cache read failed", zap.String("slug", slug), zap.Error(err))
		} else if briefing != nil && s.valid(briefing) {
			monitoring.BriefingLookups.WithLabelValues("redis_hit").Inc()
			return briefing, nil
		}
	}

	briefing, err := s.Repo.GetBriefing(ctx, slug)
	if errors.Is(err, util.ErrBriefingNotFound) {
		monitoring.BriefingLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	if !s.valid(briefing) {
		logger.Log.Warn("Stored briefing failed validation, regenerating", zap.String("slug", slug))
		monitoring.BriefingLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}

	monitoring.BriefingLookups.WithLabelValues("db_hit").Inc()
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, briefing); err != nil {
			logger.Log.Warn("Briefing cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return briefing, nil
}

func (s *BriefingService) valid(b *model.Briefing) bool {
	content := b.Content()
	return ValidateBriefing(&content) == nil
}

func (s *BriefingService) generate(ctx context.Context, input model.ArticleInput) (*model.Briefing, error) {
	ctx, span := tracing.Tracer.Start(ctx, "BriefingService.generate")
	defer span.End()
	span.SetAttributes(attribute.String("article.slug", input.Slug))

	start := time.Now()
	generated, raw, err := s.Generator.Generate(ctx, input)
	monitoring.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.BriefingGenerations.WithLabelValues("failed").Inc()
		span.SetStatus(codes.Error, err.Error())
		if len(raw) > 0 {
			// 校验失败的输出也归档，方便排查
			s.archive(ctx, input.Slug+"-rejected", raw)
		}
		return nil, err
	}

	briefing, err := s.Repo.SaveBriefing(ctx, input, generated)
	if err != nil {
		monitoring.BriefingGenerations.WithLabelValues("save_failed").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	monitoring.BriefingGenerations.WithLabelValues("success").Inc()

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, input.Slug); err != nil {
			logger.Log.Warn("Briefing cache invalidation failed", zap.String("slug", input.Slug), zap.Error(err))
		}
	}
	s.archive(ctx, input.Slug, raw)

	logger.Log.Info("Briefing generated",
		zap.String("slug", input.Slug),
		zap.Duration("elapsed", time.Since(start)),
	)
	return briefing, nil
}

func (s *BriefingService) archive(ctx context.Context, slug string, raw []byte) {
	if s.Storage == nil || len(raw) == 0 {
		return
	}
	location, err := s.Storage.ArchiveBriefing(ctx, slug, raw)
	if err != nil {
		logger.Log.Warn("Briefing archive failed", zap.String("slug", slug), zap.Error(err))
		return
	}
	logger.Log.Debug("Briefing archived", zap.String("slug", slug), zap.String("location", location))
}

type SourceView struct {
	model.Source
	Index  int    `json:"index"`
	Anchor string `json:"anchor"`
}

type RenderedSection struct {
	Heading    string                `json:"heading"`
	Paragraphs [][]citation.Fragment `json:"paragraphs"`
}

type EnhancementView struct {
	Summary          string            `json:"summary"`
	KeyTakeaways     []string          `json:"keyTakeaways"`
	Sections         []RenderedSection `json:"sections"`
	Sources          []SourceView      `json:"sources"`
	QuizCallToAction *string           `json:"quizCallToAction"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

type ArticleView struct {
	Article     model.Article    `json:"article"`
	Enhancement *EnhancementView `json:"enhancement"`
}

// GetArticle 只读取，不会触发生成；正文中的引用标记已解析
func (s *BriefingService) GetArticle(ctx context.Context, slug string) (*ArticleView, error) {
	article, err := s.Repo.FindArticle(ctx, slug)
	if err != nil {
		if errors.Is(err, util.ErrArticleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	enhancement, err := s.Repo.FindEnhancement(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}

	view := &ArticleView{Article: *article}
	if enhancement != nil {
		view.Enhancement = renderEnhancement(enhancement)
	}
	return view, nil
}

func renderEnhancement(e *model.ArticleEnhancement) *EnhancementView {
	renderer := citation.NewRenderer(e.Sources)

	sections := make([]RenderedSection, 0, len(e.Sections))
	for _, sec := range e.Sections {
		sections = append(sections, RenderedSection{
			Heading:    sec.Heading,
			Paragraphs: renderer.RenderAll(sec.Paragraphs),
		})
	}

	sources := make([]SourceView, 0, len(e.Sources))
	for i, src := range e.Sources {
		sources = append(sources, SourceView{Source: src, Index: i + 1, Anchor: citation.AnchorID(src.ID)})
	}

	var cta *string
	if e.QuizCallToAction != "" {
		v := e.QuizCallToAction
		cta = &v
	}

	return &EnhancementView{
		Summary:          e.Summary,
		KeyTakeaways:     []string(e.KeyTakeaways),
		Sections:         sections,
		Sources:          sources,
		QuizCallToAction: cta,
		GeneratedAt:      e.GeneratedAt,
	}
}
