package database

import (
	"coinbrief_backend/internal/model"
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// SchemaManager 进程内只成功执行一次建表；失败后下次调用重新执行
type SchemaManager struct {
	migrate func(ctx context.Context) error
	ready   atomic.Bool
	group   singleflight.Group
}

func NewSchemaManager(migrate func(ctx context.Context) error) *SchemaManager {
	return &SchemaManager{migrate: migrate}
}

// NewGormSchemaManager 使用 Migrate 建表
func NewGormSchemaManager(db *gorm.DB) *SchemaManager {
	return NewSchemaManager(func(ctx context.Context) error {
		return Migrate(db.WithContext(ctx))
	})
}

// Ensure 并发调用共享同一次执行
func (m *SchemaManager) Ensure(ctx context.Context) error {
	if m.ready.Load() {
		return nil
	}

	ch := m.group.DoChan("schema", func() (interface{}, error) {
		if m.ready.Load() {
			return nil, nil
		}
		// 与单个请求的生命周期解耦，避免首个请求取消导致其它等待者一起失败
		if err := m.migrate(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		m.ready.Store(true)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SchemaManager) Ready() bool {
	return m.ready.Load()
}

// Migrate 按依赖顺序建表，只做新增，不删除列
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Article{},
		&model.ArticleEnhancement{},
		&model.QuizQuestion{},
		&model.UserProfile{},
		&model.QuizAttempt{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// 早期版本的 article_enhancements 没有 quiz_call_to_action 列
	migrator := db.Migrator()
	if !migrator.HasColumn(&model.ArticleEnhancement{}, "QuizCallToAction") {
		if err := migrator.AddColumn(&model.ArticleEnhancement{}, "QuizCallToAction"); err != nil {
			return fmt.Errorf("add quiz_call_to_action: %w", err)
		}
	}

	return nil
}
