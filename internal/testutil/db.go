// Package testutil 测试用的内存数据库与示例数据
package testutil

import (
	"coinbrief_backend/internal/model"
	"coinbrief_backend/pkg/database"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB 每个测试独立的 SQLite 内存库，已建表并开启外键
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接，保证内存库在整个测试期间存活；事务内的查询必须走 tx
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func strPtr(s string) *string { return &s }

// SampleInput 示例文章输入
func SampleInput(slug string) model.ArticleInput {
	return model.ArticleInput{
		Slug:        slug,
		Title:       "Bitcoin rallies past resistance",
		Description: strPtr("BTC climbed as ETF inflows accelerated."),
		SourceName:  strPtr("CoinDesk"),
		ImageURL:    strPtr("https://img.example.com/btc.png"),
		SourceLink:  strPtr("https://www.coindesk.com/markets/btc-rally"),
	}
}

// SampleBriefing 一份能通过校验的生成结果，正确答案依次为 A B A A C
func SampleBriefing() *model.GeneratedBriefing {
	correct := []string{"A", "B", "A", "A", "C"}
	questions := make([]model.GeneratedQuestion, 0, len(correct))
	for i, c := range correct {
		questions = append(questions, model.GeneratedQuestion{
			Prompt: fmt.Sprintf("Question %d?", i+1),
			Options: model.QuizOptions{
				A: fmt.Sprintf("q%d option A", i+1),
				B: fmt.Sprintf("q%d option B", i+1),
				C: fmt.Sprintf("q%d option C", i+1),
				D: fmt.Sprintf("q%d option D", i+1),
			},
			CorrectOption: c,
			Explanation:   fmt.Sprintf("Because of reason %d.", i+1),
		})
	}

	return &model.GeneratedBriefing{
		Summary:      "Bitcoin broke a key level on strong spot demand.",
		KeyTakeaways: []string{"ETF inflows hit a monthly high", "Funding rates stayed neutral"},
		Sections: []model.Section{
			{Heading: "What happened", Paragraphs: []string{"BTC rose 6% [[coindesk]]."}},
			{Heading: "Why it matters", Paragraphs: []string{"Spot demand leads [[theblock]] [[unknown]]."}},
		},
		Sources: []model.Source{
			{ID: "coindesk", Title: "CoinDesk", URL: "https://www.coindesk.com/markets/btc-rally"},
			{ID: "theblock", Title: "The Block", URL: "https://www.theblock.co/btc"},
		},
		Quiz: model.GeneratedQuiz{
			CallToAction: "Test what you learned about the rally.",
			Questions:    questions,
		},
	}
}
