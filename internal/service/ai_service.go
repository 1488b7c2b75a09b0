package service

import (
	"coinbrief_backend/internal/config"
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// chatCompleter go-openai 客户端中用到的部分，测试里替换为 mock
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type aiSettings struct {
	client  chatCompleter
	model   string
	timeout time.Duration
}

// AIService 调用 OpenAI 兼容接口生成结构化简报，配置可热更新
type AIService struct {
	settings atomic.Pointer[aiSettings]
	schema   *jsonschema.Definition
}

func NewAIService(cfg config.AIConfig) *AIService {
	s := &AIService{schema: briefingSchema()}
	s.UpdateConfig(cfg)
	return s
}

func newAIServiceWithClient(client chatCompleter, cfg config.AIConfig) *AIService {
	s := &AIService{schema: briefingSchema()}
	s.settings.Store(&aiSettings{client: client, model: cfg.Model, timeout: cfg.Timeout()})
	return s
}

// UpdateConfig 替换模型客户端，进行中的请求继续使用旧客户端
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	s.settings.Store(&aiSettings{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout(),
	})
}

func (s *AIService) Model() string {
	return s.settings.Load().model
}

// Generate 返回校验通过的简报和模型原始输出；任何失败都不会产生部分结果
func (s *AIService) Generate(ctx context.Context, input model.ArticleInput) (*model.GeneratedBriefing, []byte, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, nil, fmt.Errorf("%w: title is required", util.ErrInvalidInput)
	}

	settings := s.settings.Load()
	ctx, cancel := context.WithTimeout(ctx, settings.timeout)
	defer cancel()

	resp, err := settings.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: settings.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: briefingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildBriefingPrompt(input)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "article_briefing",
				Schema: s.schema,
			},
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil, fmt.Errorf("%w: empty completion", util.ErrGenerationFailed)
	}

	raw := []byte(stripCodeFence(resp.Choices[0].Message.Content))
	briefing, err := parseBriefing(raw)
	if err != nil {
		return nil, raw, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}
	return briefing, raw, nil
}

func parseBriefing(raw []byte) (*model.GeneratedBriefing, error) {
	var briefing model.GeneratedBriefing
	if err := json.Unmarshal(raw, &briefing); err != nil {
		return nil, fmt.Errorf("decode briefing: %w", err)
	}
	if err := ValidateBriefing(&briefing); err != nil {
		return nil, err
	}
	return &briefing, nil
}

// ValidateBriefing 规范化后校验；缓存读取也复用这里
func ValidateBriefing(b *model.GeneratedBriefing) error {
	b.Normalize()
	return util.ValidateStruct(b)
}

// stripCodeFence 部分模型即使指定了 json_schema 仍会包一层 ```json
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.Index(content, "\n"); i >= 0 {
		content = content[i+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

const briefingSystemPrompt = "You are an elite crypto research analyst writing for a premium audience. " +
	"Create a polished briefing that feels like a high-end market intelligence report. " +
	"Respond only with JSON that matches the provided schema."

func buildBriefingPrompt(input model.ArticleInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(input.Title))
	if input.Description != nil && *input.Description != "" {
		fmt.Fprintf(&b, "Incoming summary: %s\n", *input.Description)
	}
	if input.SourceName != nil && *input.SourceName != "" {
		fmt.Fprintf(&b, "Original outlet: %s\n", *input.SourceName)
	}
	if input.SourceLink != nil && *input.SourceLink != "" {
		fmt.Fprintf(&b, "Original link: %s\n", *input.SourceLink)
	}
	b.WriteString(`
Instructions:
- Craft a succinct summary paragraph.
- Provide 3-4 bullet key takeaways written in complete sentences.
- Create 2-4 sections with thoughtful headings and 1-3 paragraphs each.
- Weave inline citation markers of the form [[SOURCE_ID]] into paragraphs where relevant.
- Each SOURCE_ID must match one of the IDs returned in the sources array.
- Curate 3-5 credible sources with human-friendly titles and working URLs.
- Write a one-sentence quiz call to action.
- Write exactly 5 multiple-choice questions about the article, each with options A, B, C and D,
  the letter of the correct option, and a one-sentence explanation.
- Avoid financial advice; focus on context, implications, and sentiment.
- Use premium tone: confident, insightful, and concise.`)
	return b.String()
}

func briefingSchema() *jsonschema.Definition {
	str := jsonschema.Definition{Type: jsonschema.String}
	options := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"A": str, "B": str, "C": str, "D": str,
		},
		Required: []string{"A", "B", "C", "D"},
	}

	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"summary":      str,
			"keyTakeaways": {Type: jsonschema.Array, Items: &str},
			"sections": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"heading":    str,
						"paragraphs": {Type: jsonschema.Array, Items: &str},
					},
					Required: []string{"heading", "paragraphs"},
				},
			},
			"sources": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"id":    str,
						"title": str,
						"url":   str,
					},
					Required: []string{"id", "title", "url"},
				},
			},
			"quiz": {
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"callToAction": str,
					"questions": {
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"prompt":        str,
								"options":       options,
								"correctOption": {Type: jsonschema.String, Enum: util.QuizOptionLetters},
								"explanation":   str,
							},
							Required: []string{"prompt", "options", "correctOption"},
						},
					},
				},
				Required: []string{"callToAction", "questions"},
			},
		},
		Required: []string{"summary", "keyTakeaways", "sections", "sources", "quiz"},
	}
}
