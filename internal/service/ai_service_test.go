package service

import (
	"coinbrief_backend/internal/config"
	"coinbrief_backend/internal/model"
	"coinbrief_backend/internal/testutil"
	"coinbrief_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func briefingJSON(t *testing.T, b *model.GeneratedBriefing) string {
	t.Helper()
	data, err := json.Marshal(b)
	require.NoError(t, err)
	return string(data)
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{Model: "sonar", TimeoutSeconds: 5}
}

func TestAIService_Generate_Success(t *testing.T) {
	client := new(MockChatClient)
	svc := newAIServiceWithClient(client, testAIConfig())
	expected := testutil.SampleBriefing()

	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "sonar" &&
			req.ResponseFormat != nil &&
			req.ResponseFormat.Type == openai.ChatCompletionResponseFormatTypeJSONSchema &&
			len(req.Messages) == 2
	})).Return(completion("```json\n"+briefingJSON(t, expected)+"\n```"), nil).Once()

	got, raw, err := svc.Generate(context.Background(), testutil.SampleInput("btc-rally"))
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.True(t, json.Valid(raw))
	client.AssertExpectations(t)
}

func TestAIService_Generate_EmptyTitleSkipsCall(t *testing.T) {
	client := new(MockChatClient)
	svc := newAIServiceWithClient(client, testAIConfig())

	_, _, err := svc.Generate(context.Background(), model.ArticleInput{Slug: "x", Title: "   "})

	assert.ErrorIs(t, err, util.ErrInvalidInput)
	client.AssertNotCalled(t, "CreateChatCompletion", mock.Anything, mock.Anything)
}

func TestAIService_Generate_TransportError(t *testing.T) {
	client := new(MockChatClient)
	svc := newAIServiceWithClient(client, testAIConfig())
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("connection reset")).Once()

	_, _, err := svc.Generate(context.Background(), testutil.SampleInput("btc-rally"))

	assert.ErrorIs(t, err, util.ErrGenerationFailed)
	assert.NotErrorIs(t, err, util.ErrInvalidInput)
}

func TestAIService_Generate_RejectsInvalidPayloads(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(b *model.GeneratedBriefing)
	}{
		{"blank summary", func(b *model.GeneratedBriefing) { b.Summary = "   " }},
		{"one takeaway", func(b *model.GeneratedBriefing) { b.KeyTakeaways = b.KeyTakeaways[:1] }},
		{"six takeaways", func(b *model.GeneratedBriefing) {
			b.KeyTakeaways = []string{"a", "b", "c", "d", "e", "f"}
		}},
		{"empty takeaway", func(b *model.GeneratedBriefing) { b.KeyTakeaways[1] = "" }},
		{"one section", func(b *model.GeneratedBriefing) { b.Sections = b.Sections[:1] }},
		{"section without paragraphs", func(b *model.GeneratedBriefing) { b.Sections[0].Paragraphs = nil }},
		{"no sources", func(b *model.GeneratedBriefing) { b.Sources = nil }},
		{"bad source url", func(b *model.GeneratedBriefing) { b.Sources[0].URL = "not a url" }},
		{"four questions", func(b *model.GeneratedBriefing) { b.Quiz.Questions = b.Quiz.Questions[:4] }},
		{"blank option", func(b *model.GeneratedBriefing) { b.Quiz.Questions[2].Options.D = " " }},
		{"bad correct option", func(b *model.GeneratedBriefing) { b.Quiz.Questions[0].CorrectOption = "E" }},
		{"missing call to action", func(b *model.GeneratedBriefing) { b.Quiz.CallToAction = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(MockChatClient)
			svc := newAIServiceWithClient(client, testAIConfig())
			b := testutil.SampleBriefing()
			tc.mutate(b)
			client.On("CreateChatCompletion", mock.Anything, mock.Anything).
				Return(completion(briefingJSON(t, b)), nil).Once()

			got, _, err := svc.Generate(context.Background(), testutil.SampleInput("btc-rally"))

			assert.Nil(t, got)
			assert.ErrorIs(t, err, util.ErrGenerationFailed)
		})
	}
}

func TestAIService_Generate_MalformedJSON(t *testing.T) {
	client := new(MockChatClient)
	svc := newAIServiceWithClient(client, testAIConfig())
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(completion("Sorry, I cannot help with that."), nil).Once()

	_, raw, err := svc.Generate(context.Background(), testutil.SampleInput("btc-rally"))

	assert.ErrorIs(t, err, util.ErrGenerationFailed)
	assert.Equal(t, "Sorry, I cannot help with that.", string(raw))
}

func TestAIService_Generate_NormalizesOutput(t *testing.T) {
	client := new(MockChatClient)
	svc := newAIServiceWithClient(client, testAIConfig())
	b := testutil.SampleBriefing()
	b.Summary = "  padded  "
	b.Quiz.Questions[1].CorrectOption = " b "
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(completion(briefingJSON(t, b)), nil).Once()

	got, _, err := svc.Generate(context.Background(), testutil.SampleInput("btc-rally"))

	require.NoError(t, err)
	assert.Equal(t, "padded", got.Summary)
	assert.Equal(t, "B", got.Quiz.Questions[1].CorrectOption)
}

func TestAIService_UpdateConfig(t *testing.T) {
	svc := NewAIService(config.AIConfig{BaseURL: "https://api.perplexity.ai/", APIKey: "k", Model: "sonar"})
	assert.Equal(t, "sonar", svc.Model())

	svc.UpdateConfig(config.AIConfig{APIKey: "k", Model: "sonar-pro"})
	assert.Equal(t, "sonar-pro", svc.Model())
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
}
