package model

import (
	"strings"
	"time"
)

// ArticleInput 新闻源提供的文章摘要，作为生成输入
type ArticleInput struct {
	Slug        string  `json:"slug" validate:"required,max=191"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	SourceName  *string `json:"sourceName"`
	ImageURL    *string `json:"imageUrl"`
	SourceLink  *string `json:"sourceLink"`
}

func (in *ArticleInput) Normalize() {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = trimOptional(in.Description)
	in.SourceName = trimOptional(in.SourceName)
	in.ImageURL = trimOptional(in.ImageURL)
	in.SourceLink = trimOptional(in.SourceLink)
}

func (in ArticleInput) ToArticle() Article {
	return Article{
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		SourceName:  in.SourceName,
		SourceLink:  in.SourceLink,
	}
}

type Section struct {
	Heading    string   `json:"heading" validate:"required"`
	Paragraphs []string `json:"paragraphs" validate:"min=1,dive,required"`
}

type Source struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

type QuizOptions struct {
	A string `json:"A" validate:"required"`
	B string `json:"B" validate:"required"`
	C string `json:"C" validate:"required"`
	D string `json:"D" validate:"required"`
}

// Get 按选项字母取文本
func (o QuizOptions) Get(option string) string {
	switch option {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	}
	return ""
}

type GeneratedQuestion struct {
	Prompt        string      `json:"prompt" validate:"required"`
	Options       QuizOptions `json:"options"`
	CorrectOption string      `json:"correctOption" validate:"required,oneof=A B C D"`
	Explanation   string      `json:"explanation,omitempty"`
}

type GeneratedQuiz struct {
	CallToAction string              `json:"callToAction" validate:"required"`
	Questions    []GeneratedQuestion `json:"questions" validate:"len=5,dive"`
}

// GeneratedBriefing 模型返回的结构化简报，写库前必须通过校验
type GeneratedBriefing struct {
	Summary      string        `json:"summary" validate:"required"`
	KeyTakeaways []string      `json:"keyTakeaways" validate:"min=2,max=5,dive,required"`
	Sections     []Section     `json:"sections" validate:"min=2,dive"`
	Sources      []Source      `json:"sources" validate:"min=1,max=5,dive"`
	Quiz         GeneratedQuiz `json:"quiz"`
}

// Normalize 去掉首尾空白，纯空白字段随后会被 required 拒绝
func (g *GeneratedBriefing) Normalize() {
	g.Summary = strings.TrimSpace(g.Summary)
	for i := range g.KeyTakeaways {
		g.KeyTakeaways[i] = strings.TrimSpace(g.KeyTakeaways[i])
	}
	for i := range g.Sections {
		s := &g.Sections[i]
		s.Heading = strings.TrimSpace(s.Heading)
		for j := range s.Paragraphs {
			s.Paragraphs[j] = strings.TrimSpace(s.Paragraphs[j])
		}
	}
	for i := range g.Sources {
		src := &g.Sources[i]
		src.ID = strings.TrimSpace(src.ID)
		src.Title = strings.TrimSpace(src.Title)
		src.URL = strings.TrimSpace(src.URL)
	}
	g.Quiz.CallToAction = strings.TrimSpace(g.Quiz.CallToAction)
	for i := range g.Quiz.Questions {
		q := &g.Quiz.Questions[i]
		q.Prompt = strings.TrimSpace(q.Prompt)
		q.Options.A = strings.TrimSpace(q.Options.A)
		q.Options.B = strings.TrimSpace(q.Options.B)
		q.Options.C = strings.TrimSpace(q.Options.C)
		q.Options.D = strings.TrimSpace(q.Options.D)
		q.CorrectOption = strings.ToUpper(strings.TrimSpace(q.CorrectOption))
		q.Explanation = strings.TrimSpace(q.Explanation)
	}
}

type BriefingQuestion struct {
	ID            uint        `json:"id"`
	Prompt        string      `json:"prompt"`
	Options       QuizOptions `json:"options"`
	CorrectOption string      `json:"correctOption"`
	Explanation   *string     `json:"explanation"`
}

type BriefingQuiz struct {
	CallToAction string             `json:"callToAction"`
	Questions    []BriefingQuestion `json:"questions"`
}

// Briefing 缓存命中时返回的完整简报：文章 + 增强内容 + 5 道题
type Briefing struct {
	Article      Article      `json:"article"`
	Summary      string       `json:"summary"`
	KeyTakeaways []string     `json:"keyTakeaways"`
	Sections     []Section    `json:"sections"`
	Sources      []Source     `json:"sources"`
	Quiz         BriefingQuiz `json:"quiz"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

// PublicBriefing 对外返回的简报，题目不含答案
type PublicBriefing struct {
	Article      Article    `json:"article"`
	Summary      string     `json:"summary"`
	KeyTakeaways []string   `json:"keyTakeaways"`
	Sections     []Section  `json:"sections"`
	Sources      []Source   `json:"sources"`
	Quiz         PublicQuiz `json:"quiz"`
	GeneratedAt  time.Time  `json:"generatedAt"`
}

type PublicQuiz struct {
	CallToAction string           `json:"callToAction"`
	Questions    []PublicQuestion `json:"questions"`
}

func (b *Briefing) Public() PublicBriefing {
	questions := make([]PublicQuestion, 0, len(b.Quiz.Questions))
	for _, q := range b.Quiz.Questions {
		questions = append(questions, PublicQuestion{ID: q.ID, Prompt: q.Prompt, Options: q.Options})
	}
	return PublicBriefing{
		Article:      b.Article,
		Summary:      b.Summary,
		KeyTakeaways: b.KeyTakeaways,
		Sections:     b.Sections,
		Sources:      b.Sources,
		Quiz:         PublicQuiz{CallToAction: b.Quiz.CallToAction, Questions: questions},
		GeneratedAt:  b.GeneratedAt,
	}
}

// Content 还原成生成结构，用于读取时复用同一套校验
func (b *Briefing) Content() GeneratedBriefing {
	questions := make([]GeneratedQuestion, 0, len(b.Quiz.Questions))
	for _, q := range b.Quiz.Questions {
		explanation := ""
		if q.Explanation != nil {
			explanation = *q.Explanation
		}
		questions = append(questions, GeneratedQuestion{
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			Explanation:   explanation,
		})
	}
	return GeneratedBriefing{
		Summary:      b.Summary,
		KeyTakeaways: b.KeyTakeaways,
		Sections:     b.Sections,
		Sources:      b.Sources,
		Quiz: GeneratedQuiz{
			CallToAction: b.Quiz.CallToAction,
			Questions:    questions,
		},
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
