// Package citation 把生成正文中的 [[SOURCE_ID]] 标记解析为按来源顺序编号的引用
package citation

import (
	"coinbrief_backend/internal/model"
	"fmt"
	"regexp"
	"strings"
)

var (
	markerPattern = regexp.MustCompile(`\[\[(.*?)\]\]`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	FragmentText     = "text"
	FragmentCitation = "citation"
)

// Fragment 渲染后的段落片段，Key 在同一段落内唯一
type Fragment struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Index int    `json:"index,omitempty"`
	Href  string `json:"href,omitempty"`
}

type reference struct {
	index  int
	anchor string
}

type Renderer struct {
	lookup map[string]reference
}

func NewRenderer(sources []model.Source) *Renderer {
	lookup := make(map[string]reference, len(sources))
	for i, src := range sources {
		lookup[normalizeID(src.ID)] = reference{index: i + 1, anchor: AnchorID(src.ID)}
	}
	return &Renderer{lookup: lookup}
}

// Render 无法匹配的标记直接丢弃
func (r *Renderer) Render(paragraph string) []Fragment {
	keys := make(map[string]int)
	reserve := func(value string) string {
		n := keys[value]
		keys[value] = n + 1
		return fmt.Sprintf("%s-%d", value, n)
	}

	var fragments []Fragment
	appendText := func(text string) {
		if text == "" {
			return
		}
		fragments = append(fragments, Fragment{Key: reserve(text), Type: FragmentText, Text: text})
	}

	last := 0
	for _, loc := range markerPattern.FindAllStringSubmatchIndex(paragraph, -1) {
		appendText(paragraph[last:loc[0]])
		last = loc[1]

		id := strings.TrimSpace(paragraph[loc[2]:loc[3]])
		if id == "" {
			continue
		}
		ref, ok := r.lookup[strings.ToLower(id)]
		if !ok {
			continue
		}
		fragments = append(fragments, Fragment{
			Key:   reserve("cite-" + id),
			Type:  FragmentCitation,
			Index: ref.index,
			Href:  "#" + ref.anchor,
		})
	}
	appendText(paragraph[last:])

	return fragments
}

// RenderAll 按段落顺序渲染
func (r *Renderer) RenderAll(paragraphs []string) [][]Fragment {
	out := make([][]Fragment, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, r.Render(p))
	}
	return out
}

// AnchorID 来源在页面上的锚点，如 "CoinDesk 1" -> "source-coindesk-1"
func AnchorID(id string) string {
	slug := nonAlnum.ReplaceAllString(normalizeID(id), "-")
	return "source-" + strings.Trim(slug, "-")
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
