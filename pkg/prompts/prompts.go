// Package prompts composes generation prompts from archetype briefs and
// situational context, rendering them through a text/template-based
// composer before handing the result to an LLM provider.
package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/aramirez087/tuitbot/internal/archetype"
)

const replyTemplateSource = `You are composing a single reply tweet for a business account.

Style: {{.Archetype.Description}}
Guidance: {{.Archetype.StyleNotes}}

{{if .IndustryTopics}}Relevant industry topics: {{join .IndustryTopics ", "}}{{end}}
{{if .ProductKeywords}}Product focus: {{join .ProductKeywords ", "}}{{end}}

Original tweet from @{{.AuthorUsername}}:
"""
{{.TweetText}}
"""

Write one reply. Requirements:
- Under 280 characters.
- No hashtags unless the original tweet uses them.
- No generic engagement bait ("Great point!", "So true!").
- Plain text only, no markdown.
`

const contentTemplateSource = `You are composing a single standalone tweet on the topic: {{.Topic}}.

{{if .IndustryTopics}}Relevant industry topics: {{join .IndustryTopics ", "}}{{end}}

Requirements:
- Under 280 characters.
- One concrete, specific claim or insight -- not a generic platitude.
- Plain text only, no markdown, no hashtags.
`

const threadTemplateSource = `You are composing an educational Twitter thread on the topic: {{.Topic}}, with {{.BlockCount}} tweets.

{{if .IndustryTopics}}Relevant industry topics: {{join .IndustryTopics ", "}}{{end}}

Requirements:
- Exactly {{.BlockCount}} tweets, each under 280 characters.
- Each tweet builds on the last; the first hooks the reader, the last summarizes or calls to action.
- Return ONLY a JSON object of the shape {"version":1,"blocks":[{"id":"<uuid>","text":"...","order":0}, ...]}, blocks ordered 0..{{.BlockCount}} with no gaps, no surrounding prose.
`

var funcMap = template.FuncMap{
	"join": func(items []string, sep string) string {
		out := ""
		for i, item := range items {
			if i > 0 {
				out += sep
			}
			out += item
		}
		return out
	},
}

var (
	replyTemplate   = template.Must(template.New("reply").Funcs(funcMap).Parse(replyTemplateSource))
	contentTemplate = template.Must(template.New("content").Funcs(funcMap).Parse(contentTemplateSource))
	threadTemplate  = template.Must(template.New("thread").Funcs(funcMap).Parse(threadTemplateSource))
)

// ReplyParams supplies the context a reply prompt is rendered from.
type ReplyParams struct {
	Archetype       archetype.Brief
	AuthorUsername  string
	TweetText       string
	IndustryTopics  []string
	ProductKeywords []string
}

// ComposeReply renders the reply-generation prompt for the given archetype
// and situational context.
func ComposeReply(p ReplyParams) (string, error) {
	var buf bytes.Buffer
	if err := replyTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("compose reply prompt: %w", err)
	}
	return buf.String(), nil
}

// ContentParams supplies the context a standalone-tweet prompt is
// rendered from.
type ContentParams struct {
	Topic          string
	IndustryTopics []string
}

// ComposeContent renders the content-loop generation prompt.
func ComposeContent(p ContentParams) (string, error) {
	var buf bytes.Buffer
	if err := contentTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("compose content prompt: %w", err)
	}
	return buf.String(), nil
}

// ThreadParams supplies the context a thread-generation prompt is
// rendered from.
type ThreadParams struct {
	Topic          string
	BlockCount     int
	IndustryTopics []string
}

// ComposeThread renders the thread-loop generation prompt.
func ComposeThread(p ThreadParams) (string, error) {
	var buf bytes.Buffer
	if err := threadTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("compose thread prompt: %w", err)
	}
	return buf.String(), nil
}
