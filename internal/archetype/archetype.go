// Package archetype names the reply/content styles that condition prompt
// composition. Each archetype maps to a short style brief consumed by
// pkg/prompts when rendering a generation prompt.
package archetype

// Name identifies a single archetype.
type Name string

const (
	AgreeAndExpand Name = "agree_and_expand"
	AskQuestion    Name = "ask_question"
	ShareDataPoint Name = "share_data_point"
	ContrarianTake Name = "contrarian_take"
)

// All lists every known archetype, in rotation order.
var All = []Name{AgreeAndExpand, AskQuestion, ShareDataPoint, ContrarianTake}

// Brief is the style guidance rendered into a generation prompt for a
// given archetype.
type Brief struct {
	Name        Name
	Description string
	StyleNotes  string
}

var briefs = map[Name]Brief{
	AgreeAndExpand: {
		Name:        AgreeAndExpand,
		Description: "Agree with the core point and add one concrete detail that extends it.",
		StyleNotes:  "Open with genuine agreement, then contribute a specific fact, number, or example the original post didn't mention. Never just restate their point.",
	},
	AskQuestion: {
		Name:        AskQuestion,
		Description: "Ask a genuine, specific follow-up question.",
		StyleNotes:  "The question should be answerable from the author's own experience or claim, not generic ('what do you think?'). One question only.",
	},
	ShareDataPoint: {
		Name:        ShareDataPoint,
		Description: "Contribute a relevant statistic, benchmark, or factual data point.",
		StyleNotes:  "Lead with the number or fact, then one sentence of context. No hedging language ('I think', 'maybe').",
	},
	ContrarianTake: {
		Name:        ContrarianTake,
		Description: "Offer a respectful but genuinely different perspective.",
		StyleNotes:  "Disagree with a specific claim, not the person. State the counter-argument plainly and back it with one reason.",
	},
}

// Get returns the brief for name, or the zero Brief and false if unknown.
func Get(name Name) (Brief, bool) {
	b, ok := briefs[name]
	return b, ok
}

// Rotate returns the archetype that follows prev in All, wrapping around.
// Passing "" (no previous archetype) returns the first entry.
func Rotate(prev Name) Name {
	if prev == "" {
		return All[0]
	}
	for i, n := range All {
		if n == prev {
			return All[(i+1)%len(All)]
		}
	}
	return All[0]
}
