package prompts

import (
	"strings"
	"testing"

	"github.com/aramirez087/tuitbot/internal/archetype"
)

func TestComposeReply_IncludesArchetypeGuidance(t *testing.T) {
	brief, ok := archetype.Get(archetype.AskQuestion)
	if !ok {
		t.Fatal("expected ask_question archetype to be known")
	}
	prompt, err := ComposeReply(ReplyParams{
		Archetype:      brief,
		AuthorUsername: "someone",
		TweetText:      "our new product launch is going great",
		IndustryTopics: []string{"saas", "devtools"},
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(prompt, brief.StyleNotes) {
		t.Fatal("expected prompt to include the archetype's style notes")
	}
	if !strings.Contains(prompt, "@someone") {
		t.Fatal("expected prompt to address the author")
	}
	if !strings.Contains(prompt, "saas, devtools") {
		t.Fatal("expected joined industry topics")
	}
}

func TestComposeContent_RendersTopic(t *testing.T) {
	prompt, err := ComposeContent(ContentParams{Topic: "observability"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(prompt, "observability") {
		t.Fatal("expected prompt to mention the topic")
	}
}

func TestComposeThread_RendersBlockCount(t *testing.T) {
	prompt, err := ComposeThread(ThreadParams{Topic: "distributed tracing", BlockCount: 5})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(prompt, "5 tweets") {
		t.Fatalf("expected prompt to mention block count, got: %s", prompt)
	}
}

func TestComposeReply_OmitsEmptyOptionalSections(t *testing.T) {
	brief, _ := archetype.Get(archetype.ShareDataPoint)
	prompt, err := ComposeReply(ReplyParams{Archetype: brief, AuthorUsername: "x", TweetText: "hi"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if strings.Contains(prompt, "Relevant industry topics:") {
		t.Fatal("expected industry topics section to be omitted when empty")
	}
}
