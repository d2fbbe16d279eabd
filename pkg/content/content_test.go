package content

import "testing"

func makeBlock(id, text string, order int) ThreadBlock {
	return ThreadBlock{ID: id, Text: text, Order: order}
}

func makeBlockWithMedia(id, text string, order int, media []string) ThreadBlock {
	return ThreadBlock{ID: id, Text: text, MediaPaths: media, Order: order}
}

func TestValidateThreadBlocks_ValidTwoBlockThread(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "First tweet", 0), makeBlock("b", "Second tweet", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateThreadBlocks_EmptyRejected(t *testing.T) {
	if err := ValidateThreadBlocks(nil, nil); err == nil {
		t.Fatal("expected error for empty blocks")
	}
}

func TestValidateThreadBlocks_SingleBlockRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "Only tweet", 0)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for single block")
	}
}

func TestValidateThreadBlocks_DuplicateIDsRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("same", "First", 0), makeBlock("same", "Second", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for duplicate ids")
	}
}

func TestValidateThreadBlocks_NonContiguousOrderRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "First", 0), makeBlock("b", "Second", 2)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for non-contiguous order")
	}
}

func TestValidateThreadBlocks_OrderNotStartingAtZeroRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "First", 1), makeBlock("b", "Second", 2)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for order not starting at zero")
	}
}

func TestValidateThreadBlocks_EmptyTextRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "  ", 0), makeBlock("b", "Second", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestValidateThreadBlocks_TextOverLimitRejected(t *testing.T) {
	long := make([]byte, 281)
	for i := range long {
		long[i] = 'a'
	}
	blocks := []ThreadBlock{makeBlock("a", string(long), 0), makeBlock("b", "Short", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for over-limit text")
	}
}

func TestValidateThreadBlocks_TooManyMediaRejected(t *testing.T) {
	blocks := []ThreadBlock{
		makeBlockWithMedia("a", "Text", 0, []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"}),
		makeBlock("b", "Second", 1),
	}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for too many media")
	}
}

func TestValidateThreadBlocks_FourMediaAccepted(t *testing.T) {
	blocks := []ThreadBlock{
		makeBlockWithMedia("a", "Text", 0, []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"}),
		makeBlock("b", "Second", 1),
	}
	if err := ValidateThreadBlocks(blocks, nil); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateThreadBlocks_EmptyBlockIDRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("", "First", 0), makeBlock("b", "Second", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error for empty block id")
	}
}

func TestValidateThreadBlocks_URLWeightedLengthRespected(t *testing.T) {
	padding := make([]byte, 260)
	for i := range padding {
		padding[i] = 'a'
	}
	text := string(padding) + " https://example.com"
	blocks := []ThreadBlock{makeBlock("a", text, 0), makeBlock("b", "Short", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err == nil {
		t.Fatal("expected error: 260 + 23 weighted chars exceeds 280")
	}
}

func TestValidateThreadBlocks_URLWithinLimitAccepted(t *testing.T) {
	padding := make([]byte, 250)
	for i := range padding {
		padding[i] = 'a'
	}
	long := make([]byte, 76)
	for i := range long {
		long[i] = 'x'
	}
	text := string(padding) + " https://example.com/" + string(long)
	blocks := []ThreadBlock{makeBlock("a", text, 0), makeBlock("b", "Short", 1)}
	if err := ValidateThreadBlocks(blocks, nil); err != nil {
		t.Fatalf("expected valid (250 + 23 = 273 under 280), got %v", err)
	}
}

func TestValidateThreadBlocks_OutOfOrderButContiguousAccepted(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "Second but order 1", 1), makeBlock("b", "First but order 0", 0)}
	if err := ValidateThreadBlocks(blocks, nil); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateThreadBlocks_BannedPhraseRejected(t *testing.T) {
	blocks := []ThreadBlock{makeBlock("a", "check out our guaranteed returns", 0), makeBlock("b", "Second", 1)}
	if err := ValidateThreadBlocks(blocks, []string{"guaranteed returns"}); err == nil {
		t.Fatal("expected error for banned phrase")
	}
}

func TestWeightedLen_PlainText(t *testing.T) {
	if got := WeightedLen("hello world"); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}

func TestWeightedLen_URLCountsAsTwentyThree(t *testing.T) {
	text := "see https://example.com/a/very/long/path/that/would/otherwise/overflow"
	got := WeightedLen(text)
	want := len("see ") + URLWeight
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestValidate_Single(t *testing.T) {
	if err := Validate("a perfectly normal tweet", nil); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := Validate("   ", nil); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestContainsBannedPhrase_CaseInsensitive(t *testing.T) {
	phrase, found := ContainsBannedPhrase("This is a GUARANTEED win", []string{"guaranteed"})
	if !found || phrase != "guaranteed" {
		t.Fatalf("expected match, got %q %v", phrase, found)
	}
}

func TestContainsBannedPhrase_NoMatch(t *testing.T) {
	_, found := ContainsBannedPhrase("totally fine text", []string{"banned"})
	if found {
		t.Fatal("expected no match")
	}
}
