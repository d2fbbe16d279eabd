// Package content implements the validation helpers every generated tweet
// and thread block must pass before it reaches the mutation gateway:
// weighted-length limits, banned-phrase filtering, and thread-block shape
// checks.
package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxTweetChars is the maximum weighted length of a single tweet or thread
// block.
const MaxTweetChars = 280

// URLWeight is the weighted character cost of any URL, matching the
// platform's link-shortening allowance regardless of the URL's actual
// length.
const URLWeight = 23

// MaxMediaPerBlock is the maximum number of media attachments per thread
// block.
const MaxMediaPerBlock = 4

var urlPattern = regexp.MustCompile(`https?://\S+`)

// WeightedLen returns the platform-weighted length of text: every URL
// counts as URLWeight regardless of its actual length, everything else
// counts by rune.
func WeightedLen(text string) int {
	matches := urlPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return utf8.RuneCountInString(text)
	}

	length := 0
	last := 0
	for _, m := range matches {
		length += utf8.RuneCountInString(text[last:m[0]])
		length += URLWeight
		last = m[1]
	}
	length += utf8.RuneCountInString(text[last:])
	return length
}

// FitsLimit reports whether text is within MaxTweetChars after weighting.
func FitsLimit(text string) bool {
	return WeightedLen(text) <= MaxTweetChars
}

// ContainsBannedPhrase reports whether text contains any of the configured
// banned phrases, case-insensitively.
func ContainsBannedPhrase(text string, bannedPhrases []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range bannedPhrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return phrase, true
		}
	}
	return "", false
}

// ValidationError is returned by Validate and ValidateThreadBlocks.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func errf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Validate checks a single tweet body against the length limit and banned
// phrases. It does not check media counts -- callers validating a thread
// block use ValidateThreadBlocks instead.
func Validate(text string, bannedPhrases []string) error {
	if strings.TrimSpace(text) == "" {
		return errf("text must not be empty")
	}
	if weighted := WeightedLen(text); weighted > MaxTweetChars {
		return errf("text exceeds %d characters (weighted length: %d)", MaxTweetChars, weighted)
	}
	if phrase, found := ContainsBannedPhrase(text, bannedPhrases); found {
		return errf("text contains banned phrase %q", phrase)
	}
	return nil
}

// ThreadBlock is a single tweet within a thread awaiting validation, prior
// to posting.
type ThreadBlock struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	MediaPaths []string `json:"media_paths,omitempty"`
	Order      int      `json:"order"`
}

// threadBlocksSchemaVersion is the current ThreadBlocksPayload schema
// version; bump it if the stored shape changes in a backward-incompatible
// way.
const threadBlocksSchemaVersion = 1

// ThreadBlocksPayload is the versioned envelope thread blocks are
// serialized in, both for LLM output and for storage in a Thread row.
type ThreadBlocksPayload struct {
	Version int           `json:"version"`
	Blocks  []ThreadBlock `json:"blocks"`
}

// SerializeThreadBlocks wraps blocks in the current-version payload and
// marshals it to JSON.
func SerializeThreadBlocks(blocks []ThreadBlock) (string, error) {
	payload := ThreadBlocksPayload{Version: threadBlocksSchemaVersion, Blocks: blocks}
	out, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("serialize thread blocks: %w", err)
	}
	return string(out), nil
}

// DeserializeThreadBlocks parses a ThreadBlocksPayload out of content,
// returning ok=false if content isn't a recognized payload (e.g. raw LLM
// text that failed to produce valid JSON).
func DeserializeThreadBlocks(content string) (blocks []ThreadBlock, ok bool) {
	var payload ThreadBlocksPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, false
	}
	if payload.Blocks == nil {
		return nil, false
	}
	return payload.Blocks, true
}

// ValidateThreadBlocks checks:
//  1. Non-empty blocks slice
//  2. At least 2 blocks for a thread
//  3. All block IDs are non-empty
//  4. All block IDs are unique
//  5. Order fields form a contiguous 0..N sequence
//  6. Each block's text is non-empty after trim
//  7. Each block's text is within MaxTweetChars after weighting
//  8. Each block has at most MaxMediaPerBlock media entries
//  9. No block contains a banned phrase
func ValidateThreadBlocks(blocks []ThreadBlock, bannedPhrases []string) error {
	if len(blocks) == 0 {
		return errf("thread blocks must not be empty")
	}
	if len(blocks) < 2 {
		return errf("thread must contain at least 2 blocks")
	}

	seenIDs := make(map[string]struct{}, len(blocks))
	for i, b := range blocks {
		if strings.TrimSpace(b.ID) == "" {
			return errf("block at index %d has an empty id", i)
		}
		if _, dup := seenIDs[b.ID]; dup {
			return errf("duplicate block id: %s", b.ID)
		}
		seenIDs[b.ID] = struct{}{}
	}

	orders := make([]int, len(blocks))
	for i, b := range blocks {
		orders[i] = b.Order
	}
	if !isContiguousFromZero(orders) {
		return errf("block order must be a contiguous sequence starting at 0")
	}

	for _, b := range blocks {
		if strings.TrimSpace(b.Text) == "" {
			return errf("block %s has empty text", b.ID)
		}
		if weighted := WeightedLen(b.Text); weighted > MaxTweetChars {
			return errf("block %s: text exceeds %d characters (length: %d)", b.ID, MaxTweetChars, weighted)
		}
		if len(b.MediaPaths) > MaxMediaPerBlock {
			return errf("block %s: too many media attachments (%d, max %d)", b.ID, len(b.MediaPaths), MaxMediaPerBlock)
		}
		if phrase, found := ContainsBannedPhrase(b.Text, bannedPhrases); found {
			return errf("block %s contains banned phrase %q", b.ID, phrase)
		}
	}

	return nil
}

func isContiguousFromZero(orders []int) bool {
	sorted := append([]int(nil), orders...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			return false
		}
	}
	return true
}
