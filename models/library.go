package models

import "strings"

// Length limits applied when card content enters the system from any
// external source. User/import content gets the large caps; model-generated
// variants get the small ones.
const (
	MaxPrompt             = 2000
	MaxExplanation        = 2500
	MaxVariantPrompt      = 600
	MaxVariantExplanation = 800
	MaxTags               = 8
	MaxTagLen             = 40

	MinVariants = 1
	MaxVariants = 8
)

// Answer is a canonical O/X answer.
type Answer string

const (
	AnswerO Answer = "O"
	AnswerX Answer = "X"
)

// NormalizeAnswer maps free-form input to a canonical answer.
// Accepts "O", "X" (any case) and the historical "0" typo for "O".
// Anything else is unresolvable and returns "".
func NormalizeAnswer(raw string) Answer {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch v {
	case "O", "X":
		return Answer(v)
	case "0":
		return AnswerO
	}
	return ""
}

// CoerceAnswer maps anything that is not exactly X to O. This is the
// lenient form used for model output, where an answer is always expected.
func CoerceAnswer(raw string) Answer {
	if strings.ToUpper(strings.TrimSpace(raw)) == "X" {
		return AnswerX
	}
	return AnswerO
}

// Library is the whole persisted aggregate: decks in display order plus
// flat card/stat/bookmark maps keyed by card ID.
type Library struct {
	Version   int              `json:"version"`
	Decks     []*Deck          `json:"decks"`
	Cards     map[string]*Card `json:"cards"`
	Stats     map[string]*Stat `json:"stats"`
	Bookmarks map[string]bool  `json:"bookmarks"`
}

// Deck is a named category of cards. CardIDs is display order only
// (newest first); study order is shuffled per session.
type Deck struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedAt string   `json:"createdAt"`
	CardIDs   []string `json:"cardIds"`
}

// Card is a single O/X grammar question. A card belongs to exactly one
// deck for its lifetime.
type Card struct {
	ID          string   `json:"id"`
	DeckID      string   `json:"deckId"`
	Prompt      string   `json:"prompt"`
	Answer      Answer   `json:"answer"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
}

// Stat is the running tally for one card, created lazily on first answer.
type Stat struct {
	Correct      int    `json:"correct"`
	Wrong        int    `json:"wrong"`
	LastReviewed string `json:"lastReviewed"`
}

// CardDraft is card content before it is minted into the library
// (import parsing, card creation requests).
type CardDraft struct {
	Prompt      string   `json:"prompt"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Tags        []string `json:"tags"`
}

// VariantDraft is one model-generated variant question.
type VariantDraft struct {
	Prompt      string `json:"prompt"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// CleanTags trims each tag, drops empties, and applies the tag caps.
func CleanTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if r := []rune(t); len(r) > MaxTagLen {
			t = string(r[:MaxTagLen])
		}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}
