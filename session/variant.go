package session

import (
	"errors"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/utils"
)

// VariantTag marks every model-generated card.
const VariantTag = "AI변형"

// ErrNoVariants means generation returned nothing usable after filtering.
var ErrNoVariants = errors.New("session: no usable variants were generated")

// ParentContext is the exact study position captured when a variant
// excursion is spawned; control returns here when it ends.
type ParentContext struct {
	DeckID string `json:"deckId"`
	Mode   Mode   `json:"mode"`
	Index  int    `json:"index"`
}

// VariantCard is a generated question. It has no deck ownership unless
// the caller opted into persisting it.
type VariantCard struct {
	ID          string        `json:"id"`
	Prompt      string        `json:"prompt"`
	Answer      models.Answer `json:"answer"`
	Explanation string        `json:"explanation"`
	Tags        []string      `json:"tags"`
}

// Variant is the sub-session spawned from a missed card. Its scoring is
// in-memory only; durable stats are never touched.
type Variant struct {
	source      ParentContext
	queue       []VariantCard
	index       int
	answered    bool
	choice      models.Answer
	lastCorrect bool
	finished    bool
	correct     int
	wrong       int
}

// BuildVariantCards filters drafts to those with a non-empty prompt,
// applies the variant length caps, tags each with the variant marker plus
// the source card's own tags, and caps the result at n.
func BuildVariantCards(drafts []models.VariantDraft, sourceTags []string, n int) []VariantCard {
	n = utils.Clamp(n, models.MinVariants, models.MaxVariants)
	tags := append([]string{VariantTag}, sourceTags...)
	out := make([]VariantCard, 0, n)
	for _, d := range drafts {
		prompt := utils.Truncate(d.Prompt, models.MaxVariantPrompt)
		if prompt == "" {
			continue
		}
		out = append(out, VariantCard{
			ID:          utils.NewID("v"),
			Prompt:      prompt,
			Answer:      models.CoerceAnswer(d.Answer),
			Explanation: utils.Truncate(d.Explanation, models.MaxVariantExplanation),
			Tags:        append([]string(nil), tags...),
		})
		if len(out) == n {
			break
		}
	}
	return out
}

// StartVariant builds the sub-session over an already-filtered queue.
func StartVariant(source ParentContext, queue []VariantCard) (*Variant, error) {
	if len(queue) == 0 {
		return nil, ErrNoVariants
	}
	return &Variant{source: source, queue: queue}, nil
}

func (v *Variant) Index() int            { return v.index }
func (v *Variant) Total() int            { return len(v.queue) }
func (v *Variant) Answered() bool        { return v.answered }
func (v *Variant) Finished() bool        { return v.finished }
func (v *Variant) Choice() models.Answer { return v.choice }
func (v *Variant) LastCorrect() bool     { return v.answered && v.lastCorrect }

// Counts returns the in-memory score.
func (v *Variant) Counts() (correct, wrong int) { return v.correct, v.wrong }

// Source returns the parent study context captured at spawn time.
func (v *Variant) Source() ParentContext { return v.source }

// Current returns the variant card under the cursor.
func (v *Variant) Current() (VariantCard, bool) {
	if v.finished {
		return VariantCard{}, false
	}
	return v.queue[v.index], true
}

// Answer grades the choice against the current variant. Counts are kept
// in memory only; variants are drills, not canon.
func (v *Variant) Answer(rawChoice string) (correct bool, applied bool) {
	if v.answered || v.finished {
		return false, false
	}
	choice := models.NormalizeAnswer(rawChoice)
	if choice == "" {
		return false, false
	}
	card := v.queue[v.index]
	correct = choice == card.Answer
	if correct {
		v.correct++
	} else {
		v.wrong++
	}
	v.answered = true
	v.choice = choice
	v.lastCorrect = correct
	return correct, true
}

// Advance moves to the next variant; returns whether the sub-session is
// now finished.
func (v *Variant) Advance() bool {
	if !v.answered || v.finished {
		return v.finished
	}
	v.index++
	v.answered = false
	v.choice = ""
	if v.index >= len(v.queue) {
		v.finished = true
	}
	return v.finished
}
