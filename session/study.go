// Package session holds the ephemeral study and variant state machines.
// Sessions are process-local and never persisted; only answered-card stats
// reach the store.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/store"
)

// Mode filters the study queue.
type Mode string

const (
	ModeAll        Mode = "all"
	ModeWrong      Mode = "wrong"
	ModeBookmarked Mode = "bookmarked"
)

// Sentinel errors for the session package.
var (
	ErrEmptyFilter = errors.New("session: no cards match the filter")
	ErrBadMode     = errors.New("session: unknown study mode")
)

// NormalizeMode accepts the current mode names plus the legacy "bookmark"
// spelling older clients send.
func NormalizeMode(raw string) (Mode, error) {
	switch raw {
	case "", "all":
		return ModeAll, nil
	case "wrong":
		return ModeWrong, nil
	case "bookmarked", "bookmark":
		return ModeBookmarked, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadMode, raw)
}

// EmptyFilterMessage is the user-facing toast for an empty queue.
func EmptyFilterMessage(mode Mode) string {
	switch mode {
	case ModeWrong:
		return "no wrong answers yet"
	case ModeBookmarked:
		return "no bookmarked cards yet"
	}
	return "this deck has no cards"
}

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// shuffle is an in-place Fisher–Yates shuffle.
func shuffle(ids []string) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Study is one pass over a deck: a queue shuffled once at construction,
// a cursor, and the answered/choice state of the current card.
type Study struct {
	store       *store.Store
	deckID      string
	mode        Mode
	queue       []string
	index       int
	answered    bool
	choice      models.Answer
	lastCorrect bool
	finished    bool
}

// StartStudy builds a session over the deck's cards filtered by mode.
// An empty result is an ErrEmptyFilter carrying the mode-specific message;
// no session is created in that case.
func StartStudy(st *store.Store, deckID string, mode Mode) (*Study, error) {
	deck, ok := st.Deck(deckID)
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	queue := make([]string, 0, len(deck.CardIDs))
	for _, cid := range deck.CardIDs {
		switch mode {
		case ModeWrong:
			if st.Stat(cid).Wrong > 0 {
				queue = append(queue, cid)
			}
		case ModeBookmarked:
			if st.Bookmarked(cid) {
				queue = append(queue, cid)
			}
		default:
			queue = append(queue, cid)
		}
	}
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFilter, EmptyFilterMessage(mode))
	}
	shuffle(queue)
	return &Study{store: st, deckID: deckID, mode: mode, queue: queue}, nil
}

func (s *Study) DeckID() string { return s.deckID }
func (s *Study) Mode() Mode     { return s.mode }
func (s *Study) Index() int     { return s.index }
func (s *Study) Total() int     { return len(s.queue) }
func (s *Study) Answered() bool { return s.answered }
func (s *Study) Finished() bool { return s.finished }

// Choice returns the current answer choice, "" while unanswered.
func (s *Study) Choice() models.Answer { return s.choice }

// LastCorrect reports whether the current answered card was answered
// correctly; only meaningful while Answered is true.
func (s *Study) LastCorrect() bool { return s.answered && s.lastCorrect }

// Matches reports whether this session belongs to the given deck/mode
// pairing. A route showing a different pairing discards the session and
// rebuilds from StartStudy.
func (s *Study) Matches(deckID string, mode Mode) bool {
	return s.deckID == deckID && s.mode == mode
}

// Current returns the card under the cursor. Card IDs that no longer
// resolve (deleted out-of-band) are skipped forward, which can finish
// the session.
func (s *Study) Current() (models.Card, bool) {
	for !s.finished {
		card, ok := s.store.Card(s.queue[s.index])
		if ok {
			return card, true
		}
		s.index++
		s.answered = false
		s.choice = ""
		if s.index >= len(s.queue) {
			s.finished = true
		}
	}
	return models.Card{}, false
}

// Answer grades the choice against the current card and records the
// result in the durable stats. Ignored when already answered, finished,
// or the choice is not O/X.
func (s *Study) Answer(rawChoice string) (correct bool, applied bool) {
	if s.answered || s.finished {
		return false, false
	}
	choice := models.NormalizeAnswer(rawChoice)
	if choice == "" {
		return false, false
	}
	card, ok := s.Current()
	if !ok {
		return false, false
	}
	correct = choice == card.Answer
	if err := s.store.RecordAnswer(card.ID, correct); err != nil {
		return false, false
	}
	s.answered = true
	s.choice = choice
	s.lastCorrect = correct
	return correct, true
}

// Advance moves to the next card. Only valid once the current card is
// answered; returns whether the session is now finished.
func (s *Study) Advance() bool {
	if !s.answered || s.finished {
		return s.finished
	}
	s.index++
	s.answered = false
	s.choice = ""
	if s.index >= len(s.queue) {
		s.finished = true
	}
	return s.finished
}

// Summary is the end-of-session report. The totals are cumulative
// all-time stats for the queued cards, not a session-only tally: the
// summary frames long-run mastery rather than one pass.
type Summary struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Summarize sums the durable stats of every card ever in the queue.
func (s *Study) Summarize() Summary {
	sum := Summary{Total: len(s.queue)}
	for _, cid := range s.queue {
		st := s.store.Stat(cid)
		sum.Correct += st.Correct
		sum.Wrong += st.Wrong
	}
	return sum
}
