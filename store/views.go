package store

import "github.com/oxdrill/oxdrill-api/models"

// Read accessors. Everything returned is a copy so callers can render or
// iterate without holding the store lock.

func copyDeck(d *models.Deck) models.Deck {
	out := *d
	out.CardIDs = append([]string(nil), d.CardIDs...)
	return out
}

func copyCard(c *models.Card) models.Card {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	return out
}

// Decks returns all decks in display order.
func (s *Store) Decks() []models.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Deck, 0, len(s.data.Decks))
	for _, d := range s.data.Decks {
		out = append(out, copyDeck(d))
	}
	return out
}

// Deck returns one deck by ID.
func (s *Store) Deck(id string) (models.Deck, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.deckByID(id)
	if d == nil {
		return models.Deck{}, false
	}
	return copyDeck(d), true
}

// Card returns one card by ID.
func (s *Store) Card(id string) (models.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.Cards[id]
	if !ok {
		return models.Card{}, false
	}
	return copyCard(c), true
}

// Stat returns the card's tally; a card never answered yields a zero Stat.
func (s *Store) Stat(id string) models.Stat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.data.Stats[id]; ok {
		return *st
	}
	return models.Stat{}
}

// Bookmarked reports whether the card is in the bookmark set.
func (s *Store) Bookmarked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Bookmarks[id]
}

// DeckCounts are the aggregates shown on deck listings. Wrong and Correct
// are cumulative answer totals across the deck's cards; Bookmarked is a
// card count.
type DeckCounts struct {
	Total      int `json:"total"`
	Wrong      int `json:"wrong"`
	Correct    int `json:"correct"`
	Bookmarked int `json:"bookmarked"`
}

// Counts aggregates the deck's stats and bookmarks.
func (s *Store) Counts(deckID string) DeckCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck := s.deckByID(deckID)
	if deck == nil {
		return DeckCounts{}
	}
	c := DeckCounts{Total: len(deck.CardIDs)}
	for _, cid := range deck.CardIDs {
		if st, ok := s.data.Stats[cid]; ok {
			c.Wrong += st.Wrong
			c.Correct += st.Correct
		}
		if s.data.Bookmarks[cid] {
			c.Bookmarked++
		}
	}
	return c
}
