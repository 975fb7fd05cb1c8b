package importer

import (
	"regexp"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/store"
)

// ExportLibrary flattens the whole library into the portable backup shape.
// Cards carry their deck's name instead of its ID: IDs are re-minted on
// reimport, so they would be dead weight in a backup.
func ExportLibrary(s *store.Store) models.ExportDocument {
	decks := s.Decks()
	doc := models.ExportDocument{
		Version: 1,
		Decks:   make([]models.ExportDeckEntry, 0, len(decks)),
		Cards:   []models.ExportCard{},
	}
	for _, d := range decks {
		doc.Decks = append(doc.Decks, models.ExportDeckEntry{
			ID:        d.ID,
			Name:      d.Name,
			CreatedAt: d.CreatedAt,
		})
		for _, cid := range d.CardIDs {
			c, ok := s.Card(cid)
			if !ok {
				continue
			}
			doc.Cards = append(doc.Cards, models.ExportCard{
				Deck:        d.Name,
				Prompt:      c.Prompt,
				Answer:      c.Answer,
				Explanation: c.Explanation,
				Tags:        c.Tags,
				CreatedAt:   c.CreatedAt,
			})
		}
	}
	return doc
}

// ExportDeck is the minimal ID-free per-deck export.
func ExportDeck(s *store.Store, deckID string) ([]models.DeckExportCard, error) {
	d, ok := s.Deck(deckID)
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	out := make([]models.DeckExportCard, 0, len(d.CardIDs))
	for _, cid := range d.CardIDs {
		c, ok := s.Card(cid)
		if !ok {
			continue
		}
		out = append(out, models.DeckExportCard{
			Prompt:      c.Prompt,
			Answer:      c.Answer,
			Explanation: c.Explanation,
			Tags:        c.Tags,
		})
	}
	return out, nil
}

var unsafeFilename = regexp.MustCompile(`[\\/:*?"<>|]+`)

// SanitizeFilename makes a deck name safe to use as an export file name.
func SanitizeFilename(name string) string {
	if name == "" {
		name = "deck"
	}
	name = unsafeFilename.ReplaceAllString(name, "_")
	if r := []rune(name); len(r) > 60 {
		name = string(r[:60])
	}
	return name
}
