package importer

import (
	"encoding/json"
	"reflect"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.StorageSlot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s, err := store.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestExportLibraryDenormalizesDeckNames(t *testing.T) {
	s := newTestStore(t)
	deck := s.CreateDeck("Relatives")
	s.CreateCard(deck.ID, models.CardDraft{Prompt: "p1", Answer: "X", Tags: []string{"who/whom"}})

	doc := ExportLibrary(s)
	if doc.Version != 1 {
		t.Errorf("version = %d, want 1", doc.Version)
	}
	// Seeded deck + the new one.
	if len(doc.Decks) != 2 {
		t.Fatalf("decks = %d, want 2", len(doc.Decks))
	}
	found := false
	for _, c := range doc.Cards {
		if c.Prompt == "p1" {
			found = true
			if c.Deck != "Relatives" {
				t.Errorf("card deck = %q, want deck name", c.Deck)
			}
		}
	}
	if !found {
		t.Error("exported cards should include the created card")
	}
}

func TestDeckExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	deck := s.CreateDeck("RoundTrip")
	want := []models.CardDraft{
		{Prompt: "Only after he left did she realize the truth.", Answer: "O", Explanation: "inversion", Tags: []string{"inversion"}},
		{Prompt: "The man whom I think is honest is my teacher.", Answer: "X", Explanation: "who vs whom", Tags: []string{"who/whom", "relative"}},
	}
	// Creation prepends, so insert in reverse to keep display order.
	for i := len(want) - 1; i >= 0; i-- {
		if _, err := s.CreateCard(deck.ID, want[i]); err != nil {
			t.Fatalf("create card: %v", err)
		}
	}

	exported, err := ExportDeck(s, deck.ID)
	if err != nil {
		t.Fatalf("export deck: %v", err)
	}
	blob, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	drafts, err := ParseExternalCards(blob)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if len(drafts) != len(want) {
		t.Fatalf("drafts = %d, want %d", len(drafts), len(want))
	}
	for i := range want {
		if drafts[i].Prompt != want[i].Prompt ||
			drafts[i].Answer != want[i].Answer ||
			drafts[i].Explanation != want[i].Explanation ||
			!reflect.DeepEqual(drafts[i].Tags, want[i].Tags) {
			t.Errorf("draft[%d] = %+v, want %+v", i, drafts[i], want[i])
		}
	}
}

func TestExportDeckUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, err := ExportDeck(s, "deck_missing"); err != store.ErrDeckNotFound {
		t.Fatalf("err = %v, want ErrDeckNotFound", err)
	}
}
