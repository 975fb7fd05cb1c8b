package store

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oxdrill/oxdrill-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.StorageSlot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(setupTestDB(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestOpenSeedsWhenEmpty(t *testing.T) {
	s := setupTestStore(t)
	decks := s.Decks()
	if len(decks) != 1 {
		t.Fatalf("decks = %d, want 1 seeded deck", len(decks))
	}
	if decks[0].Name != "샘플(삭제가능)" {
		t.Errorf("seed deck name = %q", decks[0].Name)
	}
	if len(decks[0].CardIDs) != 3 {
		t.Errorf("seed cards = %d, want 3", len(decks[0].CardIDs))
	}
	for _, cid := range decks[0].CardIDs {
		if _, ok := s.Card(cid); !ok {
			t.Errorf("seed card %s missing from cards map", cid)
		}
	}
}

func TestOpenCorruptLibraryReseeds(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&models.StorageSlot{Key: models.SlotLibrary, Value: "{not json"}).Error; err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if len(s.Decks()) != 1 {
		t.Fatalf("corrupt blob should fall back to the seeded library")
	}
}

func TestOpenDefaultsMissingFields(t *testing.T) {
	db := setupTestDB(t)
	// Valid object, but only decks/cards present.
	blob := `{"decks":[{"id":"deck_a","name":"A","createdAt":"2024-01-01T00:00:00Z","cardIds":[]}],"cards":{}}`
	if err := db.Create(&models.StorageSlot{Key: models.SlotLibrary, Value: blob}).Error; err != nil {
		t.Fatalf("write slot: %v", err)
	}
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	decks := s.Decks()
	if len(decks) != 1 || decks[0].Name != "A" {
		t.Fatalf("existing decks should survive defaulting, got %+v", decks)
	}
	// Stats/bookmarks were absent; operations relying on them must work.
	if s.Bookmarked("nope") {
		t.Error("bookmark set should default empty")
	}
	if st := s.Stat("nope"); st.Correct != 0 || st.Wrong != 0 {
		t.Errorf("stat should default zero, got %+v", st)
	}
}

func TestCreateCardNormalizes(t *testing.T) {
	s := setupTestStore(t)
	deck := s.CreateDeck("Grammar")
	id, err := s.CreateCard(deck.ID, models.CardDraft{
		Prompt: "  He go to school.  ",
		Answer: "banana",
		Tags:   []string{" tense ", "", "sv-agreement"},
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	card, ok := s.Card(id)
	if !ok {
		t.Fatal("card not found after create")
	}
	if card.Prompt != "He go to school." {
		t.Errorf("prompt not trimmed: %q", card.Prompt)
	}
	if card.Answer != models.AnswerO {
		t.Errorf("unrecognized answer should default to O, got %q", card.Answer)
	}
	if len(card.Tags) != 2 || card.Tags[0] != "tense" {
		t.Errorf("tags not cleaned: %v", card.Tags)
	}
	if card.DeckID != deck.ID {
		t.Errorf("deck back-reference = %q, want %q", card.DeckID, deck.ID)
	}
	got, _ := s.Deck(deck.ID)
	if len(got.CardIDs) != 1 || got.CardIDs[0] != id {
		t.Errorf("card should be prepended to deck order: %v", got.CardIDs)
	}
}

func TestCreateCardUnknownDeck(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.CreateCard("deck_missing", models.CardDraft{Prompt: "x", Answer: "O"}); err != ErrDeckNotFound {
		t.Fatalf("err = %v, want ErrDeckNotFound", err)
	}
}

func TestDeleteDeckCascades(t *testing.T) {
	s := setupTestStore(t)
	deck := s.CreateDeck("Doomed")
	id1, _ := s.CreateCard(deck.ID, models.CardDraft{Prompt: "one", Answer: "O"})
	id2, _ := s.CreateCard(deck.ID, models.CardDraft{Prompt: "two", Answer: "X"})
	if err := s.RecordAnswer(id1, false); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if _, err := s.ToggleBookmark(id2); err != nil {
		t.Fatalf("bookmark: %v", err)
	}

	if err := s.DeleteDeck(deck.ID); err != nil {
		t.Fatalf("delete deck: %v", err)
	}
	for _, id := range []string{id1, id2} {
		if _, ok := s.Card(id); ok {
			t.Errorf("card %s should be gone", id)
		}
		if st := s.Stat(id); st.Correct != 0 || st.Wrong != 0 {
			t.Errorf("stat for %s should be deleted", id)
		}
		if s.Bookmarked(id) {
			t.Errorf("bookmark for %s should be deleted", id)
		}
	}
	if _, ok := s.Deck(deck.ID); ok {
		t.Error("deck should be gone")
	}
}

func TestDeleteCardKeepsIntegrity(t *testing.T) {
	s := setupTestStore(t)
	deck := s.CreateDeck("D")
	id, _ := s.CreateCard(deck.ID, models.CardDraft{Prompt: "p", Answer: "X"})
	s.RecordAnswer(id, true)
	s.ToggleBookmark(id)

	if err := s.DeleteCard(id); err != nil {
		t.Fatalf("delete card: %v", err)
	}
	got, _ := s.Deck(deck.ID)
	if len(got.CardIDs) != 0 {
		t.Errorf("deck order should not reference deleted card: %v", got.CardIDs)
	}
	if st := s.Stat(id); st.Correct != 0 {
		t.Error("stat should be deleted with the card")
	}
	if s.Bookmarked(id) {
		t.Error("bookmark should be deleted with the card")
	}
}

func TestToggleBookmark(t *testing.T) {
	s := setupTestStore(t)
	deck := s.CreateDeck("D")
	id, _ := s.CreateCard(deck.ID, models.CardDraft{Prompt: "p", Answer: "O"})

	on, err := s.ToggleBookmark(id)
	if err != nil || !on {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", on, err)
	}
	if s.Counts(deck.ID).Bookmarked != 1 {
		t.Error("bookmark count should be 1")
	}
	off, _ := s.ToggleBookmark(id)
	if off {
		t.Fatal("second toggle should clear the bookmark")
	}
	if s.Counts(deck.ID).Bookmarked != 0 {
		t.Error("bookmark count should drop back to 0")
	}
}

func TestRecordAnswerAccounting(t *testing.T) {
	s := setupTestStore(t)
	deck := s.CreateDeck("D")
	id, _ := s.CreateCard(deck.ID, models.CardDraft{Prompt: "p", Answer: "O"})

	calls := []bool{true, false, true, true, false}
	for _, correct := range calls {
		if err := s.RecordAnswer(id, correct); err != nil {
			t.Fatalf("record answer: %v", err)
		}
	}
	st := s.Stat(id)
	if st.Correct != 3 || st.Wrong != 2 {
		t.Errorf("stat = %+v, want correct=3 wrong=2", st)
	}
	if st.Correct+st.Wrong != len(calls) {
		t.Errorf("correct+wrong = %d, want %d answer calls", st.Correct+st.Wrong, len(calls))
	}
	if st.LastReviewed == "" {
		t.Error("lastReviewed should be stamped")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	s1, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	deck := s1.CreateDeck("Persisted")
	id, _ := s1.CreateCard(deck.ID, models.CardDraft{Prompt: "survives restart", Answer: "X", Tags: []string{"t"}})
	s1.RecordAnswer(id, false)
	s1.ToggleBookmark(id)

	// A second store over the same database sees the flushed state.
	s2, err := Open(db)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	card, ok := s2.Card(id)
	if !ok {
		t.Fatal("card should survive reopen")
	}
	if card.Prompt != "survives restart" || card.Answer != models.AnswerX {
		t.Errorf("card = %+v", card)
	}
	if s2.Stat(id).Wrong != 1 {
		t.Error("stat should survive reopen")
	}
	if !s2.Bookmarked(id) {
		t.Error("bookmark should survive reopen")
	}
}

func TestSettingsDefaulting(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&models.StorageSlot{Key: models.SlotSettings, Value: `{"aiStoreVariants":true}`}).Error; err != nil {
		t.Fatalf("write settings slot: %v", err)
	}
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cfg := s.Settings()
	if cfg.AICount != 3 {
		t.Errorf("missing aiCount should default to 3, got %d", cfg.AICount)
	}
	if !cfg.AIStoreVariants {
		t.Error("present field should be kept")
	}
	if cfg.AILanguage != "ko" {
		t.Errorf("missing language should default to ko, got %q", cfg.AILanguage)
	}
}

func TestUpdateSettingsClamps(t *testing.T) {
	s := setupTestStore(t)
	got := s.UpdateSettings(models.Settings{AICount: 20, AILanguage: "en"})
	if got.AICount != 8 {
		t.Errorf("aiCount 20 should clamp to 8, got %d", got.AICount)
	}
	if got.AILanguage != "en" {
		t.Errorf("language = %q, want en", got.AILanguage)
	}
	got = s.UpdateSettings(models.Settings{AICount: -5})
	if got.AICount != 1 {
		t.Errorf("negative aiCount should clamp to 1, got %d", got.AICount)
	}
}

func TestResetKeepsSettings(t *testing.T) {
	s := setupTestStore(t)
	s.UpdateSettings(models.Settings{AICount: 5, AIStoreVariants: true})
	s.CreateDeck("Extra")

	s.Reset()
	if len(s.Decks()) != 1 {
		t.Error("reset should leave only the seeded deck")
	}
	if cfg := s.Settings(); cfg.AICount != 5 || !cfg.AIStoreVariants {
		t.Errorf("reset should not touch settings, got %+v", cfg)
	}
}

func TestEnsureDeckByName(t *testing.T) {
	s := setupTestStore(t)
	a := s.EnsureDeckByName(VariantDeckName)
	b := s.EnsureDeckByName(VariantDeckName)
	if a.ID != b.ID {
		t.Errorf("EnsureDeckByName should reuse the deck: %q vs %q", a.ID, b.ID)
	}
}
