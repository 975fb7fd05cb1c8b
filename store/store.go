// Package store owns the canonical library (decks, cards, stats, bookmarks)
// and the user settings. Both live in memory and are flushed whole to their
// durable storage slot after every mutation.
package store

import (
	"encoding/json"
	"log"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/utils"
)

// VariantDeckName is the dedicated deck that persisted AI variants go into.
const VariantDeckName = "AI 변형"

// DefaultDeckName is used when a deck is created with an empty name.
const DefaultDeckName = "새 카테고리"

// Store is the single-writer persistent store. The mutex serializes the
// HTTP handlers; there is never more than one process writing the slots.
type Store struct {
	db       *gorm.DB
	mu       sync.Mutex
	data     *models.Library
	settings models.Settings
}

// Open loads the library and settings slots from db. An absent, unparsable,
// or malshaped library blob is replaced by a freshly seeded library; bad
// settings fall back to defaults. Open never fails on corrupt content, only
// on database errors.
func Open(db *gorm.DB) (*Store, error) {
	s := &Store{db: db}

	raw, err := s.readSlot(models.SlotLibrary)
	switch {
	case err == gorm.ErrRecordNotFound:
		s.data = Seed()
	case err != nil:
		return nil, err
	default:
		var lib models.Library
		if jsonErr := json.Unmarshal([]byte(raw), &lib); jsonErr != nil {
			log.Printf("store: library slot corrupt, reseeding: %v", jsonErr)
			s.data = Seed()
		} else {
			fillLibraryDefaults(&lib)
			s.data = &lib
		}
	}

	raw, err = s.readSlot(models.SlotSettings)
	switch {
	case err == gorm.ErrRecordNotFound:
		s.settings = models.DefaultSettings()
	case err != nil:
		return nil, err
	default:
		cfg := models.DefaultSettings()
		if jsonErr := json.Unmarshal([]byte(raw), &cfg); jsonErr != nil {
			log.Printf("store: settings slot corrupt, using defaults: %v", jsonErr)
			cfg = models.DefaultSettings()
		}
		cfg.Normalize()
		s.settings = cfg
	}

	return s, nil
}

func (s *Store) readSlot(key string) (string, error) {
	var slot models.StorageSlot
	if err := s.db.Where("key = ?", key).First(&slot).Error; err != nil {
		return "", err
	}
	return slot.Value, nil
}

func (s *Store) writeSlot(key string, doc any) {
	blob, err := json.Marshal(doc)
	if err != nil {
		log.Printf("store: marshal %s slot: %v", key, err)
		return
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.StorageSlot{Key: key, Value: string(blob)})
	if result.Error != nil {
		log.Printf("store: flush %s slot: %v", key, result.Error)
	}
}

// flush must be called with the mutex held, after every library mutation.
func (s *Store) flush() {
	s.writeSlot(models.SlotLibrary, s.data)
}

func fillLibraryDefaults(lib *models.Library) {
	if lib.Version == 0 {
		lib.Version = 1
	}
	if lib.Decks == nil {
		lib.Decks = []*models.Deck{}
	}
	if lib.Cards == nil {
		lib.Cards = map[string]*models.Card{}
	}
	if lib.Stats == nil {
		lib.Stats = map[string]*models.Stat{}
	}
	if lib.Bookmarks == nil {
		lib.Bookmarks = map[string]bool{}
	}
}

// Seed builds a fresh library with one example deck so the app is never
// empty on first run.
func Seed() *models.Library {
	deckID := utils.NewID("deck")
	examples := []*models.Card{
		{
			ID:          utils.NewID("card"),
			DeckID:      deckID,
			Prompt:      "The man whom I think is honest is my teacher.",
			Answer:      models.AnswerX,
			Explanation: "I think (that) he is honest 구조 → he가 주어이므로 who가 맞습니다.",
			Tags:        []string{"who/whom"},
			CreatedAt:   utils.NowISO(),
		},
		{
			ID:          utils.NewID("card"),
			DeckID:      deckID,
			Prompt:      "The man whom I met yesterday is my teacher.",
			Answer:      models.AnswerO,
			Explanation: "I met him 구조 → him은 목적어라 whom이 가능합니다.",
			Tags:        []string{"who/whom"},
			CreatedAt:   utils.NowISO(),
		},
		{
			ID:          utils.NewID("card"),
			DeckID:      deckID,
			Prompt:      "Only after he left did she realize the truth.",
			Answer:      models.AnswerO,
			Explanation: "Only + 부사구 문두 → 조동사 도치(did she realize)가 필요합니다.",
			Tags:        []string{"inversion"},
			CreatedAt:   utils.NowISO(),
		},
	}
	cards := map[string]*models.Card{}
	ids := make([]string, 0, len(examples))
	for _, c := range examples {
		cards[c.ID] = c
		ids = append(ids, c.ID)
	}
	deck := &models.Deck{
		ID:        deckID,
		Name:      "샘플(삭제가능)",
		CreatedAt: utils.NowISO(),
		CardIDs:   ids,
	}
	return &models.Library{
		Version:   1,
		Decks:     []*models.Deck{deck},
		Cards:     cards,
		Stats:     map[string]*models.Stat{},
		Bookmarks: map[string]bool{},
	}
}

// Reset discards the library and reseeds it. Settings are untouched.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Seed()
	s.flush()
}

func (s *Store) deckByID(id string) *models.Deck {
	for _, d := range s.data.Decks {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Store) deckByName(name string) *models.Deck {
	for _, d := range s.data.Decks {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// CreateDeck creates an empty deck and prepends it to display order.
// An empty name gets the default deck name.
func (s *Store) CreateDeck(name string) models.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.createDeckLocked(name)
}

func (s *Store) createDeckLocked(name string) *models.Deck {
	name = utils.Truncate(name, models.MaxTagLen*2)
	if name == "" {
		name = DefaultDeckName
	}
	deck := &models.Deck{
		ID:        utils.NewID("deck"),
		Name:      name,
		CreatedAt: utils.NowISO(),
		CardIDs:   []string{},
	}
	s.data.Decks = append([]*models.Deck{deck}, s.data.Decks...)
	s.flush()
	return deck
}

// EnsureDeckByName returns the first deck with this name, creating it if
// none exists. Used for the variant deck and import targets.
func (s *Store) EnsureDeckByName(name string) models.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.deckByName(name); d != nil {
		return copyDeck(d)
	}
	return *s.createDeckLocked(name)
}

// DeleteDeck removes the deck and cascades: every member card, its stat,
// and its bookmark entry go with it.
func (s *Store) DeleteDeck(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck := s.deckByID(id)
	if deck == nil {
		return ErrDeckNotFound
	}
	for _, cid := range deck.CardIDs {
		delete(s.data.Cards, cid)
		delete(s.data.Stats, cid)
		delete(s.data.Bookmarks, cid)
	}
	decks := s.data.Decks[:0]
	for _, d := range s.data.Decks {
		if d.ID != id {
			decks = append(decks, d)
		}
	}
	s.data.Decks = decks
	s.flush()
	return nil
}

// CreateCard mints a card into the deck. Strings are trimmed and capped,
// the answer is normalized (defaulting to O on unrecognized input), tags
// default to empty. The new card is prepended to the deck's display order.
func (s *Store) CreateCard(deckID string, draft models.CardDraft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCardLocked(deckID, draft)
}

func (s *Store) createCardLocked(deckID string, draft models.CardDraft) (string, error) {
	deck := s.deckByID(deckID)
	if deck == nil {
		return "", ErrDeckNotFound
	}
	answer := models.NormalizeAnswer(draft.Answer)
	if answer == "" {
		answer = models.AnswerO
	}
	card := &models.Card{
		ID:          utils.NewID("card"),
		DeckID:      deckID,
		Prompt:      utils.Truncate(draft.Prompt, models.MaxPrompt),
		Answer:      answer,
		Explanation: utils.Truncate(draft.Explanation, models.MaxExplanation),
		Tags:        models.CleanTags(draft.Tags),
		CreatedAt:   utils.NowISO(),
	}
	s.data.Cards[card.ID] = card
	deck.CardIDs = append([]string{card.ID}, deck.CardIDs...)
	s.flush()
	return card.ID, nil
}

// CardPatch is a partial card update; nil fields are left alone.
type CardPatch struct {
	Prompt      *string
	Answer      *string
	Explanation *string
	Tags        []string
}

// UpdateCard merges the patch into the card. Deck membership is fixed at
// creation and cannot be patched.
func (s *Store) UpdateCard(id string, patch CardPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.data.Cards[id]
	if !ok {
		return ErrCardNotFound
	}
	if patch.Prompt != nil {
		card.Prompt = utils.Truncate(*patch.Prompt, models.MaxPrompt)
	}
	if patch.Answer != nil {
		if a := models.NormalizeAnswer(*patch.Answer); a != "" {
			card.Answer = a
		}
	}
	if patch.Explanation != nil {
		card.Explanation = utils.Truncate(*patch.Explanation, models.MaxExplanation)
	}
	if patch.Tags != nil {
		card.Tags = models.CleanTags(patch.Tags)
	}
	s.flush()
	return nil
}

// DeleteCard removes the card from its deck's order and deletes its stat
// and bookmark entries, keeping referential integrity in one step.
func (s *Store) DeleteCard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.data.Cards[id]
	if !ok {
		return ErrCardNotFound
	}
	if deck := s.deckByID(card.DeckID); deck != nil {
		ids := deck.CardIDs[:0]
		for _, cid := range deck.CardIDs {
			if cid != id {
				ids = append(ids, cid)
			}
		}
		deck.CardIDs = ids
	}
	delete(s.data.Cards, id)
	delete(s.data.Stats, id)
	delete(s.data.Bookmarks, id)
	s.flush()
	return nil
}

// ToggleBookmark flips the card's bookmark and reports the new state.
// Clearing removes the key entirely; the set never stores false.
func (s *Store) ToggleBookmark(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Cards[id]; !ok {
		return false, ErrCardNotFound
	}
	if s.data.Bookmarks[id] {
		delete(s.data.Bookmarks, id)
		s.flush()
		return false, nil
	}
	s.data.Bookmarks[id] = true
	s.flush()
	return true, nil
}

// RecordAnswer lazily creates the card's stat, increments exactly one
// counter, and stamps lastReviewed. This is the only mutation study
// sessions perform.
func (s *Store) RecordAnswer(id string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Cards[id]; !ok {
		return ErrCardNotFound
	}
	stat, ok := s.data.Stats[id]
	if !ok {
		stat = &models.Stat{}
		s.data.Stats[id] = stat
	}
	if correct {
		stat.Correct++
	} else {
		stat.Wrong++
	}
	stat.LastReviewed = utils.NowISO()
	s.flush()
	return nil
}

// Settings returns the current settings.
func (s *Store) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings normalizes and persists new settings.
func (s *Store) UpdateSettings(cfg models.Settings) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.Normalize()
	s.settings = cfg
	s.writeSlot(models.SlotSettings, s.settings)
	return s.settings
}
