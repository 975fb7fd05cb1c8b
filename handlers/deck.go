package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/store"
)

type deckView struct {
	models.Deck
	Counts store.DeckCounts `json:"counts"`
}

// GetLibrary returns every deck with its aggregate counts, in display
// order. The shell re-reads this after each mutation.
func (app *App) GetLibrary(w http.ResponseWriter, r *http.Request) {
	decks := app.Store.Decks()
	views := make([]deckView, 0, len(decks))
	for _, d := range decks {
		views = append(views, deckView{Deck: d, Counts: app.Store.Counts(d.ID)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": views})
}

func (app *App) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var reqData struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deck := app.Store.CreateDeck(reqData.Name)
	writeJSON(w, http.StatusCreated, deck)
}

type cardView struct {
	models.Card
	Stat       models.Stat `json:"stat"`
	Bookmarked bool        `json:"bookmarked"`
}

// GetDeckByID returns the deck with its cards, stats, and bookmark flags.
func (app *App) GetDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	deck, ok := app.Store.Deck(deckID)
	if !ok {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	cards := make([]cardView, 0, len(deck.CardIDs))
	for _, cid := range deck.CardIDs {
		c, ok := app.Store.Card(cid)
		if !ok {
			continue
		}
		cards = append(cards, cardView{
			Card:       c,
			Stat:       app.Store.Stat(cid),
			Bookmarked: app.Store.Bookmarked(cid),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deck":   deck,
		"counts": app.Store.Counts(deckID),
		"cards":  cards,
	})
}

// DeleteDeckByID deletes the deck and everything it owns.
func (app *App) DeleteDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	if err := app.Store.DeleteDeck(deckID); err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}
