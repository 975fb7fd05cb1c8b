package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/store"
)

func (app *App) CreateCard(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")

	var draft models.CardDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if draft.Prompt == "" {
		http.Error(w, "Prompt is required", http.StatusBadRequest)
		return
	}

	cardID, err := app.Store.CreateCard(deckID, draft)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	card, _ := app.Store.Card(cardID)
	writeJSON(w, http.StatusCreated, card)
}

func (app *App) UpdateCardByID(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")

	var reqData struct {
		Prompt      *string  `json:"prompt"`
		Answer      *string  `json:"answer"`
		Explanation *string  `json:"explanation"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	patch := store.CardPatch{
		Prompt:      reqData.Prompt,
		Answer:      reqData.Answer,
		Explanation: reqData.Explanation,
		Tags:        reqData.Tags,
	}
	if err := app.Store.UpdateCard(cardID, patch); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			http.Error(w, "Card not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	card, _ := app.Store.Card(cardID)
	writeJSON(w, http.StatusOK, card)
}

func (app *App) DeleteCardByID(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")
	if err := app.Store.DeleteCard(cardID); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			http.Error(w, "Card not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}

// ToggleBookmark flips the card's bookmark and returns the new state.
func (app *App) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("cardID")
	bookmarked, err := app.Store.ToggleBookmark(cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			http.Error(w, "Card not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}
