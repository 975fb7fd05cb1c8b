package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/oxdrill/oxdrill-api/importer"
	"github.com/oxdrill/oxdrill-api/store"
)

// ImportIntoDeck parses the request body as external card JSON and inserts
// every surviving draft as a brand-new card in the deck. Import is
// strictly additive: nothing existing is overwritten or deduplicated.
func (app *App) ImportIntoDeck(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	if _, ok := app.Store.Deck(deckID); !ok {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Could not read request body", http.StatusBadRequest)
		return
	}
	drafts, err := importer.ParseExternalCards(raw)
	if err != nil {
		if errors.Is(err, importer.ErrMalformedImport) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	imported := 0
	for _, d := range drafts {
		if _, err := app.Store.CreateCard(deckID, d); err == nil {
			imported++
		}
	}
	writeJSON(w, http.StatusCreated, map[string]int{"imported": imported})
}

// ExportAll returns the whole library as a portable backup document.
func (app *App) ExportAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, importer.ExportLibrary(app.Store))
}

// ExportDeckByID returns the deck's minimal ID-free card list, with a
// download filename derived from the deck name.
func (app *App) ExportDeckByID(w http.ResponseWriter, r *http.Request) {
	deckID := r.PathValue("deckID")
	deck, ok := app.Store.Deck(deckID)
	if !ok {
		http.Error(w, "Deck not found", http.StatusNotFound)
		return
	}
	cards, err := importer.ExportDeck(app.Store, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	filename := importer.SanitizeFilename(deck.Name)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="deck-%s.json"`, filename))
	writeJSON(w, http.StatusOK, cards)
}
