package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/session"
	"github.com/oxdrill/oxdrill-api/store"
)

// studyView is the full study screen state. The answer and explanation
// are only revealed once the card is answered.
type studyView struct {
	DeckID   string           `json:"deckId"`
	DeckName string           `json:"deckName"`
	Mode     session.Mode     `json:"mode"`
	Position int              `json:"position"`
	Total    int              `json:"total"`
	Finished bool             `json:"finished"`
	Card     *studyCardView   `json:"card,omitempty"`
	Summary  *session.Summary `json:"summary,omitempty"`
}

type studyCardView struct {
	ID          string        `json:"id"`
	Prompt      string        `json:"prompt"`
	Tags        []string      `json:"tags"`
	Bookmarked  bool          `json:"bookmarked"`
	Answered    bool          `json:"answered"`
	Choice      models.Answer `json:"choice,omitempty"`
	Correct     *bool         `json:"correct,omitempty"`
	Answer      models.Answer `json:"answer,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	CanGenerate bool          `json:"canGenerateVariants"`
}

// buildStudyView must be called with app.mu held.
func (app *App) buildStudyView() studyView {
	st := app.study
	view := studyView{
		DeckID:   st.DeckID(),
		Mode:     st.Mode(),
		Position: st.Index() + 1,
		Total:    st.Total(),
	}
	if deck, ok := app.Store.Deck(st.DeckID()); ok {
		view.DeckName = deck.Name
	}
	card, ok := st.Current()
	if !ok {
		view.Finished = true
		sum := st.Summarize()
		view.Summary = &sum
		return view
	}
	view.Position = st.Index() + 1
	cv := &studyCardView{
		ID:         card.ID,
		Prompt:     card.Prompt,
		Tags:       card.Tags,
		Bookmarked: app.Store.Bookmarked(card.ID),
		Answered:   st.Answered(),
	}
	if st.Answered() {
		correct := st.LastCorrect()
		cv.Choice = st.Choice()
		cv.Correct = &correct
		cv.Answer = card.Answer
		cv.Explanation = card.Explanation
		cv.CanGenerate = !correct
	}
	view.Card = cv
	return view
}

func (app *App) startStudy(w http.ResponseWriter, deckID string, mode session.Mode) bool {
	st, err := session.StartStudy(app.Store, deckID, mode)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDeckNotFound):
			http.Error(w, "Deck not found", http.StatusNotFound)
		case errors.Is(err, session.ErrEmptyFilter):
			writeError(w, http.StatusConflict, session.EmptyFilterMessage(mode))
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return false
	}
	app.study = st
	return true
}

// StartStudy builds a fresh session for the deck/mode pairing, replacing
// any previous one.
func (app *App) StartStudy(w http.ResponseWriter, r *http.Request) {
	var reqData struct {
		DeckID string `json:"deckId"`
		Mode   string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	mode, err := session.NormalizeMode(reqData.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if !app.startStudy(w, reqData.DeckID, mode) {
		return
	}
	writeJSON(w, http.StatusCreated, app.buildStudyView())
}

// GetStudy returns the current study screen for the given deck/mode. A
// session that no longer matches the requested pairing is discarded and
// silently rebuilt; within the same pairing progress is preserved.
func (app *App) GetStudy(w http.ResponseWriter, r *http.Request) {
	deckID := r.URL.Query().Get("deckId")
	mode, err := session.NormalizeMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.study == nil || !app.study.Matches(deckID, mode) {
		if !app.startStudy(w, deckID, mode) {
			return
		}
	}
	writeJSON(w, http.StatusOK, app.buildStudyView())
}

// AnswerStudy grades the current card. A second answer on the same card
// is ignored, not an error.
func (app *App) AnswerStudy(w http.ResponseWriter, r *http.Request) {
	var reqData struct {
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.study == nil {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}
	app.study.Answer(reqData.Choice)
	writeJSON(w, http.StatusOK, app.buildStudyView())
}

// AdvanceStudy moves to the next card; past the end of the queue the view
// carries the summary.
func (app *App) AdvanceStudy(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.study == nil {
		http.Error(w, "No active study session", http.StatusNotFound)
		return
	}
	app.study.Advance()
	writeJSON(w, http.StatusOK, app.buildStudyView())
}
