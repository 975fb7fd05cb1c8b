package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/oxdrill/oxdrill-api/ai"
	"github.com/oxdrill/oxdrill-api/models"
	"github.com/oxdrill/oxdrill-api/session"
	"github.com/oxdrill/oxdrill-api/store"
)

type variantView struct {
	Position     int                   `json:"position"`
	Total        int                   `json:"total"`
	CorrectCount int                   `json:"correctCount"`
	WrongCount   int                   `json:"wrongCount"`
	Finished     bool                  `json:"finished"`
	Card         *variantCardView      `json:"card,omitempty"`
	Source       session.ParentContext `json:"source"`
	Model        string                `json:"model,omitempty"`
}

type variantCardView struct {
	ID          string        `json:"id"`
	Prompt      string        `json:"prompt"`
	Tags        []string      `json:"tags"`
	Answered    bool          `json:"answered"`
	Choice      models.Answer `json:"choice,omitempty"`
	Correct     *bool         `json:"correct,omitempty"`
	Answer      models.Answer `json:"answer,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
}

// buildVariantView must be called with app.mu held.
func (app *App) buildVariantView(model string) variantView {
	v := app.variant
	correct, wrong := v.Counts()
	view := variantView{
		Position:     v.Index() + 1,
		Total:        v.Total(),
		CorrectCount: correct,
		WrongCount:   wrong,
		Finished:     v.Finished(),
		Source:       v.Source(),
		Model:        model,
	}
	card, ok := v.Current()
	if !ok {
		return view
	}
	cv := &variantCardView{
		ID:       card.ID,
		Prompt:   card.Prompt,
		Tags:     card.Tags,
		Answered: v.Answered(),
	}
	if v.Answered() {
		lastCorrect := v.LastCorrect()
		cv.Choice = v.Choice()
		cv.Correct = &lastCorrect
		cv.Answer = card.Answer
		cv.Explanation = card.Explanation
	}
	view.Card = cv
	return view
}

// GenerateVariants spawns a variant sub-session for the current missed
// study card. Only valid while the study session shows a wrong answer.
// Generation responses are never cacheable.
func (app *App) GenerateVariants(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	app.mu.Lock()
	st := app.study
	if st == nil || !st.Answered() || st.LastCorrect() {
		app.mu.Unlock()
		writeError(w, http.StatusConflict, "variant generation is only available after a wrong answer")
		return
	}
	card, ok := st.Current()
	if !ok {
		app.mu.Unlock()
		writeError(w, http.StatusConflict, "no current card")
		return
	}
	source := session.ParentContext{
		DeckID: st.DeckID(),
		Mode:   st.Mode(),
		Index:  st.Index(),
	}
	app.mu.Unlock()

	cfg := app.Store.Settings()
	drafts, model, err := app.Gen.GenerateVariants(r.Context(), app.variantRequest(card, cfg))
	if err != nil {
		// Surface the underlying message; the study session stays intact.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	cards := session.BuildVariantCards(drafts, card.Tags, cfg.AICount)
	variant, err := session.StartVariant(source, cards)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if cfg.AIStoreVariants {
		deck := app.Store.EnsureDeckByName(store.VariantDeckName)
		for _, vc := range cards {
			draft := models.CardDraft{
				Prompt:      vc.Prompt,
				Answer:      string(vc.Answer),
				Explanation: vc.Explanation,
				Tags:        vc.Tags,
			}
			if _, err := app.Store.CreateCard(deck.ID, draft); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
	}

	app.mu.Lock()
	app.variant = variant
	view := app.buildVariantView(model)
	app.mu.Unlock()
	writeJSON(w, http.StatusCreated, view)
}

func (app *App) variantRequest(card models.Card, cfg models.Settings) ai.VariantRequest {
	return ai.VariantRequest{
		N:           cfg.AICount,
		Prompt:      card.Prompt,
		Answer:      card.Answer,
		Explanation: card.Explanation,
		Tags:        card.Tags,
		Language:    cfg.AILanguage,
	}
}

// GetVariant returns the current variant screen.
func (app *App) GetVariant(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.variant == nil {
		http.Error(w, "No active variant session", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app.buildVariantView(""))
}

// AnswerVariant grades the current variant. Scoring is in-memory only;
// durable stats are untouched.
func (app *App) AnswerVariant(w http.ResponseWriter, r *http.Request) {
	var reqData struct {
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.variant == nil {
		http.Error(w, "No active variant session", http.StatusNotFound)
		return
	}
	app.variant.Answer(reqData.Choice)
	writeJSON(w, http.StatusOK, app.buildVariantView(""))
}

// AdvanceVariant moves to the next variant.
func (app *App) AdvanceVariant(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.variant == nil {
		http.Error(w, "No active variant session", http.StatusNotFound)
		return
	}
	app.variant.Advance()
	writeJSON(w, http.StatusOK, app.buildVariantView(""))
}

// FinishVariant ends the excursion and hands back the parent study
// context captured at spawn time. The parent session itself was never
// touched, so the shell can resume it as-is.
func (app *App) FinishVariant(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.variant == nil {
		http.Error(w, "No active variant session", http.StatusNotFound)
		return
	}
	correct, wrong := app.variant.Counts()
	source := app.variant.Source()
	app.variant = nil
	writeJSON(w, http.StatusOK, map[string]any{
		"correctCount": correct,
		"wrongCount":   wrong,
		"source":       source,
	})
}
