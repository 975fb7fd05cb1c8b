package handlers

import (
	"encoding/json"
	"net/http"
)

func (app *App) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.Store.Settings())
}

// UpdateSettings replaces the settings. Out-of-range values are clamped
// and missing fields defaulted, never rejected.
func (app *App) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	cfg := app.Store.Settings()
	var reqData struct {
		AICount         *int    `json:"aiCount"`
		AIStoreVariants *bool   `json:"aiStoreVariants"`
		AILanguage      *string `json:"aiLanguage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqData); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}
	if reqData.AICount != nil {
		cfg.AICount = *reqData.AICount
	}
	if reqData.AIStoreVariants != nil {
		cfg.AIStoreVariants = *reqData.AIStoreVariants
	}
	if reqData.AILanguage != nil {
		cfg.AILanguage = *reqData.AILanguage
	}
	writeJSON(w, http.StatusOK, app.Store.UpdateSettings(cfg))
}

// Reset wipes the library back to the seeded example deck and drops any
// active sessions. Settings are kept.
func (app *App) Reset(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	app.study = nil
	app.variant = nil
	app.mu.Unlock()
	app.Store.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}
