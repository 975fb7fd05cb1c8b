package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/oxdrill/oxdrill-api/ai"
	"github.com/oxdrill/oxdrill-api/session"
	"github.com/oxdrill/oxdrill-api/store"
)

// App holds the store, the variant generator, and the single current
// study/variant sessions. The app is single-user: one session of each
// kind at a time.
type App struct {
	Store *store.Store
	Gen   ai.Generator

	mu      sync.Mutex
	study   *session.Study
	variant *session.Variant
}

func NewApp(st *store.Store, gen ai.Generator) *App {
	return &App{Store: st, Gen: gen}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError sends the user-facing message as {"error": ...}. Errors are
// surfaced verbatim; nothing here is fatal to the process.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
