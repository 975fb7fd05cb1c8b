package middleware

import (
	"net/http"
	"sync/atomic"
)

// SingleFlight allows one outstanding request through the wrapped handler
// at a time. Variant generation is slow and paid; a user re-triggering it
// before the first call resolves must not spawn a duplicate.
func SingleFlight(next http.HandlerFunc) http.HandlerFunc {
	var inFlight atomic.Bool
	return func(w http.ResponseWriter, r *http.Request) {
		if !inFlight.CompareAndSwap(false, true) {
			http.Error(w, "A generation request is already in progress", http.StatusConflict)
			return
		}
		defer inFlight.Store(false)
		next(w, r)
	}
}
