package store

import "errors"

// Sentinel errors for the store package.
// Use errors.Is to check: errors.Is(err, store.ErrDeckNotFound)
var (
	ErrDeckNotFound = errors.New("store: deck not found")
	ErrCardNotFound = errors.New("store: card not found")
)
