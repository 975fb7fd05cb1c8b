package handlers

import "net/http"

// offlineAssets is the fixed manifest of shell assets safe to cache for
// offline use. API paths are deliberately absent: variant generation
// responses are never stale-safe, and the offline layer must let every
// non-manifest request pass through.
var offlineAssets = []string{
	"/",
	"/index.html",
	"/styles.css",
	"/app.js",
	"/manifest.json",
	"/favicon.png",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
	"/icons/icon-180.png",
	"/icons/icon-144.png",
	"/icons/icon-96.png",
}

// OfflineManifest declares the cache-first asset list to the shell.
func (app *App) OfflineManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache":  "ox-wrong-variant-v1",
		"assets": offlineAssets,
	})
}
