package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/oxdrill/oxdrill-api/ai"
	"github.com/oxdrill/oxdrill-api/config"
	"github.com/oxdrill/oxdrill-api/handlers"
	"github.com/oxdrill/oxdrill-api/middleware"
	"github.com/oxdrill/oxdrill-api/store"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	config.Load()
	config.Connect()

	st, err := store.Open(config.Database)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	gen := ai.NewClient(config.Env.OpenAIBaseURL, config.Env.OpenAIKey, config.Env.OpenAIModel)

	app := handlers.NewApp(st, gen)
	mux := http.NewServeMux()

	// Library / decks
	mux.HandleFunc("GET /api/library", app.GetLibrary)
	mux.HandleFunc("POST /api/decks", app.CreateDeck)
	mux.HandleFunc("GET /api/decks/{deckID}", app.GetDeckByID)
	mux.HandleFunc("DELETE /api/decks/{deckID}", app.DeleteDeckByID)

	// Cards
	mux.HandleFunc("POST /api/decks/{deckID}/cards", app.CreateCard)
	mux.HandleFunc("PUT /api/cards/{cardID}", app.UpdateCardByID)
	mux.HandleFunc("DELETE /api/cards/{cardID}", app.DeleteCardByID)
	mux.HandleFunc("POST /api/cards/{cardID}/bookmark", app.ToggleBookmark)

	// Import / export
	mux.HandleFunc("POST /api/decks/{deckID}/import", app.ImportIntoDeck)
	mux.HandleFunc("GET /api/export", app.ExportAll)
	mux.HandleFunc("GET /api/decks/{deckID}/export", app.ExportDeckByID)

	// Settings
	mux.HandleFunc("GET /api/settings", app.GetSettings)
	mux.HandleFunc("PUT /api/settings", app.UpdateSettings)
	mux.HandleFunc("POST /api/reset", app.Reset)

	// Study session
	mux.HandleFunc("POST /api/study", app.StartStudy)
	mux.HandleFunc("GET /api/study", app.GetStudy)
	mux.HandleFunc("POST /api/study/answer", app.AnswerStudy)
	mux.HandleFunc("POST /api/study/next", app.AdvanceStudy)

	// Variant sub-session
	mux.HandleFunc("POST /api/variants", middleware.SingleFlight(app.GenerateVariants))
	mux.HandleFunc("GET /api/variants", app.GetVariant)
	mux.HandleFunc("POST /api/variants/answer", app.AnswerVariant)
	mux.HandleFunc("POST /api/variants/next", app.AdvanceVariant)
	mux.HandleFunc("POST /api/variants/finish", app.FinishVariant)

	// Offline shell support
	mux.HandleFunc("GET /api/offline-manifest", app.OfflineManifest)

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	serverAddr := "0.0.0.0:" + config.Env.Port
	log.Printf("listening on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		log.Fatal(err)
	}
}
