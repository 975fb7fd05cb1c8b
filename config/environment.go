package config

import (
	"log"
	"os"
)

type Environment struct {
	Port          string
	DatabaseURL   string // postgres DSN; empty means local sqlite
	DatabasePath  string // sqlite file used when DatabaseURL is empty
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

var Env Environment

func Load() {
	Env = Environment{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DB_URL", ""),
		DatabasePath:  getEnv("DB_PATH", "oxdrill.db"),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}

	if Env.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set, variant generation will be unavailable")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
