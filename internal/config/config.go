package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress        string
	GeminiAPIKey       string
	GeminiModelID      string
	DeepgramAPIKey     string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
	ResultsDir         string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set - question generation and analysis will not work")
	}
	geminiModel := os.Getenv("GEMINI_MODEL_ID")
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}

	deepgramKey := os.Getenv("DEEPGRAM_API_KEY")
	if deepgramKey == "" {
		log.Println("Warning: DEEPGRAM_API_KEY not set - narration will be silent")
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	supabaseBucket := os.Getenv("SUPABASE_BUCKET")
	if supabaseBucket == "" {
		supabaseBucket = "interview-results"
	}
	if supabaseURL == "" || supabaseKey == "" {
		log.Println("Warning: SUPABASE_URL / SUPABASE_SERVICE_ROLE_KEY not set - results will be stored on local disk")
	}

	resultsDir := os.Getenv("RESULTS_DIR")
	if resultsDir == "" {
		resultsDir = "results"
	}

	log.Printf("config: HTTP_ADDRESS=%s", addr)
	return Config{
		HTTPAddress:        addr,
		GeminiAPIKey:       geminiKey,
		GeminiModelID:      geminiModel,
		DeepgramAPIKey:     deepgramKey,
		SupabaseURL:        supabaseURL,
		SupabaseServiceKey: supabaseKey,
		SupabaseBucket:     supabaseBucket,
		ResultsDir:         resultsDir,
	}
}
