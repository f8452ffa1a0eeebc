package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL_ID", "")
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
	t.Setenv("SUPABASE_BUCKET", "")
	t.Setenv("RESULTS_DIR", "")

	cfg := Load()
	if cfg.HTTPAddress != ":8080" {
		t.Errorf("HTTPAddress = %q", cfg.HTTPAddress)
	}
	if cfg.GeminiModelID != "gemini-1.5-flash" {
		t.Errorf("GeminiModelID = %q", cfg.GeminiModelID)
	}
	if cfg.SupabaseBucket != "interview-results" {
		t.Errorf("SupabaseBucket = %q", cfg.SupabaseBucket)
	}
	if cfg.ResultsDir != "results" {
		t.Errorf("ResultsDir = %q", cfg.ResultsDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("GEMINI_MODEL_ID", "gemini-1.5-pro")
	t.Setenv("DEEPGRAM_API_KEY", "dk")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "sk")
	t.Setenv("SUPABASE_BUCKET", "custom-bucket")
	t.Setenv("RESULTS_DIR", "/tmp/out")

	cfg := Load()
	if cfg.HTTPAddress != ":9999" || cfg.GeminiAPIKey != "gk" || cfg.GeminiModelID != "gemini-1.5-pro" {
		t.Errorf("gemini config wrong: %+v", cfg)
	}
	if cfg.DeepgramAPIKey != "dk" {
		t.Errorf("DeepgramAPIKey = %q", cfg.DeepgramAPIKey)
	}
	if cfg.SupabaseURL != "https://proj.supabase.co" || cfg.SupabaseServiceKey != "sk" || cfg.SupabaseBucket != "custom-bucket" {
		t.Errorf("supabase config wrong: %+v", cfg)
	}
	if cfg.ResultsDir != "/tmp/out" {
		t.Errorf("ResultsDir = %q", cfg.ResultsDir)
	}
}
