package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanath0106/mockview/internal/config"
	"github.com/sanath0106/mockview/internal/httpserver"
	"github.com/sanath0106/mockview/internal/interview"
	"github.com/sanath0106/mockview/internal/llm"
	"github.com/sanath0106/mockview/internal/narration"
	"github.com/sanath0106/mockview/internal/storage"
	"github.com/sanath0106/mockview/internal/tts"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	cfg := config.Load()

	deps := httpserver.Deps{}

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		defer client.Close()
		deps.Generator = client
		deps.Analyzer = client
	}

	var store interview.FeedbackStore
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		store = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	} else {
		store = storage.NewFileStore(cfg.ResultsDir)
	}
	deps.Store = store

	if cfg.DeepgramAPIKey != "" {
		key := cfg.DeepgramAPIKey
		deps.NewEngine = func(sink tts.Sink) narration.Engine {
			return tts.NewDeepgramEngine(key, sink)
		}
	}

	srv := httpserver.New(deps)
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("http: listening on %s", cfg.HTTPAddress)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
