package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"content-studio/internal/config"
	"content-studio/internal/llm"
	"content-studio/internal/scheduler"
	"content-studio/internal/storage"
	"content-studio/internal/studio"
	"content-studio/internal/watch"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	backend, err := storage.NewFileBackend(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}

	factory := &llm.Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIModel:      cfg.OpenAIModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
	client, err := factory.CreateClient(string(cfg.LLMProvider))
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	watcher, err := watch.New(watch.Config{Dir: backend.Dir(), DebounceDur: cfg.WatchDebounce})
	if err != nil {
		log.Fatalf("failed to init storage watcher: %v", err)
	}

	st := studio.New(studio.Config{
		Backend:       backend,
		Client:        client,
		Watcher:       watcher,
		AnalysisLimit: cfg.AnalysisHistoryLimit,
		ChatWindow:    cfg.ChatHistoryTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(); err != nil {
		log.Fatalf("failed to start storage watcher: %v", err)
	}
	st.Start(ctx)

	// periodic TTL sweep so expired conversation turns do not sit on
	// disk until the next interactive load
	sched := scheduler.New()
	sched.SetSweepFunction(func(_ context.Context) error {
		if err := st.Chat.Reload(); err != nil {
			return err
		}
		return st.Analysis.Reload()
	})
	if err := sched.Start(cfg.SweepSchedule); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	log.Printf("🚀 content studio started (data dir %s, identity %s)", backend.Dir(), st.Identity().Namespace())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
	sched.Stop()
	if err := watcher.Stop(); err != nil {
		log.Printf("⚠️ failed to stop watcher: %v", err)
	}
}
