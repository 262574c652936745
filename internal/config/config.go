package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// Storage
	DataDir       string        `env:"STUDIO_DATA_DIR" envDefault:"data"`
	WatchDebounce time.Duration `env:"WATCH_DEBOUNCE" envDefault:"250ms"`

	// Collections
	AnalysisHistoryLimit int           `env:"ANALYSIS_HISTORY_LIMIT" envDefault:"15"`
	ChatHistoryTTL       time.Duration `env:"CHAT_HISTORY_TTL" envDefault:"12h"`
	SweepSchedule        string        `env:"SWEEP_SCHEDULE" envDefault:"@every 1h"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
