// Package config provides application configuration sourced from the
// process environment. A .env file in the working directory is honored.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the immutable session configuration, read once at startup.
type Config struct {
	OpenAI OpenAIConfig
	Speech SpeechConfig
	Redis  RedisConfig
	Log    LogConfig
	Game   GameConfig
}

// Load reads configuration from environment variables. A missing .env file
// is not an error; missing Azure OpenAI credentials are.
func Load() (*Config, error) {
	// Best effort: the environment may already carry everything.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAI: OpenAIConfig{
			Endpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:     getEnv("AZURE_OPENAI_KEY", ""),
			Deployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-35-turbo"),
			APIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2023-05-15"),
		},
		Speech: SpeechConfig{
			SubscriptionKey: getEnv("AZURE_SPEECH_KEY", ""),
			Region:          getEnv("AZURE_SPEECH_REGION", ""),
			Language:        getEnv("AZURE_SPEECH_LANGUAGE", "en-US"),
			Voice:           getEnv("AZURE_SPEECH_VOICE", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Game: GameConfig{
			PersonaFile:  getEnv("PERSONA_FILE", ""),
			PlayerName:   getEnv("PLAYER_NAME", "Stefan"),
			HistoryLimit: getEnvInt("HISTORY_LIMIT", 20),
			MaxInputLen:  getEnvInt("MAX_INPUT_LENGTH", 50),
		},
	}

	cfg.Speech.Enabled = cfg.Speech.SubscriptionKey != "" && cfg.Speech.Region != ""

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the required Azure OpenAI credentials are present.
// The speech credentials are optional; voice features degrade without them.
func (c *Config) Validate() error {
	if c.OpenAI.Endpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_KEY is required")
	}
	if c.OpenAI.Deployment == "" {
		return fmt.Errorf("AZURE_OPENAI_DEPLOYMENT cannot be empty")
	}
	if c.Game.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be > 0")
	}
	if c.Game.MaxInputLen <= 0 {
		return fmt.Errorf("MAX_INPUT_LENGTH must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
