package config

// OpenAIConfig holds the Azure OpenAI credentials and deployment settings.
type OpenAIConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

// SpeechConfig holds the Azure Speech Services credentials.
// Enabled is false when the subscription key or region is missing,
// in which case voice features are turned off instead of failing startup.
type SpeechConfig struct {
	SubscriptionKey string
	Region          string
	Language        string
	Voice           string
	Enabled         bool
}

// RedisConfig holds the optional session store connection settings.
// An empty Addr means sessions are not persisted.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level string
	File  string
}

// GameConfig holds tunables for the narrative loop.
type GameConfig struct {
	PersonaFile  string
	PlayerName   string
	HistoryLimit int
	MaxInputLen  int
}
