package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv configures the minimum environment for a successful Load.
func setEnv(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_KEY", "test-openai-key")
	t.Setenv("AZURE_SPEECH_KEY", "test-speech-key")
	t.Setenv("AZURE_SPEECH_REGION", "westeurope")
}

func TestLoad_Success(t *testing.T) {
	setEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "https://example.openai.azure.com", cfg.OpenAI.Endpoint)
	assert.Equal(t, "test-openai-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "test-speech-key", cfg.Speech.SubscriptionKey)
	assert.Equal(t, "westeurope", cfg.Speech.Region)
	assert.True(t, cfg.Speech.Enabled)
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "gpt-35-turbo", cfg.OpenAI.Deployment)
	assert.Equal(t, "2023-05-15", cfg.OpenAI.APIVersion)
	assert.Equal(t, "en-US", cfg.Speech.Language)
	assert.Equal(t, 20, cfg.Game.HistoryLimit)
	assert.Equal(t, 50, cfg.Game.MaxInputLen)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingOpenAIEndpoint(t *testing.T) {
	setEnv(t)
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")
}

func TestLoad_MissingOpenAIKey(t *testing.T) {
	setEnv(t)
	t.Setenv("AZURE_OPENAI_KEY", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_KEY")
}

func TestLoad_MissingSpeechDisablesVoice(t *testing.T) {
	setEnv(t)
	t.Setenv("AZURE_SPEECH_KEY", "")

	cfg, err := Load()

	// Startup still succeeds; voice features are off.
	require.NoError(t, err)
	assert.False(t, cfg.Speech.Enabled)
}

func TestLoad_PartialSpeechDisablesVoice(t *testing.T) {
	setEnv(t)
	t.Setenv("AZURE_SPEECH_REGION", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.False(t, cfg.Speech.Enabled)
}

func TestLoad_OverridesAndBadInts(t *testing.T) {
	setEnv(t)
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o")
	t.Setenv("HISTORY_LIMIT", "40")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Deployment)
	assert.Equal(t, 40, cfg.Game.HistoryLimit)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidate_BadHistoryLimit(t *testing.T) {
	setEnv(t)
	t.Setenv("HISTORY_LIMIT", "-1")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HISTORY_LIMIT")
}
