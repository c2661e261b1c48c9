package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "LLM_PROVIDER", "SESSION_TTL", "HISTORY_LIMIT", "MAX_RETRIES",
		"MIN_INPUT_CONFIDENCE", "INCOME_TOLERANCE", "AGE_TOLERANCE", "DEFAULT_LOCALE",
		"CATALOG_SOURCE", "CATALOG_PATH", "LLM_TEMPERATURE", "LLM_MAX_TOKENS",
	} {
		t.Setenv(k, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "gemini", LLMProvider())
	assert.Equal(t, 30*time.Minute, SessionTTL())
	assert.Equal(t, 20, HistoryLimit())
	assert.Equal(t, 3, MaxRetries())
	assert.InDelta(t, 0.4, MinInputConfidence(), 1e-9)
	assert.Equal(t, 25000, IncomeTolerance())
	assert.Equal(t, 1, AgeTolerance())
	assert.Equal(t, "hi", DefaultLocale())
	assert.Equal(t, "embedded", CatalogSource())
	assert.InDelta(t, 0.7, float64(LLMTemperature()), 1e-6)
	assert.Equal(t, 1000, LLMMaxTokens())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("INCOME_TOLERANCE", "10000")
	t.Setenv("MIN_INPUT_CONFIDENCE", "1.5")
	t.Setenv("CATALOG_SOURCE", "")
	t.Setenv("CATALOG_PATH", "/etc/sahai/catalog.yaml")

	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, 5*time.Minute, SessionTTL())
	assert.Equal(t, 10000, IncomeTolerance())
	assert.InDelta(t, 0.4, MinInputConfidence(), 1e-9, "out of range values fall back to the default")
	assert.Equal(t, "file", CatalogSource())
}

func TestLLMAPIKeyFollowsProvider(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("OPENAI_API_KEY", "o")
	t.Setenv("ANTHROPIC_API_KEY", "a")

	t.Setenv("LLM_PROVIDER", "")
	assert.Equal(t, "g", LLMAPIKey())
	t.Setenv("LLM_PROVIDER", "openai")
	assert.Equal(t, "o", LLMAPIKey())
	t.Setenv("LLM_PROVIDER", "anthropic")
	assert.Equal(t, "a", LLMAPIKey())
	t.Setenv("LLM_PROVIDER", "mock")
	assert.Equal(t, "", LLMAPIKey())
}

func TestLoadReadsEnvAndSecret(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SAHAI_TEST_PLAIN=plain\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("SAHAI_TEST_SECRET=s3cret\n"), 0o600))

	t.Setenv("SAHAI_ENV", envFile)
	// godotenv never overrides variables that are already set, so make
	// sure ours start out unset and clean up afterwards.
	t.Setenv("SAHAI_TEST_PLAIN", "")
	t.Setenv("SAHAI_TEST_SECRET", "")
	require.NoError(t, os.Unsetenv("SAHAI_TEST_PLAIN"))
	require.NoError(t, os.Unsetenv("SAHAI_TEST_SECRET"))

	require.NoError(t, Load())
	assert.Equal(t, "plain", os.Getenv("SAHAI_TEST_PLAIN"))
	assert.Equal(t, "s3cret", os.Getenv("SAHAI_TEST_SECRET"))
}
