package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configEnvKeys are the environment names of every key with a default.
var configEnvKeys = []string{
	"PORT",
	"ANTHROPIC_API_KEY",
	"ANTHROPIC_BASE_URL",
	"ANTHROPIC_VERSION",
	"ANTHROPIC_MODEL",
	"ANTHROPIC_MAX_TOKENS",
	"ANTHROPIC_TEMPERATURE",
	"ANTHROPIC_TIMEOUT",
	"ANTHROPIC_MAX_RETRIES",
	"LOG_LEVEL",
	"LOG_PRETTY",
}

// clearConfigEnv blanks every config variable for the duration of the test.
// Viper treats an empty variable as unset, so defaults apply.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func TestConfigEnvKeysCoverDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var want []string
	for _, key := range v.AllKeys() {
		want = append(want, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	assert.ElementsMatch(t, want, configEnvKeys)
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.Anthropic.APIKey)
	assert.Equal(t, "https://api.anthropic.com", cfg.Anthropic.BaseURL)
	assert.Equal(t, "2023-06-01", cfg.Anthropic.Version)
	assert.Equal(t, "claude-3-5-sonnet-20240620", cfg.Anthropic.Model)
	assert.Equal(t, 1000, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 0.0, cfg.Anthropic.Temperature)
	assert.Equal(t, 60*time.Second, cfg.Anthropic.Timeout)
	assert.Equal(t, 2, cfg.Anthropic.MaxRetries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_DefaultsAfterAmbientValues(t *testing.T) {
	t.Setenv("ANTHROPIC_BASE_URL", "http://127.0.0.1:48271")
	t.Setenv("ANTHROPIC_MODEL", "some-other-model")
	t.Setenv("LOG_LEVEL", "debug")
	clearConfigEnv(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "https://api.anthropic.com", cfg.Anthropic.BaseURL)
	assert.Equal(t, "claude-3-5-sonnet-20240620", cfg.Anthropic.Model)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_TIMEOUT", "15s")
	t.Setenv("ANTHROPIC_MAX_RETRIES", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sk-test", cfg.Anthropic.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Anthropic.Timeout)
	assert.Equal(t, 0, cfg.Anthropic.MaxRetries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	opts := cfg.Anthropic.ClientOptions()
	assert.Equal(t, "sk-test", opts.APIKey)
	assert.Equal(t, 15*time.Second, opts.Timeout)

	settings := cfg.Anthropic.GeneratorSettings()
	assert.Equal(t, "claude-3-5-sonnet-20240620", settings.Model)
	assert.Equal(t, 1000, settings.MaxTokens)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearConfigEnv(t)
	// godotenv never overrides variables that are already set, so make sure
	// this one is absent before loading the file.
	require.NoError(t, os.Unsetenv("ANTHROPIC_MODEL"))
	t.Cleanup(func() { _ = os.Unsetenv("ANTHROPIC_MODEL") })

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ANTHROPIC_MODEL=claude-test-model\n"), 0o600))

	cfg, err := load(viper.New(), envFile)
	require.NoError(t, err)
	assert.Equal(t, "claude-test-model", cfg.Anthropic.Model)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port out of range", key: "PORT", val: "70000"},
		{name: "temperature too high", key: "ANTHROPIC_TEMPERATURE", val: "1.5"},
		{name: "negative retries", key: "ANTHROPIC_MAX_RETRIES", val: "-1"},
		{name: "unknown log level", key: "LOG_LEVEL", val: "loud"},
		{name: "zero max tokens", key: "ANTHROPIC_MAX_TOKENS", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
