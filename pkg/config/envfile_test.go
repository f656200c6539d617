package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/config"
)

type providerEnvConfig struct {
	ServerToken string `env:"POSTMARK_SERVER_TOKEN"`
	SenderEmail string `env:"POSTMARK_SENDER_EMAIL"`
	SMSSender   string `env:"SMS_SENDER_ID"`
	BatchSize   int    `env:"DISPATCH_BATCH_SIZE"`
	Secret      string `env:"WEBHOOK_CALLBACK_SECRET"`
}

func clearProviderEnv() {
	os.Unsetenv("POSTMARK_SERVER_TOKEN")
	os.Unsetenv("POSTMARK_SENDER_EMAIL")
	os.Unsetenv("SMS_SENDER_ID")
	os.Unsetenv("DISPATCH_BATCH_SIZE")
	os.Unsetenv("WEBHOOK_CALLBACK_SECRET")
}

func TestLoadEnv(t *testing.T) {
	t.Run("loads a named env file", func(t *testing.T) {
		clearProviderEnv()
		config.ResetCache()

		require.NoError(t, config.LoadEnv("testdata/.env.sandbox"))

		var cfg providerEnvConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "sandbox-token", cfg.ServerToken)
		assert.Equal(t, "no-reply@sandbox.example.com", cfg.SenderEmail)
		assert.Equal(t, "NOTIFYKIT", cfg.SMSSender)
		assert.Equal(t, 50, cfg.BatchSize)
	})

	t.Run("earlier files win for duplicated keys", func(t *testing.T) {
		clearProviderEnv()
		config.ResetCache()

		require.NoError(t, config.LoadEnv("testdata/.env.sandbox", "testdata/.env.overrides"))

		var cfg providerEnvConfig
		require.NoError(t, config.Load(&cfg))
		// POSTMARK_SERVER_TOKEN appears in both files; the first keeps it.
		assert.Equal(t, "sandbox-token", cfg.ServerToken)
		// Keys unique to the second file still land.
		assert.Equal(t, "whsec_sandbox", cfg.Secret)
	})

	t.Run("process environment beats env files", func(t *testing.T) {
		clearProviderEnv()
		config.ResetCache()
		t.Setenv("POSTMARK_SERVER_TOKEN", "from-process")

		require.NoError(t, config.LoadEnv("testdata/.env.sandbox"))

		var cfg providerEnvConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from-process", cfg.ServerToken)
	})

	t.Run("missing file errors", func(t *testing.T) {
		require.Error(t, config.LoadEnv("testdata/.env.missing"))
	})
}

func TestMustLoadEnv(t *testing.T) {
	assert.NotPanics(t, func() {
		config.MustLoadEnv("testdata/.env.sandbox")
	})
	assert.Panics(t, func() {
		config.MustLoadEnv("testdata/.env.missing")
	})
}
