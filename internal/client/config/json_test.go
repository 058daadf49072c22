package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	dir := t.TempDir()
	full := filepath.Join(dir, "full.json")
	require.NoError(t, os.WriteFile(full, []byte(`{
		"server_endpoint_addr": "10.0.0.1:50051",
		"http_base_url": "https://api.example",
		"request_timeout_seconds": 4
	}`), 0o600))

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"http_base_url": "http://other"}`), 0o600))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0o600))

	t.Run("full file", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", full}
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, Config{
			ServerEndpointAddr: "10.0.0.1:50051",
			HTTPBaseURL:        "https://api.example",
			RequestTimeout:     4 * time.Second,
		}, *cfg)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-config=" + partial}
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
		assert.Equal(t, "http://other", cfg.HTTPBaseURL)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	})

	t.Run("env fallback", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("CONFIG", partial)
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://other", cfg.HTTPBaseURL)
	})

	t.Run("no file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, Config{}, *cfg)
	})

	t.Run("invalid json panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", broken}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
