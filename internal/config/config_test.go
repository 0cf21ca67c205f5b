package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "memory"})

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 24*time.Hour, cfg.AICacheTTL)
	assert.Equal(t, "@every 15m", cfg.DigestSchedule)
	assert.NotEmpty(t, cfg.StateDir)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":       "s",
		"STORE_BACKEND":    "sheets",
		"SPREADSHEET_ID":   "sheet-1",
		"CACHE_TTL":        "30s",
		"RETRY_ATTEMPTS":   "5",
		"RETRY_BASE_DELAY": "250ms",
	})

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": "", "STORE_BACKEND": "memory"}},
		{"sheets without id", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "sheets", "SPREADSHEET_ID": ""}},
		{"unknown backend", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "excel"}},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "memory", "CACHE_TTL": "soon"}},
		{"bad attempts", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "memory", "RETRY_ATTEMPTS": "three"}},
		{"zero attempts", map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "memory", "RETRY_ATTEMPTS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadActivityTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
types:
  - key: DEMO
    label: Product demo
    requires_title: true
    requires_date: true
  - key: NOTE
    label: Note
`), 0o644))

	types, err := LoadActivityTypes(path)

	require.NoError(t, err)
	assert.Equal(t, models.ActivityTypes{
		{Key: "DEMO", Label: "Product demo", RequiresTitle: true, RequiresDate: true},
		{Key: "NOTE", Label: "Note"},
	}, types)
}

func TestLoadActivityTypes_Defaults(t *testing.T) {
	types, err := LoadActivityTypes("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultActivityTypes(), types)
}

func TestLoadActivityTypes_Invalid(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	for _, p := range []string{
		write("empty.yaml", "types: []\n"),
		write("dup.yaml", "types:\n  - key: A\n  - key: A\n"),
		write("nokey.yaml", "types:\n  - label: x\n"),
		write("broken.yaml", "types: [\n"),
		filepath.Join(dir, "missing.yaml"),
	} {
		_, err := LoadActivityTypes(p)
		assert.Error(t, err, p)
	}
}
