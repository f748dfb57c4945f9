package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseYAML = `
app:
  name: lead-hunter
  version: 2.1.0
database:
  postgres:
    host: localhost
    database: hunter
    user: hunter
  redis:
    address: localhost:6379
hunter:
  keys: ["k1", "k2"]
`

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultProviderURL, cfg.Hunter.ProviderURL)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Hunter.Keys)
	assert.Equal(t, 50, cfg.Hunter.MaxResults)
	assert.Equal(t, 2*time.Second, cfg.Hunter.RequestDelay())
	assert.Equal(t, 30*time.Second, cfg.Hunter.RequestTimeout())
	assert.Equal(t, 2, cfg.Hunter.PhonesPerItem)
	assert.Equal(t, 10, cfg.Hunter.SummaryLimit)
	assert.Equal(t, 200, cfg.Hunter.NotesLimit)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "leads", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ZeroDelayIsKept(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML+"  request_delay_ms: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Hunter.RequestDelay())
}

func TestLoadFromFile_EnvAliases(t *testing.T) {
	t.Setenv("SERPER_KEYS", " a , ,b,c ")
	t.Setenv("MAX_RESULTS", "20")
	t.Setenv("REQUEST_DELAY", "1.5")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, cfg.Hunter.Keys)
	assert.Equal(t, 20, cfg.Hunter.MaxResults)
	assert.Equal(t, 1500*time.Millisecond, cfg.Hunter.RequestDelay())
}

func TestLoadFromFile_SubMillisecondDelayRoundsUp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{raw: "0.0005", want: time.Millisecond},
		{raw: "0.29", want: 290 * time.Millisecond},
		{raw: "1.13", want: 1130 * time.Millisecond},
		{raw: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("REQUEST_DELAY", tt.raw)

			cfg, err := LoadFromFile(writeConfig(t, baseYAML))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Hunter.RequestDelay())
		})
	}
}

func TestLoadFromFile_InvalidEnv(t *testing.T) {
	t.Setenv("MAX_RESULTS", "many")

	_, err := LoadFromFile(writeConfig(t, baseYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_RESULTS")
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "negative delay",
			extra:   "  request_delay_ms: -1\n",
			wantErr: "hunter.request_delay_ms",
		},
		{
			name:    "zero phones per item",
			extra:   "  phones_per_item: 0\n",
			wantErr: "hunter.phones_per_item",
		},
		{
			name:    "zero summary limit",
			extra:   "  summary_limit: 0\n",
			wantErr: "hunter.summary_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, baseYAML+tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitKeys("a,b"))
	assert.Equal(t, []string{"a"}, SplitKeys("  a ,, "))
	assert.Empty(t, SplitKeys(""))
}

func TestConfig_Status(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantValid  bool
		wantIssues int
	}{
		{name: "no keys is an error", keys: nil, wantValid: false, wantIssues: 1},
		{name: "single key is a warning", keys: []string{"k"}, wantValid: true, wantIssues: 1},
		{name: "two keys is clean", keys: []string{"k1", "k2"}, wantValid: true, wantIssues: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.App.Name = "lead-hunter"
			cfg.Database.Postgres = PostgresConfig{Host: "db", Database: "hunter", User: "u", SSLMode: "disable"}
			cfg.Database.Redis.Address = "localhost:6379"
			cfg.Hunter.ProviderURL = DefaultProviderURL
			cfg.Hunter.Keys = tt.keys

			st := cfg.Status()
			assert.Equal(t, tt.wantValid, st.Valid)
			assert.Len(t, st.Issues, tt.wantIssues)
			assert.Equal(t, len(tt.keys), st.KeysCount)
			assert.Equal(t, len(tt.keys) > 0, st.SearchConfigured)
			assert.True(t, st.DatabaseConfigured)
			assert.False(t, st.WorkerEnabled)
		})
	}
}
