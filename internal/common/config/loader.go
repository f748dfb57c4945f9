// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// HuntWorkerName is the workers map key for the Zeebe hunt worker.
const HuntWorkerName = "hunt-leads"

// DefaultProviderURL is the Serper search endpoint.
const DefaultProviderURL = "https://google.serper.dev/search"

// Load reads configs/config.yaml (plus config.<APP_ENVIRONMENT>.yaml when
// present), a .env file and the process environment.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvAliases(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults where zero is a meaningful value, so an
// explicit 0 in YAML or env survives.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "lead-hunter")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("hunter.provider_url", DefaultProviderURL)
	v.SetDefault("hunter.max_results", 50)
	v.SetDefault("hunter.request_delay_ms", 2000)
	v.SetDefault("hunter.request_timeout_ms", 30000)
	v.SetDefault("hunter.phones_per_item", 2)
	v.SetDefault("hunter.summary_limit", 10)
	v.SetDefault("hunter.notes_limit", 200)
	v.SetDefault("hunter.dedup_ttl_hours", 720)
	v.SetDefault("hunter.summary_ttl_hours", 24)
	v.SetDefault("hunter.max_concurrent_hunts", 4)
	v.SetDefault("hunter.hunt_timeout_ms", 120000)

	v.SetDefault("http.port", 8080)
	v.SetDefault("database.elasticsearch.index", "leads")
	v.SetDefault("database.redis.key_prefix", "hunter")
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

// applyEnvAliases honours the short variable names operators already use
// for the search engine. They win over YAML.
func applyEnvAliases(cfg *Config) error {
	if val, ok := os.LookupEnv("SERPER_KEYS"); ok {
		cfg.Hunter.Keys = SplitKeys(val)
	}
	if val := strings.TrimSpace(os.Getenv("MAX_RESULTS")); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("MAX_RESULTS: %w", err)
		}
		cfg.Hunter.MaxResults = n
	}
	if val := strings.TrimSpace(os.Getenv("REQUEST_DELAY")); val != "" {
		secs, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("REQUEST_DELAY: %w", err)
		}
		// Round up so a positive sub-millisecond delay still paces requests.
		cfg.Hunter.RequestDelayMs = int(math.Ceil(math.Round(secs*1e6) / 1000))
	}
	return nil
}

// SplitKeys splits a comma-separated key list, dropping blanks.
func SplitKeys(raw string) []string {
	keys := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Integrations.Zoho.APIKey == "" {
		if val := os.Getenv("ZOHO_CRM_API_KEY"); val != "" {
			cfg.Integrations.Zoho.APIKey = val
		}
	}
	if cfg.Integrations.Zoho.AuthToken == "" {
		if val := os.Getenv("ZOHO_CRM_OAUTH_TOKEN"); val != "" {
			cfg.Integrations.Zoho.AuthToken = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults fills optional fields whose zero value is never meaningful.
func applyDefaults(cfg *Config) {
	cfg.Hunter.Keys = SplitKeys(strings.Join(cfg.Hunter.Keys, ","))

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Integrations.Zoho.Timeout == 0 {
		cfg.Integrations.Zoho.Timeout = 10000
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 10000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30000
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 15000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 120000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig rejects settings the engine cannot run with at all.
func validateConfig(cfg *Config) error {
	h := cfg.Hunter
	if h.ProviderURL == "" {
		return fmt.Errorf("hunter.provider_url is required")
	}
	if h.MaxResults <= 0 {
		return fmt.Errorf("hunter.max_results must be positive, got %d", h.MaxResults)
	}
	if h.RequestDelayMs < 0 {
		return fmt.Errorf("hunter.request_delay_ms must not be negative, got %d", h.RequestDelayMs)
	}
	if h.RequestTimeoutMs <= 0 {
		return fmt.Errorf("hunter.request_timeout_ms must be positive, got %d", h.RequestTimeoutMs)
	}
	if h.PhonesPerItem <= 0 {
		return fmt.Errorf("hunter.phones_per_item must be positive, got %d", h.PhonesPerItem)
	}
	if h.SummaryLimit <= 0 {
		return fmt.Errorf("hunter.summary_limit must be positive, got %d", h.SummaryLimit)
	}
	if h.NotesLimit <= 0 {
		return fmt.Errorf("hunter.notes_limit must be positive, got %d", h.NotesLimit)
	}
	if h.MaxConcurrentHunts <= 0 {
		return fmt.Errorf("hunter.max_concurrent_hunts must be positive, got %d", h.MaxConcurrentHunts)
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", cfg.HTTP.Port)
	}
	if cfg.Integrations.Zoho.Enabled && cfg.Integrations.Zoho.AuthToken == "" {
		return fmt.Errorf("integrations.zoho.oauth_token is required when zoho is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
		MaxRetries:    0,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
