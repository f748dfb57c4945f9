// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Hunter       HunterConfig            `mapstructure:"hunter"`
	HTTP         HTTPConfig              `mapstructure:"http"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Enabled reports whether a Zeebe gateway is configured.
func (c CamundaConfig) Enabled() bool {
	return strings.TrimSpace(c.BrokerAddress) != ""
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

func (p PostgresConfig) Configured() bool {
	return p.Host != "" && p.Database != "" && p.User != ""
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	Index     string   `mapstructure:"index"`
}

// GetURL returns the URL field or the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

func (e ElasticsearchConfig) Configured() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r RedisConfig) Configured() bool {
	return r.Address != ""
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// IntegrationConfig holds settings for external CRM mirrors.
type IntegrationConfig struct {
	Zoho struct {
		Enabled   bool   `mapstructure:"enabled"`
		APIKey    string `mapstructure:"api_key"`
		AuthToken string `mapstructure:"oauth_token"`
		BaseURL   string `mapstructure:"base_url"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"zoho"`
}

// HunterConfig drives the lead-discovery engine.
type HunterConfig struct {
	ProviderURL        string   `mapstructure:"provider_url"`
	Keys               []string `mapstructure:"keys"`
	MaxResults         int      `mapstructure:"max_results"`
	RequestDelayMs     int      `mapstructure:"request_delay_ms"`
	RequestTimeoutMs   int      `mapstructure:"request_timeout_ms"`
	PhonesPerItem      int      `mapstructure:"phones_per_item"`
	SummaryLimit       int      `mapstructure:"summary_limit"`
	NotesLimit         int      `mapstructure:"notes_limit"`
	DedupTTLHours      int      `mapstructure:"dedup_ttl_hours"`
	SummaryTTLHours    int      `mapstructure:"summary_ttl_hours"`
	MaxConcurrentHunts int      `mapstructure:"max_concurrent_hunts"`
	HuntTimeoutMs      int      `mapstructure:"hunt_timeout_ms"`
}

func (h HunterConfig) RequestDelay() time.Duration {
	return GetDuration(h.RequestDelayMs)
}

func (h HunterConfig) RequestTimeout() time.Duration {
	return GetDuration(h.RequestTimeoutMs)
}

func (h HunterConfig) HuntTimeout() time.Duration {
	return GetDuration(h.HuntTimeoutMs)
}

func (h HunterConfig) DedupTTL() time.Duration {
	return time.Duration(h.DedupTTLHours) * time.Hour
}

func (h HunterConfig) SummaryTTL() time.Duration {
	return time.Duration(h.SummaryTTLHours) * time.Hour
}

type HTTPConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

func (h HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Report is the outcome of checking a loaded config for missing pieces.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks the settings a working deployment needs. Unlike the
// structural checks done at load time, a failed Report does not stop the
// process: a hunt without keys fails softly.
func (c *Config) Validate() Report {
	r := Report{Errors: []string{}, Warnings: []string{}}

	if !c.Database.Postgres.Configured() {
		r.Errors = append(r.Errors, "database.postgres host, database and user are required")
	} else if c.Database.Postgres.SSLMode == "disable" && c.App.Environment == "production" {
		r.Warnings = append(r.Warnings, "database.postgres.sslmode should not be disable in production")
	}

	switch n := len(c.Hunter.Keys); {
	case n == 0:
		r.Errors = append(r.Errors, "SERPER_KEYS is required (comma-separated)")
	case n < 2:
		r.Warnings = append(r.Warnings, "more than one search key is recommended")
	}

	if !strings.HasPrefix(c.Hunter.ProviderURL, "https://") {
		r.Warnings = append(r.Warnings, "hunter.provider_url should start with https://")
	}
	if !c.Database.Redis.Configured() {
		r.Warnings = append(r.Warnings, "database.redis.address not set; cross-hunt deduplication disabled")
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// Status is the operator-facing configuration summary served on /status.
type Status struct {
	App                string   `json:"app"`
	Version            string   `json:"version"`
	Environment        string   `json:"environment"`
	DatabaseConfigured bool     `json:"database_configured"`
	SearchConfigured   bool     `json:"search_configured"`
	KeysCount          int      `json:"keys_count"`
	DedupEnabled       bool     `json:"dedup_enabled"`
	MirrorsEnabled     []string `json:"mirrors_enabled"`
	WorkerEnabled      bool     `json:"worker_enabled"`
	Valid              bool     `json:"valid"`
	Issues             []string `json:"issues"`
}

func (c *Config) Status() Status {
	report := c.Validate()

	mirrors := []string{}
	if c.Database.Elasticsearch.Configured() {
		mirrors = append(mirrors, "elasticsearch")
	}
	if c.Integrations.Zoho.Enabled {
		mirrors = append(mirrors, "zoho")
	}

	issues := make([]string, 0, len(report.Errors)+len(report.Warnings))
	issues = append(issues, report.Errors...)
	issues = append(issues, report.Warnings...)

	return Status{
		App:                c.App.Name,
		Version:            c.App.Version,
		Environment:        c.App.Environment,
		DatabaseConfigured: c.Database.Postgres.Configured(),
		SearchConfigured:   len(c.Hunter.Keys) > 0,
		KeysCount:          len(c.Hunter.Keys),
		DedupEnabled:       c.Database.Redis.Configured(),
		MirrorsEnabled:     mirrors,
		WorkerEnabled:      c.Camunda.Enabled() && IsWorkerEnabled(c, HuntWorkerName),
		Valid:              report.Valid,
		Issues:             issues,
	}
}
