// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	APIs      APIsConfig              `mapstructure:"apis"`
	Directory DirectoryConfig         `mapstructure:"directory"`
	Triage    TriageConfig            `mapstructure:"triage"`
	Alerts    AlertsConfig            `mapstructure:"alerts"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Server    ServerConfig            `mapstructure:"server"`
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
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`

	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"` // milliseconds
	PingTimeout     int `mapstructure:"ping_timeout"`      // milliseconds
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// GetURL returns the connection string in URL form, as golang-migrate expects it.
func (p PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds, per command and ping
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Configuration ---

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	Prediction struct {
		BaseURL string `mapstructure:"base_url"`
		Path    string `mapstructure:"path"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"prediction"`
}

// DirectoryConfig holds settings for the Elasticsearch-backed doctor directory.
type DirectoryConfig struct {
	Index           string `mapstructure:"index"`
	PerSpecialist   int    `mapstructure:"per_specialist"`
	MaxResults      int    `mapstructure:"max_results"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
	RatingsCacheTTL int    `mapstructure:"ratings_cache_ttl"` // seconds
}

// TriageConfig holds settings for the ranking pipeline.
type TriageConfig struct {
	KnowledgeBasePath   string  `mapstructure:"knowledge_base_path"`
	DoctorPoolPath      string  `mapstructure:"doctor_pool_path"`
	ProfileStore        string  `mapstructure:"profile_store"` // memory | redis
	ProfileTTL          int     `mapstructure:"profile_ttl"`   // seconds
	SearchThreshold     float64 `mapstructure:"search_threshold"`
	MinDirectoryResults int     `mapstructure:"min_directory_results"`
	MaxDoctors          int     `mapstructure:"max_doctors"`
	AlertOnUrgent       bool    `mapstructure:"alert_on_urgent"`
}

// AlertsConfig holds settings for the send-triage-alert worker.
type AlertsConfig struct {
	AWSRegion string `mapstructure:"aws_region"`
	Email     struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		CareTeam  []string `mapstructure:"care_team"`
	} `mapstructure:"email"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig holds the health/metrics listener settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}
