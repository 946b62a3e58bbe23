// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"doctor-ranking/internal/common/validation"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// APIS_PREDICTION_BASE_URL overrides apis.prediction.base_url and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional per-environment overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
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

// findProjectRoot walks up from the working directory looking for go.mod.
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
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally provided through plain env vars.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.Prediction.APIKey == "" {
		if val := os.Getenv("PREDICTION_API_KEY"); val != "" {
			cfg.APIs.Prediction.APIKey = val
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
	if cfg.Alerts.SNS.TopicARN == "" {
		if val := os.Getenv("TRIAGE_ALERT_TOPIC_ARN"); val != "" {
			cfg.Alerts.SNS.TopicARN = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "doctor-ranking"
	}

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
	if cfg.Database.Postgres.ConnMaxLifetime == 0 {
		cfg.Database.Postgres.ConnMaxLifetime = 300000
	}
	if cfg.Database.Postgres.PingTimeout == 0 {
		cfg.Database.Postgres.PingTimeout = 5000
	}
	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}
	if cfg.Database.Redis.Timeout == 0 {
		cfg.Database.Redis.Timeout = 3000
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL != "" {
		cfg.Database.Elasticsearch.Addresses = []string{cfg.Database.Elasticsearch.URL}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.APIs.Prediction.Path == "" {
		cfg.APIs.Prediction.Path = "/predict"
	}
	if cfg.APIs.Prediction.Timeout == 0 {
		cfg.APIs.Prediction.Timeout = 10000
	}

	if cfg.Directory.Index == "" {
		cfg.Directory.Index = "doctors"
	}
	if cfg.Directory.PerSpecialist == 0 {
		cfg.Directory.PerSpecialist = 5
	}
	if cfg.Directory.MaxResults == 0 {
		cfg.Directory.MaxResults = 15
	}
	if cfg.Directory.Timeout == 0 {
		cfg.Directory.Timeout = 10000
	}
	if cfg.Directory.RatingsCacheTTL == 0 {
		cfg.Directory.RatingsCacheTTL = 300
	}

	if cfg.Triage.ProfileStore == "" {
		cfg.Triage.ProfileStore = "redis"
	}
	if cfg.Triage.ProfileTTL == 0 {
		cfg.Triage.ProfileTTL = 30 * 24 * 3600
	}
	if cfg.Triage.SearchThreshold == 0 {
		cfg.Triage.SearchThreshold = 0.1
	}
	if cfg.Triage.MinDirectoryResults == 0 {
		cfg.Triage.MinDirectoryResults = 3
	}
	if cfg.Triage.MaxDoctors == 0 {
		cfg.Triage.MaxDoctors = 5
	}

	if cfg.Alerts.AWSRegion == "" {
		cfg.Alerts.AWSRegion = "us-east-1"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.APIs.Prediction.BaseURL == "" {
		return fmt.Errorf("apis.prediction.base_url is required")
	}

	switch cfg.Triage.ProfileStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("triage.profile_store must be memory or redis, got %q", cfg.Triage.ProfileStore)
	}

	if cfg.Triage.SearchThreshold < 0 || cfg.Triage.SearchThreshold > 1 {
		return fmt.Errorf("triage.search_threshold must be within [0,1]")
	}

	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when sns alerts are enabled")
	}
	if cfg.Alerts.Email.Enabled {
		if cfg.Alerts.Email.FromEmail == "" {
			return fmt.Errorf("alerts.email.from_email is required when email alerts are enabled")
		}
		for _, addr := range append([]string{cfg.Alerts.Email.FromEmail}, cfg.Alerts.Email.CareTeam...) {
			if !validation.ValidateEmail(addr) {
				return fmt.Errorf("alerts.email: invalid address %q", addr)
			}
		}
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
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
