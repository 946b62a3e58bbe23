package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: doctors
    user: ranking
    password: ${TEST_DB_PASSWORD}
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
apis:
  prediction:
    base_url: http://127.0.0.1:8002
workers:
  rank-doctors:
    enabled: true
  submit-doctor-rating:
    enabled: false
    timeout: 5000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 300000, cfg.Database.Postgres.ConnMaxLifetime)
	assert.Equal(t, 5000, cfg.Database.Postgres.PingTimeout)
	assert.Equal(t, 10, cfg.Database.Redis.PoolSize)
	assert.Equal(t, 3000, cfg.Database.Redis.Timeout)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())

	assert.Equal(t, "/predict", cfg.APIs.Prediction.Path)
	assert.Equal(t, 10000, cfg.APIs.Prediction.Timeout)
	assert.Equal(t, "doctors", cfg.Directory.Index)
	assert.Equal(t, 5, cfg.Directory.PerSpecialist)

	assert.Equal(t, "redis", cfg.Triage.ProfileStore)
	assert.Equal(t, 0.1, cfg.Triage.SearchThreshold)
	assert.Equal(t, 3, cfg.Triage.MinDirectoryResults)
	assert.Equal(t, 5, cfg.Triage.MaxDoctors)
	assert.Equal(t, ":8080", cfg.Server.Address)

	rank := cfg.Workers["rank-doctors"]
	assert.True(t, rank.Enabled)
	assert.Equal(t, 5, rank.MaxJobsActive)
	assert.Equal(t, 30000, rank.Timeout)
	assert.Equal(t, 3, rank.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "submit-doctor-rating"))
	assert.Equal(t, 5000, GetWorkerConfig(cfg, "submit-doctor-rating").Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: x\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "missing prediction url",
			yaml: `
camunda: {broker_address: "x"}
database:
  postgres: {host: x, database: d, user: u}
  elasticsearch: {url: "http://es"}
  redis: {address: r}
`,
			wantErr: "apis.prediction.base_url is required",
		},
		{
			name: "unknown profile store",
			yaml: `
camunda: {broker_address: "x"}
database:
  postgres: {host: x, database: d, user: u}
  elasticsearch: {url: "http://es"}
  redis: {address: r}
apis:
  prediction: {base_url: "http://ml"}
triage:
  profile_store: dynamo
`,
			wantErr: "triage.profile_store",
		},
		{
			name: "sns without topic",
			yaml: `
camunda: {broker_address: "x"}
database:
  postgres: {host: x, database: d, user: u}
  elasticsearch: {url: "http://es"}
  redis: {address: r}
apis:
  prediction: {base_url: "http://ml"}
alerts:
  sns: {enabled: true}
`,
			wantErr: "alerts.sns.topic_arn",
		},
		{
			name: "malformed care team address",
			yaml: `
camunda: {broker_address: "x"}
database:
  postgres: {host: x, database: d, user: u}
  elasticsearch: {url: "http://es"}
  redis: {address: r}
apis:
  prediction: {base_url: "http://ml"}
alerts:
  email: {enabled: true, from_email: "triage@example.com", care_team: ["nurse-desk"]}
`,
			wantErr: `invalid address "nurse-desk"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_URLs(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "doctors", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=doctors sslmode=disable", p.GetDSN())
	assert.Equal(t, "postgres://u:p@db:5432/doctors?sslmode=disable", p.GetURL())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
