package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doctor-ranking/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_Ping(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		wantErr string
	}{
		{"reachable", nil, ""},
		{"down", errors.New("connection refused"), "postgres db:5432/doctors unreachable: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			client := newPostgresClient(db, "db:5432/doctors", 0)
			defer client.Close()

			mock.ExpectPing().WillReturnError(tt.pingErr)

			err = client.Ping(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
			assert.Equal(t, 5*time.Second, client.pingTimeout)
			assert.Same(t, db, client.GetDB())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewPostgres_PoolSettings(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, Database: "doctors", User: "u", SSLMode: "disable",
		MaxConnections: 4, MaxIdle: 10, PingTimeout: 250,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 4, client.DB.Stats().MaxOpenConnections)
	assert.Equal(t, 250*time.Millisecond, client.pingTimeout)
	assert.Equal(t, "localhost:5432/doctors", client.target)
}

func TestRedisClient_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr(), PoolSize: 8, Timeout: 500})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 500*time.Millisecond, client.timeout)
	assert.Equal(t, 8, client.GetClient().Options().PoolSize)
	assert.Equal(t, 2, client.GetClient().Options().MinIdleConns)
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.ErrorContains(t, client.Ping(context.Background()), "redis ping failed")
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.EqualError(t, err, "redis address is required")
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = true
			w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.EnsureIndex(context.Background(), "doctors", `{"mappings":{}}`))
	assert.True(t, created)
}
