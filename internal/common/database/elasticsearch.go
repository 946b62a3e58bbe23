// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doctor-ranking/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchClient wraps the Elasticsearch client
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch creates a new Elasticsearch client
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}
	esCfg := elasticsearch.Config{
		Addresses: addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

// Ping tests the Elasticsearch connection
func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates the index with the given mapping when it does not exist yet.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index, mapping string) error {
	res, err := c.Client.Indices.Exists([]string{index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.Client.Indices.Create(index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}

// Info returns cluster information
func (c *ElasticsearchClient) Info(ctx context.Context) error {
	res, err := c.Client.Info(
		c.Client.Info.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch info error: %s", res.Status())
	}

	return nil
}
