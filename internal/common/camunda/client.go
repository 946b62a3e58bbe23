// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client and verifies the broker answers before use.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
}

// NewClient creates a plaintext client against address.
func NewClient(address string, connectionTimeout time.Duration) (*Client, error) {
	return NewClientWithConfig(&ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
		ConnectionTimeout:      connectionTimeout,
	})
}

// NewClientWithConfig creates the client and requests the broker topology once.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.ConnectionTimeout <= 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}
	if err := c.HealthCheck(context.Background()); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck requests the broker topology within the connection timeout.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		if IsTransient(err) {
			return fmt.Errorf("zeebe broker unavailable: %w", err)
		}
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// IsTransient reports whether err looks like a connectivity failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
