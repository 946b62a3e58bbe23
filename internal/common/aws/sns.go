// internal/common/aws/sns.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient publishes alerts to the urgent-care topic.
type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg aws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}
