// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// LoadConfig resolves credentials from the default chain for region.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

// SESClient sends the care-team alert emails.
type SESClient struct {
	client *ses.Client
}

func NewSESClient(cfg aws.Config) *SESClient {
	return &SESClient{client: ses.NewFromConfig(cfg)}
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}
