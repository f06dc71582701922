// internal/common/aws/clients.go

// Package aws wraps the SES and SNS clients behind the notification
// delivery channels.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SESClient sends match digest emails.
type SESClient struct {
	client *ses.Client
}

// SNSClient delivers short match alerts by SMS.
type SNSClient struct {
	client *sns.Client
}

func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := load(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

func NewSNSClient(ctx context.Context, region string) (*SNSClient, error) {
	cfg, err := load(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg)}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

func (s *SNSClient) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	return s.client.Publish(ctx, input)
}

func load(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		return aws.Config{}, fmt.Errorf("aws region is required for notification delivery")
	}
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}
