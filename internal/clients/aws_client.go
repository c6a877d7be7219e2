package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spacesedan/transcriptflow/config"
)

// AWSClients holds the SDK clients built from one aws.Config. Endpoint is
// only set when pointing at a local emulator.
type AWSClients struct {
	Config     aws.Config
	S3         *s3.Client
	Comprehend *comprehend.Client
	DynamoDB   *dynamodb.Client
	endpoint   string
}

func LoadAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	slog.Info("[AWSClient] Initializing AWS Config...",
		slog.String("region", cfg.Region))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		slog.Error("[AWSClient] Failed to load AWS config",
			slog.String("error", err.Error()))
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	slog.Info("[AWSClient] AWS Config Initialized")
	return awsCfg, nil
}

func NewAWSClients(ctx context.Context, cfg config.Config) (*AWSClients, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &AWSClients{Config: awsCfg, endpoint: cfg.AWSEndpoint}
	c.S3 = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
			o.UsePathStyle = true
		}
	})
	c.Comprehend = comprehend.NewFromConfig(awsCfg, func(o *comprehend.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})
	c.DynamoDB = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
	})

	return c, nil
}
