package s3

import (
	"ai-concierge/config"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	s3_config "github.com/aws/aws-sdk-go-v2/config"
	s3_credentials "github.com/aws/aws-sdk-go-v2/credentials"
	s3_provider "github.com/aws/aws-sdk-go-v2/service/s3"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

// NewClient builds an S3 client for AWS or an S3-compatible endpoint such as MinIO.
func NewClient(ctx context.Context, o Options) (*s3_provider.Client, error) {
	region := o.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*s3_config.LoadOptions) error{
		s3_config.WithRegion(region),
	}
	if o.AccessKey != "" && o.SecretKey != "" {
		opts = append(opts, s3_config.WithCredentialsProvider(
			s3_credentials.NewStaticCredentialsProvider(
				o.AccessKey,
				o.SecretKey,
				"",
			),
		))
	}

	cfg, err := s3_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	endpoint := o.Endpoint
	client := s3_provider.NewFromConfig(cfg, func(so *s3_provider.Options) {
		so.UsePathStyle = true
		if endpoint != "" {
			so.BaseEndpoint = aws.String(endpoint) // e.g., http://localhost:9000
		}
	})
	return client, nil
}

// GetClient builds a client from config.Cfg.S3.
func GetClient(ctx context.Context) (*s3_provider.Client, error) {
	s3cfg := config.Cfg.S3
	return NewClient(ctx, Options{
		Endpoint:  s3cfg.Endpoint,
		AccessKey: s3cfg.AccessKey,
		SecretKey: s3cfg.SecretKey,
		Region:    s3cfg.Region,
	})
}
