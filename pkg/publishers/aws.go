package publishers

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves region and credentials for an AWS publisher.
func loadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}
	return awscfg.LoadDefaultConfig(ctx, opts...)
}

func endpointOverride(c AWSConfig) *string {
	if c.Endpoint == "" {
		return nil
	}
	return aws.String(c.Endpoint)
}
