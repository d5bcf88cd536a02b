// Package storage connects to the S3-compatible bucket that receives
// off-host copies of backup runs.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
)

// wasabiRegions are the regions Wasabi serves under s3.<region>.wasabisys.com.
var wasabiRegions = map[string]bool{
	"us-east-1":      true,
	"us-east-2":      true,
	"us-west-1":      true,
	"eu-central-1":   true,
	"eu-west-1":      true,
	"ap-northeast-1": true,
	"ap-southeast-1": true,
	"ap-southeast-2": true,
}

const wasabiFallbackRegion = "ap-southeast-1"

// BucketConfig addresses one backup bucket. Empty keys mean the default
// credential chain (env, shared config, instance role).
type BucketConfig struct {
	Provider        Provider
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// NewBucketConfig normalises the provider name; anything unrecognised is AWS.
func NewBucketConfig(provider, region, bucket, accessKey, secretKey string) BucketConfig {
	p := ProviderAWS
	if Provider(strings.ToLower(strings.TrimSpace(provider))) == ProviderWasabi {
		p = ProviderWasabi
	}
	return BucketConfig{
		Provider:        p,
		Region:          region,
		Bucket:          bucket,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
	}
}

// Endpoint is the base URL override for the provider, empty for AWS.
// Unsupported Wasabi regions use the Singapore endpoint.
func (c BucketConfig) Endpoint() string {
	if c.Provider != ProviderWasabi {
		return ""
	}
	region := c.Region
	if !wasabiRegions[region] {
		region = wasabiFallbackRegion
	}
	return "https://s3." + region + ".wasabisys.com"
}

// Connect builds the S3 client and confirms the bucket is listable.
func Connect(ctx context.Context, c BucketConfig) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := c.Endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			// Wasabi only supports path-style addressing
			o.UsePathStyle = true
		}
	})

	if _, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.Bucket),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return nil, fmt.Errorf("storage: bucket %s unreachable: %w", c.Bucket, err)
	}
	return client, nil
}
