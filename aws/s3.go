// Package aws defines functions used to interact with the AWS API
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

type S3Client struct {
	C      *s3.Client
	Bucket string
}

// NewS3 builds a client for the replica bucket from the replica.* config keys.
// Any S3 compatible provider works when replica.endpoint is set
func NewS3(ctx context.Context) (*S3Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(viper.GetString("replica.region")),
	}

	// Fall back to the default credential chain when no static keys are configured
	if id := viper.GetString("replica.access_key_id"); id != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			id,
			viper.GetString("replica.secret_access_key"),
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config, %w", err)
	}

	bucket := viper.GetString("replica.bucket")
	endpoint := viper.GetString("replica.endpoint")

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}
