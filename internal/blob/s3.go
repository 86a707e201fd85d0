// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// S3 stores uploads in a bucket.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 loads the AWS configuration. Static credentials are used when both
// keys are configured; otherwise the default chain (environment, shared
// config, instance role) applies.
func NewS3(ctx context.Context, cfg types.UploadConfig) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket not set", errs.ErrInvalidInput)
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3{client: s3.NewFromConfig(awsCfg), bucket: cfg.S3Bucket}, nil
}

// Upload puts data into the bucket.
func (s *S3) Upload(ctx context.Context, id uuid.UUID, filename string, data io.Reader) (string, error) {
	key := Key(id, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(ContentType(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to S3: %w", key, err)
	}
	return key, nil
}

// Download fetches an object.
func (s *S3) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("upload %s: %w", key, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("downloading %s from S3: %w", key, err)
	}
	return out.Body, nil
}

// Delete removes an object. S3 does not report missing keys on delete.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s from S3: %w", key, err)
	}
	return nil
}
