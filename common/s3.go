package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"redditinsights/config"
)

// SnapshotObject is the object name of the dataset snapshot under the configured prefix
const SnapshotObject = "data.json"

// S3 publishes dataset snapshots to a bucket
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates a client using the default AWS configuration chain with overrides from cfg.
// Returns nil without error when no bucket is configured.
func NewS3(ctx context.Context, cfg config.S3) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3{client: c, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// SnapshotKey returns the object key the snapshot is written to
func (s *S3) SnapshotKey() string {
	return s.prefix + SnapshotObject
}

// Location describes where snapshots go, for logs
func (s *S3) Location() string {
	return "s3://" + s.bucket + "/" + s.SnapshotKey()
}

// PutSnapshot uploads the encoded dataset snapshot with a short cache lifetime
func (s *S3) PutSnapshot(ctx context.Context, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.SnapshotKey()),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=60"),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to %s: %w", s.Location(), err)
	}
	return nil
}

// SnapshotExists reports whether a snapshot object is present (HeadObject 200); false on 404/NotFound
func (s *S3) SnapshotExists(ctx context.Context) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.SnapshotKey()),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func isNotFound(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return true
	}
	return false
}
