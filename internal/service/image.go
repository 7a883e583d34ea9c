package service

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStorage persists uploaded recipe images and returns a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, filename string, body io.Reader, contentType string) (string, error)
}

// S3ImageStorage stores recipe images in an S3 bucket.
type S3ImageStorage struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3ImageStorage creates an S3-backed image store using the default AWS
// credential chain.
func NewS3ImageStorage(ctx context.Context, bucket, region string) (*S3ImageStorage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3ImageStorage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Upload writes the image under a fresh key and returns its URL.
func (s *S3ImageStorage) Upload(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("recipes/%s%s", uuid.NewString(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
