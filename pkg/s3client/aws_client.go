package s3client

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// AWSClient uploads objects through the S3 upload manager with retries
type AWSClient struct {
	uploader uploader
	retry    retryPolicy
}

func NewAWSClient(cfg aws.Config) *AWSClient {
	return &AWSClient{
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
		retry:    defaultRetryPolicy,
	}
}

func (c *AWSClient) PutObject(ctx context.Context, req *PutObjectRequest) error {
	err := c.retry.do(ctx, func(ctx context.Context) error {
		// A fresh reader per attempt, so a retry resends the whole body
		input := &s3.PutObjectInput{
			Bucket: aws.String(req.Bucket),
			Key:    aws.String(req.Key),
			Body:   bytes.NewReader(req.Body),
		}
		if req.ContentType != "" {
			input.ContentType = aws.String(req.ContentType)
		}
		_, err := c.uploader.Upload(ctx, input)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", req.Bucket, req.Key, err)
	}
	return nil
}
