package report

import (
	"context"
	"fmt"

	"github.com/yuya-takeyama/dupsweep/pkg/s3client"
)

// Upload stores the JSON report under the prefix of uri as <id>.json and
// returns the object URI.
func Upload(ctx context.Context, client s3client.Client, uri string, r *Report) (string, error) {
	bucket, prefix, err := s3client.ParseS3URI(uri)
	if err != nil {
		return "", err
	}

	data, err := r.Encode(FormatJSON)
	if err != nil {
		return "", err
	}

	key := prefix + r.ID + ".json"
	if err := client.PutObject(ctx, &s3client.PutObjectRequest{
		Bucket:      bucket,
		Key:         key,
		Body:        data,
		ContentType: "application/json",
	}); err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
