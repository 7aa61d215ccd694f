package s3client

import (
	"context"
	"fmt"
	"strings"
)

type PutObjectRequest struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
}

// Client stores objects in S3
type Client interface {
	PutObject(ctx context.Context, req *PutObjectRequest) error
}

// ParseS3URI splits s3://bucket/prefix into its bucket and a prefix that is
// empty or ends with a slash.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("invalid S3 URI %q: scheme must be s3://", uri)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing bucket name", uri)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return bucket, prefix, nil
}
