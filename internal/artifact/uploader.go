package artifact

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadConfig configures the report uploader. Endpoint and static
// credentials make it work against R2/MinIO-style S3-compatible stores
// as well as S3 itself.
type UploadConfig struct {
	Bucket        string
	Endpoint      string
	Region        string
	PublicBaseURL string
	AccessKey     string
	SecretKey     string
}

// Uploader pushes rendered reports to an S3-compatible bucket and hands
// back a public URL usable as a Notion external file reference.
type Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewUploader builds an Uploader from config.
func NewUploader(ctx context.Context, cfg UploadConfig) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("upload bucket is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("upload public base URL is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores the report under key and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	contentType := "application/pdf"
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading report %s: %w", key, err)
	}
	return u.baseURL + "/" + key, nil
}
