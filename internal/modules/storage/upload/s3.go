package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/albedo-support/api/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploads in an S3-compatible bucket.
type S3Store struct {
	api     ObjectAPI
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Client builds an S3 client from static credentials. A custom
// endpoint targets S3-compatible services such as MinIO or R2.
func NewS3Client(cfg config.S3RuntimeConfig) *s3.Client {
	return s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		BaseEndpoint: optionalString(cfg.Endpoint),
		UsePathStyle: cfg.ForcePathStyle,
	})
}

func NewS3Store(api ObjectAPI, cfg config.S3RuntimeConfig) *S3Store {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		endpoint := strings.TrimRight(cfg.Endpoint, "/")
		switch {
		case endpoint != "":
			base = endpoint + "/" + cfg.Bucket
		default:
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{api: api, bucket: cfg.Bucket, prefix: prefix, baseURL: base}
}

func (s *S3Store) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.prefix + key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) (bool, error) {
	objectKey := aws.String(s.prefix + key)
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: objectKey})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s: %w", key, err)
	}
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: objectKey}); err != nil {
		return false, fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return true, nil
}

func (s *S3Store) URL(key string) string {
	return s.baseURL + "/" + s.prefix + key
}

func (s *S3Store) KeyFromURL(rawURL string) (string, bool) {
	base := s.baseURL + "/" + s.prefix
	if !strings.HasPrefix(rawURL, base) {
		return "", false
	}
	return cleanKey(strings.TrimPrefix(rawURL, base))
}

func optionalString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return aws.String(v)
}
