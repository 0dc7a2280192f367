// Package archive stores raw CSV uploads in object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ContentTypeCSV is the content type stored with archived uploads.
const ContentTypeCSV = "text/csv"

// Archiver stores an uploaded file under key.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte, contentType string) error
}

// PutObjectAPI is the part of the S3 client the archiver needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 client. Endpoint is only needed for
// S3-compatible stores such as MinIO; static keys override the default
// credential chain.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Archiver writes uploads to an S3 bucket.
type S3Archiver struct {
	client PutObjectAPI
	bucket string
}

// NewS3Archiver builds an S3 client from opts.
func NewS3Archiver(ctx context.Context, opts Options) (*S3Archiver, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}

	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ArchiverWithClient(client, opts.Bucket), nil
}

// NewS3ArchiverWithClient wraps an existing client.
func NewS3ArchiverWithClient(client PutObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

// Archive uploads body to the bucket.
func (a *S3Archiver) Archive(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("archive: put %s: %w", key, err)
	}
	return nil
}

// Nop discards uploads. It is used when no bucket is configured.
type Nop struct{}

// Archive does nothing.
func (Nop) Archive(context.Context, string, []byte, string) error { return nil }

// UploadKey returns uploads/YYYY/MM/DD/<uuid>-<name> for an uploaded file.
func UploadKey(filename string, at time.Time) string {
	name := sanitize(filepath.Base(filename))
	if name == "" || name == "." || name == "/" {
		name = "upload.csv"
	}
	at = at.UTC()
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%s-%s", at.Year(), at.Month(), at.Day(), uuid.NewString(), name)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

// New returns an S3 archiver when a bucket is configured and Nop otherwise.
func New(ctx context.Context, opts Options) (Archiver, error) {
	if opts.Bucket == "" {
		return Nop{}, nil
	}
	return NewS3Archiver(ctx, opts)
}
