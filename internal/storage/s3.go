// Package storage keeps original résumé uploads in S3-compatible object storage (AWS S3, Cloudflare R2, MinIO).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/jonathan/resume-reader/internal/config"
	"github.com/jonathan/resume-reader/internal/store"
)

const (
	keyPrefix        = "resumes/"
	fileNameMetadata = "filename"
)

// ObjectAPI is the subset of *s3.Client used by S3Store.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store implements store.BlobStore on an S3 bucket.
type S3Store struct {
	client ObjectAPI
	bucket string
}

var _ store.BlobStore = (*S3Store)(nil)

// NewS3Store builds a client from static credentials. Region defaults to "auto" for R2.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := cfg.ResolvedEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, cfg.Bucket), nil
}

// NewS3StoreWithClient wraps an existing client.
func NewS3StoreWithClient(client ObjectAPI, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Store uploads data under a fresh key and returns the blob ID.
func (s *S3Store) Store(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if contentType == "" {
		contentType = store.ContentTypeFor(filename)
	}

	id := uuid.New().String()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(keyPrefix + id),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata:      map[string]string{fileNameMetadata: url.QueryEscape(filename)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return id, nil
}

// Fetch opens the object for blobID. The caller closes Body.
func (s *S3Store) Fetch(ctx context.Context, blobID string) (*store.Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + blobID),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, store.ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	blob := &store.Blob{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		FileName:    metadataFileName(out.Metadata),
		Size:        aws.ToInt64(out.ContentLength),
	}
	if blob.ContentType == "" {
		blob.ContentType = store.ContentTypeFor(blob.FileName)
	}
	return blob, nil
}

// metadataFileName decodes the filename stored in object metadata, which must be US-ASCII.
func metadataFileName(metadata map[string]string) string {
	raw := metadata[fileNameMetadata]
	name, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return name
}
