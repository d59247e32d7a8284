// Package upload stores user-submitted files in an S3-compatible bucket.
package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Config holds the bucket connection settings. BaseEndpoint is optional and
// only needed for S3-compatible stores like MinIO.
type Config struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	// PublicBaseURL prefixes stored keys when building browse URLs
	PublicBaseURL string
}

// ObjectClient is the subset of the S3 API the store needs; the seam keeps
// tests off the network.
type ObjectClient interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store writes uploads under random keys that keep the original extension
type Store struct {
	config Config
	client ObjectClient
}

// New dials the bucket described by cfg
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("upload store requires a bucket", errors.CategoryInternal)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not configure object store")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{config: cfg, client: client}, nil
}

// NewWithClient builds a Store over an existing client
func NewWithClient(cfg Config, client ObjectClient) *Store {
	return &Store{config: cfg, client: client}
}

// StorageKey derives the key an upload lands under: a fresh UUID plus the
// original file extension, lower-cased.
func StorageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("uploads/%s%s", uuid.NewString(), ext)
}

// Put streams a file into the bucket and returns its key
func (s *Store) Put(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	key := StorageKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "could not store file")
	}

	return key, nil
}

// Delete removes a stored object; deleting a missing key is not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not delete file")
	}
	return nil
}

// URL resolves a stored key to a browse URL
func (s *Store) URL(key string) string {
	if key == "" {
		return ""
	}
	if s.config.PublicBaseURL != "" {
		return strings.TrimSuffix(s.config.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.Bucket, s.config.Region, key)
}
