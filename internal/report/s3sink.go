package report

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the subset of the S3 client the sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads reports as objects under bucket/prefix.
type S3Sink struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewS3Sink(client ObjectPutter, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// NewS3SinkFromEnv builds the client from the default AWS credential chain.
func NewS3SinkFromEnv(ctx context.Context, bucket, prefix string) (*S3Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Sink(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// ParseS3URL splits s3://bucket/some/prefix into its bucket and prefix.
func ParseS3URL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse s3 url: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 url %q", raw)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

// Prepare is a no-op: buckets are not created on demand.
func (s *S3Sink) Prepare(ctx context.Context) error {
	return nil
}

// Put uploads the report in a single PutObject call, which S3 applies
// atomically.
func (s *S3Sink) Put(ctx context.Context, name string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put s3 object %s: %w", s.key(name), err)
	}
	return nil
}

func (s *S3Sink) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func (s *S3Sink) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
