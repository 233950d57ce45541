package remotestate

import (
	"bytes"
	"context"
	"errors"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// ObjectAPI is the part of *s3.Client the backend uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 backend. Endpoint and PathStyle target
// S3-compatible stores such as MinIO; empty credentials fall back to the
// default AWS chain.
type S3Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// S3Backend keeps the document as one object.
type S3Backend struct {
	api    ObjectAPI
	bucket string
	key    string
}

// NewS3Backend builds an S3 client from cfg.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, ferrors.ConfigError("s3 bucket required").Build()
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, ferrors.ConfigError("failed to load AWS configuration").WithCause(err).Build()
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3BackendWithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewS3BackendWithClient wraps an existing client. An empty key defaults to "state.json".
func NewS3BackendWithClient(api ObjectAPI, bucket, key string) *S3Backend {
	if key == "" {
		key = "state.json"
	}
	return &S3Backend{api: api, bucket: bucket, key: key}
}

func (b *S3Backend) Name() string { return "s3" }

func (b *S3Backend) Load(ctx context.Context) ([]byte, bool, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{Bucket: &b.bucket, Key: &b.key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, false, nil
		}
		return nil, false, ferrors.StorageError("failed to read state object").
			WithCause(err).WithContext("bucket", b.bucket).WithContext("key", b.key).Build()
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, ferrors.StorageError("failed to read state object body").
			WithCause(err).WithContext("key", b.key).Build()
	}
	return data, true, nil
}

func (b *S3Backend) Save(ctx context.Context, data []byte) error {
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &b.bucket,
		Key:         &b.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return ferrors.StorageError("failed to write state object").
			WithCause(err).WithContext("bucket", b.bucket).WithContext("key", b.key).Build()
	}
	return nil
}
