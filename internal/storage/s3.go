package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the part of the S3 client used here. *s3.Client satisfies it.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3ClientParams holds the connection settings for an S3 compatible store.
// Without an access key the default AWS credential chain is used.
type NewS3ClientParams struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client creates a path-style S3 client, which works with MinIO and
// other S3 compatible stores as well as AWS.
func NewS3Client(ctx context.Context, params NewS3ClientParams) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
	}
	if params.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(params.Endpoint))
	}
	if params.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// Bucket reads and writes graph artifacts in one bucket.
type Bucket struct {
	client ObjectAPI
	name   string
}

// NewBucket returns a Bucket for name backed by client.
func NewBucket(client ObjectAPI, name string) *Bucket {
	return &Bucket{client: client, name: name}
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".mmd":
		return "text/vnd.mermaid"
	case "":
		return "application/octet-stream"
	}
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// PutFile stores data under key. The content type is derived from the key's
// extension.
func (b *Bucket) PutFile(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	logger.Debug("[Storage] Uploaded object", "bucket", b.name, "key", key, "bytes", len(data))
	return nil
}

// GetFile returns the content stored under key.
func (b *Bucket) GetFile(ctx context.Context, key string) ([]byte, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from S3: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// PutGraph stores g as indented JSON under key.
func (b *Bucket) PutGraph(ctx context.Context, key string, g *common.Graph) error {
	data, err := common.MarshalGraph(g)
	if err != nil {
		return err
	}
	return b.PutFile(ctx, key, data)
}

// GetGraph loads and validates the graph stored under key.
func (b *Bucket) GetGraph(ctx context.Context, key string) (*common.Graph, error) {
	data, err := b.GetFile(ctx, key)
	if err != nil {
		return nil, err
	}
	return common.ReadGraph(bytes.NewReader(data))
}
