package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/filedepot/filedepot/pkg/types"
)

// S3Backend implements the Backend interface for S3-compatible storage.
// No public URL is configured for S3 buckets, so downloads always return
// a byte stream regardless of preferStream.
type S3Backend struct {
	client *s3.Client
	bucket string
}

// NewS3Backend creates a new S3 backend
func NewS3Backend(opts types.S3StorageOpts) (*S3Backend, error) {
	ctx := context.Background()

	var cfg aws.Config
	var err error

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		// Use static credentials
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(opts.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				opts.AccessKeyID,
				opts.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(opts.Region),
		)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with custom endpoint if provided
	var clientOpts []func(*s3.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // Required for MinIO and similar services
		})
	}

	return &S3Backend{
		client: s3.NewFromConfig(cfg, clientOpts...),
		bucket: opts.Bucket,
	}, nil
}

// UploadFile stores the bytes read from data under name.
// The source is drained into memory before the object is put.
func (s *S3Backend) UploadFile(ctx context.Context, name string, data io.Reader) (types.RemoteFile, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return types.RemoteFile{}, storageError("upload "+name, fmt.Errorf("failed to read source: %w", err))
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return types.RemoteFile{}, storageError("upload "+name, err)
	}

	return types.S3File(name), nil
}

// DeleteFile removes the object stored under name
func (s *S3Backend) DeleteFile(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return storageError("delete "+name, err)
	}
	return nil
}

// DeleteFileDB removes the object behind a persisted reference
func (s *S3Backend) DeleteFileDB(ctx context.Context, file types.RemoteFile) error {
	if file.Backend != types.BackendS3 {
		return storageError("delete", ErrUnknownReference)
	}
	return s.DeleteFile(ctx, file.Key)
}

// DownloadFile fetches the object stored under name as a stream
func (s *S3Backend) DownloadFile(ctx context.Context, name string, preferStream bool) (*Download, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, storageError("download "+name, err)
	}
	return &Download{Body: result.Body}, nil
}

// DownloadFileDB fetches the object behind a persisted reference
func (s *S3Backend) DownloadFileDB(ctx context.Context, file types.RemoteFile, preferStream bool) (*Download, error) {
	if file.Backend != types.BackendS3 {
		return nil, storageError("download", ErrUnknownReference)
	}
	return s.DownloadFile(ctx, file.Key, preferStream)
}

// MakeDBReference builds the persistable reference for name. No I/O.
func (s *S3Backend) MakeDBReference(name string) types.RemoteFile {
	return types.S3File(name)
}

// Close cleans up any resources
func (s *S3Backend) Close() error {
	// No cleanup needed for the S3 backend
	return nil
}
