package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/grovekeep/grove/pkg/fsx"
)

// S3FileStore implements fsx.MediaStore on an S3 bucket.
type S3FileStore struct {
	client *s3.Client
	bucket string
	region string
	prefix string
}

// NewS3FileStore creates a store rooted at an optional key prefix.
func NewS3FileStore(client *s3.Client, bucket, region, prefix string) *S3FileStore {
	return &S3FileStore{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *S3FileStore) key(path string) string {
	path = strings.TrimLeft(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

// WriteFile uploads the bytes under the given path.
func (s *S3FileStore) WriteFile(ctx context.Context, path string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put %q: %w", path, err)
	}
	return nil
}

// ReadFile downloads the object body.
func (s *S3FileStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %q: %w", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %q: %w", path, err)
	}
	return data, nil
}

// Stat returns object metadata via HEAD.
func (s *S3FileStore) Stat(ctx context.Context, path string) (fsx.FileInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fsx.FileInfo{}, fmt.Errorf("s3 head %q: %w", path, err)
	}

	info := fsx.FileInfo{
		Name:     path[strings.LastIndex(path, "/")+1:],
		Metadata: out.Metadata,
	}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	return info, nil
}

// Exists reports whether the object is present.
func (s *S3FileStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %q: %w", path, err)
	}
	return true, nil
}

// DeleteFile removes the object.
func (s *S3FileStore) DeleteFile(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", path, err)
	}
	return nil
}

// Join joins path elements with forward slashes, the S3 key separator.
func (s *S3FileStore) Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}

// PublicURL returns the virtual-hosted-style URL of the object.
func (s *S3FileStore) PublicURL(path string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, s.key(path))
}

var _ fsx.MediaStore = (*S3FileStore)(nil)
