package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Storage.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage keeps one object per key under a bucket prefix.
//
// Subscribers see writes made through this S3Storage only; S3 has no change
// feed a page could listen to.
type S3Storage struct {
	client S3API
	bucket string
	prefix string
	events listenerSet[StorageEvent]
}

// NewS3Storage returns a Storage backed by bucket. prefix is prepended to
// every key, e.g. "usekit/".
func NewS3Storage(client S3API, bucket, prefix string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Storage) objectKey(key string) string {
	return s.prefix + key
}

// Get implements Storage.
func (s *S3Storage) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, fmt.Errorf("s3 read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Storage.
func (s *S3Storage) Set(ctx context.Context, key, value string) error {
	old, _, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %q: %w", key, err)
	}
	if old != value {
		s.events.emit(StorageEvent{Key: key, OldValue: old, NewValue: value})
	}
	return nil
}

// Remove implements Storage.
func (s *S3Storage) Remove(ctx context.Context, key string) error {
	old, existed, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	s.events.emit(StorageEvent{Key: key, OldValue: old, Removed: true})
	return nil
}

// Subscribe implements Storage.
func (s *S3Storage) Subscribe(fn func(StorageEvent)) func() {
	return s.events.add(fn)
}
