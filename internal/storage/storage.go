// Package storage keeps uploaded files (quotation attachments, delivery
// notes, supplier documents, company logos) in MinIO, falling back to a
// local directory when no endpoint is configured.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Hillarymukuka/Procurehub-sub000/internal/config"
)

// Store abstracts the object backend.
type Store interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	Delete(ctx context.Context, objectName string) error
}

// ObjectName builds a date-partitioned object key preserving the file
// extension.
func ObjectName(prefix, filename string) string {
	ext := filepath.Ext(filename)
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s/%s/%s%s", prefix, time.Now().Format("2006/01/02"), id, ext)
}

// New picks MinIO when an endpoint is configured, local disk otherwise.
func New(cfg config.MinIOConfig) (Store, error) {
	if cfg.Endpoint == "" {
		return NewLocalStore(cfg.LocalDir)
	}
	return NewMinIOStore(cfg)
}

// MinIOStore stores objects in a MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

func NewMinIOStore(cfg config.MinIOConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinIOStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinIOStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy, verify the object exists before handing it out.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

func (s *MinIOStore) Delete(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// LocalStore keeps objects under a base directory, for development and
// tests.
type LocalStore struct {
	base string
}

func NewLocalStore(base string) (*LocalStore, error) {
	if base == "" {
		base = "./uploads"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{base: base}, nil
}

func (s *LocalStore) path(objectName string) string {
	return filepath.Join(s.base, filepath.FromSlash(objectName))
}

func (s *LocalStore) Put(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	p := s.path(objectName)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, reader)
	return err
}

func (s *LocalStore) Get(_ context.Context, objectName string) (io.ReadCloser, error) {
	return os.Open(s.path(objectName))
}

func (s *LocalStore) Delete(_ context.Context, objectName string) error {
	return os.Remove(s.path(objectName))
}
