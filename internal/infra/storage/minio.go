package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/bryanwahyu/truthlens/internal/domain/files"
)

// MinioConfig for the object storage backend.
type MinioConfig struct {
	Endpoint   string
	Region     string
	BucketName string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	// Prefix is prepended to every object key, e.g. "uploads/".
	Prefix string
	// CacheDir holds local copies the extractor reads from.
	CacheDir string
	MaxSize  int64
}

// objectAPI is the part of *minio.Client the store uses.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStore keeps uploads in a bucket and mirrors them into a local cache.
type MinioStore struct {
	client     objectAPI
	bucketName string
	prefix     string
	cacheDir   string
	maxSize    int64
	log        *zap.Logger
}

// NewMinio buat koneksi MinIO
func NewMinio(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return newMinioStore(ctx, cli, cfg, logger)
}

func newMinioStore(ctx context.Context, cli objectAPI, cfg MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, err
		}
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "truthlens-cache")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = files.DefaultMaxSize
	}

	return &MinioStore{
		client:     cli,
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
		cacheDir:   cacheDir,
		maxSize:    maxSize,
		log:        logger,
	}, nil
}

// Save writes the upload to the local cache, enforcing the ceiling, then uploads it.
func (s *MinioStore) Save(ctx context.Context, id, filename string, r io.Reader) (string, error) {
	if !files.IsAllowed(filename) {
		return "", fmt.Errorf("%w: %s", files.ErrDisallowedType, filename)
	}
	if !validID(id) {
		return "", fmt.Errorf("invalid file id %q", id)
	}
	name := files.StoredName(id, filename)
	localPath := filepath.Join(s.cacheDir, name)
	if _, err := writeLimited(localPath, r, s.maxSize); err != nil {
		return "", err
	}

	_, err := s.client.FPutObject(ctx, s.bucketName, s.objectKey(name), localPath, minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		_ = os.Remove(localPath)
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return localPath, nil
}

// Resolve returns the cached copy, downloading it from the bucket when missing.
func (s *MinioStore) Resolve(ctx context.Context, id string) (string, error) {
	if p, err := globID(s.cacheDir, id); err == nil {
		return p, nil
	} else if !errors.Is(err, files.ErrNotFound) {
		return "", err
	}
	if !validID(id) {
		return "", fmt.Errorf("%w: %s", files.ErrNotFound, id)
	}

	key, err := s.findKey(ctx, id)
	if err != nil {
		return "", err
	}
	localPath := filepath.Join(s.cacheDir, path.Base(key))
	if err := s.client.FGetObject(ctx, s.bucketName, key, localPath, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	return localPath, nil
}

// Delete removes both the object and its cached copy.
func (s *MinioStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	deleted := false
	if p, err := globID(s.cacheDir, id); err == nil {
		if err := os.Remove(p); err != nil {
			s.log.Warn("failed to remove cached upload", zap.String("path", p), zap.Error(err))
		} else {
			deleted = true
		}
	}

	key, err := s.findKey(ctx, id)
	if errors.Is(err, files.ErrNotFound) {
		return deleted, nil
	}
	if err != nil {
		return deleted, err
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return deleted, err
	}
	return true, nil
}

// Release drops the cached copy of id. The object stays in the bucket.
func (s *MinioStore) Release(ctx context.Context, id string) error {
	p, err := globID(s.cacheDir, id)
	if errors.Is(err, files.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (s *MinioStore) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

func (s *MinioStore) findKey(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: s.objectKey(id + ".")}) {
		if obj.Err != nil {
			return "", obj.Err
		}
		return obj.Key, nil
	}
	return "", fmt.Errorf("%w: %s", files.ErrNotFound, id)
}

func (s *MinioStore) objectKey(name string) string {
	return strings.TrimLeft(s.prefix+name, "/")
}

// contentType sederhana berdasarkan ekstensi
func contentType(name string) string {
	switch files.Ext(name) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
