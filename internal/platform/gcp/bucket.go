package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
)

type BucketCategory string

const (
	BucketCategoryAvatar     BucketCategory = "avatar"
	BucketCategoryDocument   BucketCategory = "document"
	BucketCategoryProject    BucketCategory = "project"
	BucketCategorySkillProof BucketCategory = "skill_proof"
	BucketCategoryTask       BucketCategory = "task"
)

// Avatars live in their own bucket; every other category shares the file
// bucket under a category prefix.
type BucketConfig struct {
	Name      string
	CDNDomain string
}

type Config struct {
	Storage     StorageConfig
	Credentials string
	Avatar      BucketConfig
	Files       BucketConfig
}

type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error)
	GetPublicURL(category BucketCategory, key string) string
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	storageMode   StorageMode
	avatarBucket  BucketConfig
	filesBucket   BucketConfig
	publicBaseURL string
}

func NewBucketService(ctx context.Context, log *logger.Logger, cfg Config) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")
	if strings.TrimSpace(cfg.Avatar.Name) == "" {
		return nil, fmt.Errorf("missing avatar bucket name")
	}
	if strings.TrimSpace(cfg.Files.Name) == "" {
		return nil, fmt.Errorf("missing files bucket name")
	}

	stClient, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Storage.Mode,
		"implicit_emulator", cfg.Storage.ImplicitEmulator,
		"public_base_url", cfg.Storage.PublicBaseURL,
		"avatar_bucket", cfg.Avatar.Name,
		"files_bucket", cfg.Files.Name,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		storageMode:   cfg.Storage.Mode,
		avatarBucket:  cfg.Avatar,
		filesBucket:   cfg.Files,
		publicBaseURL: cfg.Storage.PublicBaseURL,
	}, nil
}

func newStorageClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	switch cfg.Storage.Mode {
	case StorageModeGCS:
		opts := CredentialOptions(cfg.Credentials)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case StorageModeGCSEmulator:
		// The storage client picks the emulator up from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.Storage.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &StorageConfigError{Code: StorageConfigErrorInvalidMode, Value: string(cfg.Storage.Mode)}
	}
}

// objectName maps a category-relative key to the bucket and object name.
func (bs *bucketService) objectName(category BucketCategory, key string) (BucketConfig, string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return BucketConfig{}, "", fmt.Errorf("empty object key")
	}
	switch category {
	case BucketCategoryAvatar:
		return bs.avatarBucket, key, nil
	case BucketCategoryDocument, BucketCategoryProject, BucketCategorySkillProof, BucketCategoryTask:
		return bs.filesBucket, path.Join(string(category), key), nil
	default:
		return BucketConfig{}, "", fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, name, err := bs.objectName(category, key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.Name).Object(name).NewWriter(ctx)
	if ct := ContentTypeForKey(name); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	cfg, name, err := bs.objectName(category, key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.Name).Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", name, cfg.Name, err)
	}
	return nil
}

// readCloserWithCancel keeps the download context alive until the caller
// closes the reader.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, name, err := bs.objectName(category, key)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := bs.storageClient.Bucket(cfg.Name).Object(name).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error) {
	cfg, name, err := bs.objectName(category, path.Join(prefix, "x"))
	if err != nil {
		return nil, err
	}
	objPrefix := strings.TrimSuffix(name, "x")
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := bs.storageClient.Bucket(cfg.Name).Objects(ctx, &storage.Query{Prefix: objPrefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, name, err := bs.objectName(category, key)
	if err != nil {
		return key
	}
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, name)
	}
	if bs.storageMode == StorageModeGCSEmulator && bs.publicBaseURL != "" {
		return fmt.Sprintf(
			"%s/storage/v1/b/%s/o/%s?alt=media",
			bs.publicBaseURL,
			url.PathEscape(cfg.Name),
			url.PathEscape(name),
		)
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.Name, name)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Name, name)
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.storageClient == nil {
		return nil
	}
	return bs.storageClient.Close()
}

// ContentTypeForKey guesses the content type from the key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch path.Ext(s) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".csv":
		return "text/csv"
	default:
		return ""
	}
}
