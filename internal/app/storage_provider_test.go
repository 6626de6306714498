package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
)

func stubBucketService(t *testing.T, captured *gcp.Config, ret gcp.BucketService, retErr error) {
	t.Helper()
	orig := newBucketService
	t.Cleanup(func() {
		newBucketService = orig
	})
	newBucketService = func(_ context.Context, _ *logger.Logger, cfg gcp.Config) (gcp.BucketService, error) {
		if captured != nil {
			*captured = cfg
		}
		return ret, retErr
	}
}

func requireBootstrapCode(t *testing.T, err error, want StorageProviderBootstrapErrorCode) {
	t.Helper()
	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T (%v)", err, err)
	}
	if got.Code != want {
		t.Fatalf("code: want=%q got=%q", want, got.Code)
	}
}

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.StorageConfigError{Code: gcp.StorageConfigErrorInvalidMode, Value: "s3"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing emulator host", &gcp.StorageConfigError{Code: gcp.StorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid url", &gcp.StorageConfigError{Code: gcp.StorageConfigErrorInvalidURL, Value: "fake-gcs:4443"}, StorageProviderBootstrapErrorInvalidURL},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(gcp.StorageConfig{}, "gcs", tc.err)
			requireBootstrapCode(t, err, tc.want)
			if !errors.Is(err, tc.err) {
				t.Fatalf("classified error should wrap the cause")
			}
		})
	}
}

func TestResolveBucketServiceUnconfiguredIsDisabled(t *testing.T) {
	stubBucketService(t, nil, nil, errors.New("must not be called"))

	got, err := resolveBucketService(context.Background(), logger.Nop(), Config{})
	if err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if got != nil {
		t.Fatalf("bucket: want nil when storage is unconfigured")
	}
}

func TestResolveBucketServiceInvalidMode(t *testing.T) {
	stubBucketService(t, nil, nil, errors.New("must not be called"))

	_, err := resolveBucketService(context.Background(), logger.Nop(), Config{
		ObjectStorageMode: "s3",
		FilesBucketName:   "files",
	})
	requireBootstrapCode(t, err, StorageProviderBootstrapErrorInvalidMode)
}

func TestResolveBucketServiceGCSMode(t *testing.T) {
	var captured gcp.Config
	expected := &testBucketService{}
	stubBucketService(t, &captured, expected, nil)

	got, err := resolveBucketService(context.Background(), logger.Nop(), Config{
		ObjectStorageMode: "gcs",
		AvatarBucketName:  "quidz-avatars",
		AvatarCDNDomain:   "cdn.quidz.example",
		FilesBucketName:   "quidz-files",
	})
	if err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if got != expected {
		t.Fatalf("bucket: expected stub bucket instance")
	}
	if captured.Storage.Mode != gcp.StorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", gcp.StorageModeGCS, captured.Storage.Mode)
	}
	if captured.Avatar.Name != "quidz-avatars" || captured.Avatar.CDNDomain != "cdn.quidz.example" || captured.Files.Name != "quidz-files" {
		t.Fatalf("buckets not passed through: %+v", captured)
	}
}

func TestResolveBucketServiceImplicitEmulator(t *testing.T) {
	var captured gcp.Config
	stubBucketService(t, &captured, &testBucketService{}, nil)

	_, err := resolveBucketService(context.Background(), logger.Nop(), Config{
		StorageEmulatorHost: "http://fake-gcs:4443/",
		FilesBucketName:     "files",
		AvatarBucketName:    "avatars",
	})
	if err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if captured.Storage.Mode != gcp.StorageModeGCSEmulator || !captured.Storage.ImplicitEmulator {
		t.Fatalf("mode: want implicit emulator, got %+v", captured.Storage)
	}
	if captured.Storage.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got=%q", captured.Storage.EmulatorHost)
	}
}

func TestResolveBucketServiceEmulatorErrors(t *testing.T) {
	stubBucketService(t, nil, nil, errors.New("must not be called"))

	_, err := resolveBucketService(context.Background(), logger.Nop(), Config{
		ObjectStorageMode: string(gcp.StorageModeGCSEmulator),
	})
	requireBootstrapCode(t, err, StorageProviderBootstrapErrorMissingEmulatorHost)

	_, err = resolveBucketService(context.Background(), logger.Nop(), Config{
		ObjectStorageMode:   string(gcp.StorageModeGCSEmulator),
		StorageEmulatorHost: "not-a-url",
	})
	requireBootstrapCode(t, err, StorageProviderBootstrapErrorInvalidURL)
}

func TestResolveBucketServiceConnectFailed(t *testing.T) {
	stubBucketService(t, nil, nil, errors.New("dial tcp: connection refused"))

	_, err := resolveBucketService(context.Background(), logger.Nop(), Config{
		ObjectStorageMode: "gcs",
		AvatarBucketName:  "a",
		FilesBucketName:   "f",
	})
	requireBootstrapCode(t, err, StorageProviderBootstrapErrorConnectFailed)
}

type testBucketService struct{}

func (t *testBucketService) UploadFile(ctx context.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	return nil
}

func (t *testBucketService) DeleteFile(ctx context.Context, category gcp.BucketCategory, key string) error {
	return nil
}

func (t *testBucketService) DownloadFile(ctx context.Context, category gcp.BucketCategory, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (t *testBucketService) ListKeys(ctx context.Context, category gcp.BucketCategory, prefix string) ([]string, error) {
	return nil, nil
}

func (t *testBucketService) GetPublicURL(category gcp.BucketCategory, key string) string {
	return ""
}

func (t *testBucketService) Close() error { return nil }
