package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/quidz-backend/internal/pkg/logger"
	"github.com/yungbote/quidz-backend/internal/platform/gcp"
)

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidURL          StorageProviderBootstrapErrorCode = "invalid_url"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// storageConfigured reports whether any bucket setting is present. With none,
// uploads are disabled instead of failing startup.
func storageConfigured(cfg Config) bool {
	return strings.TrimSpace(cfg.AvatarBucketName) != "" ||
		strings.TrimSpace(cfg.FilesBucketName) != "" ||
		strings.TrimSpace(cfg.ObjectStorageMode) != ""
}

// resolveBucketService returns nil, nil when object storage is not configured.
// A partial or invalid configuration is an error.
func resolveBucketService(ctx context.Context, log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	if !storageConfigured(cfg) {
		log.Warn("Object storage not configured; uploads disabled")
		return nil, nil
	}

	storageCfg, err := gcp.ResolveStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost, cfg.StoragePublicBaseURL)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, cfg.ObjectStorageMode, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", cfg.ObjectStorageMode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"implicit_emulator", storageCfg.ImplicitEmulator,
		"emulator_host", storageCfg.EmulatorHost,
	)

	bucket, err := newBucketService(ctx, log, gcp.Config{
		Storage:     storageCfg,
		Credentials: cfg.GoogleCredentials,
		Avatar:      gcp.BucketConfig{Name: cfg.AvatarBucketName, CDNDomain: cfg.AvatarCDNDomain},
		Files:       gcp.BucketConfig{Name: cfg.FilesBucketName, CDNDomain: cfg.FilesCDNDomain},
	})
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, string(storageCfg.Mode), err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.StorageConfig, mode string, err error) error {
	out := &StorageProviderBootstrapError{
		Code:         StorageProviderBootstrapErrorConnectFailed,
		Mode:         mode,
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *gcp.StorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StorageConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
		case gcp.StorageConfigErrorMissingEmulatorHost:
			out.Code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.StorageConfigErrorInvalidURL:
			out.Code = StorageProviderBootstrapErrorInvalidURL
		}
	}
	return out
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
