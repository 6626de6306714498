package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

type StorageConfig struct {
	Mode          StorageMode
	EmulatorHost  string
	PublicBaseURL string
	// ImplicitEmulator is set when the emulator was selected only because
	// STORAGE_EMULATOR_HOST was present.
	ImplicitEmulator bool
}

func (cfg StorageConfig) IsEmulator() bool { return cfg.Mode == StorageModeGCSEmulator }

type StorageConfigErrorCode string

const (
	StorageConfigErrorInvalidMode         StorageConfigErrorCode = "invalid_mode"
	StorageConfigErrorMissingEmulatorHost StorageConfigErrorCode = "missing_emulator_host"
	StorageConfigErrorInvalidURL          StorageConfigErrorCode = "invalid_url"
)

type StorageConfigError struct {
	Code  StorageConfigErrorCode
	Value string
	Cause error
}

func (e *StorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case StorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Value, StorageModeGCS, StorageModeGCSEmulator)
	case StorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", StorageModeGCSEmulator)
	case StorageConfigErrorInvalidURL:
		return fmt.Sprintf("invalid storage url %q; expected absolute URL like http://fake-gcs:4443", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *StorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveStorageConfig turns the raw settings into a validated config. An empty
// mode means gcs, or the emulator when an emulator host is given.
func ResolveStorageConfig(rawMode, emulatorHost, publicBaseURL string) (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost:  strings.TrimRight(strings.TrimSpace(emulatorHost), "/"),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
	switch StorageMode(strings.ToLower(strings.TrimSpace(rawMode))) {
	case "":
		cfg.Mode = StorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeGCSEmulator
			cfg.ImplicitEmulator = true
		}
	case StorageModeGCS:
		cfg.Mode = StorageModeGCS
	case StorageModeGCSEmulator:
		cfg.Mode = StorageModeGCSEmulator
	default:
		return cfg, &StorageConfigError{Code: StorageConfigErrorInvalidMode, Value: rawMode}
	}

	if cfg.PublicBaseURL != "" {
		if err := checkAbsoluteURL(cfg.PublicBaseURL); err != nil {
			return cfg, err
		}
	}
	if !cfg.IsEmulator() {
		return cfg, nil
	}
	if cfg.EmulatorHost == "" {
		return cfg, &StorageConfigError{Code: StorageConfigErrorMissingEmulatorHost}
	}
	if err := checkAbsoluteURL(cfg.EmulatorHost); err != nil {
		return cfg, err
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = cfg.EmulatorHost
	}
	return cfg, nil
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return &StorageConfigError{Code: StorageConfigErrorInvalidURL, Value: raw, Cause: err}
	}
	return nil
}
