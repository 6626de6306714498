package gcp

import (
	"errors"
	"testing"
)

func TestResolveStorageConfig(t *testing.T) {
	cases := []struct {
		name         string
		mode         string
		emulator     string
		publicBase   string
		wantMode     StorageMode
		wantImplicit bool
		wantPublic   string
		wantCode     StorageConfigErrorCode
	}{
		{name: "default gcs", wantMode: StorageModeGCS},
		{name: "explicit gcs ignores emulator", mode: "gcs", emulator: "http://fake-gcs:4443", wantMode: StorageModeGCS},
		{name: "explicit emulator", mode: "GCS_EMULATOR", emulator: "http://fake-gcs:4443/", wantMode: StorageModeGCSEmulator, wantPublic: "http://fake-gcs:4443"},
		{name: "implicit emulator", emulator: "http://fake-gcs:4443", wantMode: StorageModeGCSEmulator, wantImplicit: true, wantPublic: "http://fake-gcs:4443"},
		{name: "public override", mode: "gcs_emulator", emulator: "http://fake-gcs:4443", publicBase: "http://localhost:4443/", wantMode: StorageModeGCSEmulator, wantPublic: "http://localhost:4443"},
		{name: "invalid mode", mode: "local", wantCode: StorageConfigErrorInvalidMode},
		{name: "missing emulator host", mode: "gcs_emulator", wantCode: StorageConfigErrorMissingEmulatorHost},
		{name: "relative emulator host", mode: "gcs_emulator", emulator: "fake-gcs:4443", wantCode: StorageConfigErrorInvalidURL},
		{name: "relative public base", publicBase: "localhost:4443", wantCode: StorageConfigErrorInvalidURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ResolveStorageConfig(tc.mode, tc.emulator, tc.publicBase)
			if tc.wantCode != "" {
				var cfgErr *StorageConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("want StorageConfigError, got %v", err)
				}
				if cfgErr.Code != tc.wantCode {
					t.Fatalf("code: want=%q got=%q", tc.wantCode, cfgErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveStorageConfig: %v", err)
			}
			if cfg.Mode != tc.wantMode {
				t.Fatalf("mode: want=%q got=%q", tc.wantMode, cfg.Mode)
			}
			if cfg.ImplicitEmulator != tc.wantImplicit {
				t.Fatalf("implicit: want=%v got=%v", tc.wantImplicit, cfg.ImplicitEmulator)
			}
			if cfg.PublicBaseURL != tc.wantPublic {
				t.Fatalf("public base: want=%q got=%q", tc.wantPublic, cfg.PublicBaseURL)
			}
		})
	}
}
