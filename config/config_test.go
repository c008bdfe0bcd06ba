package config

import (
	"strings"
	"testing"
)

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{
		ChunkThresholdBytes: 50 * 1024 * 1024,
		ChunkSizeBytes:      5 * 1024 * 1024,
		UploadProgressMax:   20,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := *cfg
	bad.ChunkSizeBytes = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero chunk size should be rejected")
	}

	bad = *cfg
	bad.UploadProgressMax = 100
	err := bad.Validate()
	if err == nil {
		t.Fatal("upload_progress_max=100 should be rejected")
	}
	if !strings.Contains(err.Error(), "upload_progress_max") {
		t.Errorf("error should name the field, got %v", err)
	}
}

func TestHasValidAPI(t *testing.T) {
	cfg := &Config{APIKey: "k", BaseURL: "https://api.example.com/v1"}
	if !cfg.HasValidAPI() {
		t.Error("key and base URL present should be valid")
	}
	cfg.APIKey = "  "
	if cfg.HasValidAPI() {
		t.Error("blank key should not be valid")
	}
}
