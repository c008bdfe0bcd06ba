package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNormalizeQuotaRetryIn(t *testing.T) {
	code, msg := NormalizeError(errors.New("429 too many requests, retry in 5s"), LangEN)
	if code != CodeQuotaExceeded {
		t.Fatalf("expected %s, got %s", CodeQuotaExceeded, code)
	}
	if !strings.Contains(msg, "5 seconds") {
		t.Errorf("message should mention the retry hint, got %q", msg)
	}
}

func TestNormalizeQuotaRetryPhraseOnly(t *testing.T) {
	// The retry phrase alone is a quota signal even without other keywords.
	code, _ := NormalizeError(errors.New("retry in 5s"), LangEN)
	if code != CodeQuotaExceeded {
		t.Fatalf("expected %s, got %s", CodeQuotaExceeded, code)
	}
}

func TestNormalizeQuotaStructuredRetryDelay(t *testing.T) {
	raw := `googleapi: Error 429: {"error":{"status":"RESOURCE_EXHAUSTED","details":[{"retryDelay":"7s"}]}}`
	code, msg := NormalizeError(errors.New(raw), LangEN)
	if code != CodeQuotaExceeded {
		t.Fatalf("expected %s, got %s", CodeQuotaExceeded, code)
	}
	if !strings.Contains(msg, "7 seconds") {
		t.Errorf("message should carry the structured delay, got %q", msg)
	}
}

func TestNormalizeQuotaFlooredAtOneSecond(t *testing.T) {
	_, msg := NormalizeError(errors.New("rate limit, retry in 0.2s"), LangEN)
	if !strings.Contains(msg, "1 second") {
		t.Errorf("sub-second hints should floor to 1, got %q", msg)
	}
}

func TestNormalizeFileTimeout(t *testing.T) {
	code, _ := NormalizeError(errors.New("Timed out waiting for ACTIVE"), LangEN)
	if code != CodeFileTimeout {
		t.Fatalf("expected %s, got %s", CodeFileTimeout, code)
	}
	code, _ = NormalizeError(fmt.Errorf("segment 2: %w", ErrFileReadyTimeout), LangEN)
	if code != CodeFileTimeout {
		t.Fatalf("expected %s for wrapped sentinel, got %s", CodeFileTimeout, code)
	}
}

func TestNormalizeFileFailed(t *testing.T) {
	code, _ := NormalizeError(fmt.Errorf("%w: unsupported codec", ErrFileProcessingFailed), LangJA)
	if code != CodeFileFailed {
		t.Fatalf("expected %s, got %s", CodeFileFailed, code)
	}
}

func TestNormalizeInternalFallback(t *testing.T) {
	raw := errors.New("dial tcp 10.0.0.1:443: connection refused")
	code, msg := NormalizeError(raw, LangEN)
	if code != CodeInternal {
		t.Fatalf("expected %s, got %s", CodeInternal, code)
	}
	if strings.Contains(msg, "10.0.0.1") {
		t.Errorf("internal detail must not leak to the client: %q", msg)
	}
	if msg != internalMessage(LangEN) {
		t.Errorf("expected the generic fallback, got %q", msg)
	}
}

func TestNormalizeLocalizedJapanese(t *testing.T) {
	_, msg := NormalizeError(errors.New("boom"), LangJA)
	if !strings.Contains(msg, "エラー") {
		t.Errorf("expected a Japanese message, got %q", msg)
	}
}
