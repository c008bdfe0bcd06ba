package core

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Stable analysis-phase error codes delivered to the client.
const (
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeFileTimeout   = "FILE_TIMEOUT"
	CodeFileFailed    = "FILE_FAILED"
	CodeInternal      = "INTERNAL"
)

// Sentinels for the remote-file lifecycle; the submitter wraps its failures
// with these so classification does not depend on message text alone.
var (
	ErrFileReadyTimeout     = errors.New("timed out waiting for remote file to become ready")
	ErrFileProcessingFailed = errors.New("remote file processing failed")
)

var (
	retryInRe    = regexp.MustCompile(`(?i)retry\s+(?:in|after)\s+(\d+(?:\.\d+)?)\s*s`)
	retryDelayRe = regexp.MustCompile(`(?i)"retryDelay"\s*:\s*"(\d+(?:\.\d+)?)s"`)
)

// NormalizeError classifies a raw pipeline failure into a stable code and a
// localized message safe to show verbatim. The raw error is never forwarded
// for INTERNAL failures; callers log it server-side.
func NormalizeError(err error, lang Lang) (code, message string) {
	if err == nil {
		return CodeInternal, internalMessage(lang)
	}
	msg := err.Error()

	if isQuotaExceeded(err, msg) {
		return CodeQuotaExceeded, quotaMessage(lang, retryAfterSeconds(msg))
	}
	if errors.Is(err, ErrFileReadyTimeout) || containsFold(msg, "timed out waiting") {
		return CodeFileTimeout, fileTimeoutMessage(lang)
	}
	if errors.Is(err, ErrFileProcessingFailed) || containsFold(msg, "processing failed") {
		return CodeFileFailed, fileFailedMessage(lang)
	}
	return CodeInternal, internalMessage(lang)
}

func isQuotaExceeded(err error, msg string) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return true
	}
	return containsFold(msg, "resource_exhausted") ||
		containsFold(msg, "quota") ||
		containsFold(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		retryInRe.MatchString(msg) ||
		retryDelayRe.MatchString(msg)
}

// retryAfterSeconds extracts a retry hint from either a structured
// retryDelay field embedded in the payload or a "retry in Ns" phrase.
// Hints are floored at one second and rounded up.
func retryAfterSeconds(msg string) int {
	for _, re := range []*regexp.Regexp{retryDelayRe, retryInRe} {
		if m := re.FindStringSubmatch(msg); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				sec := int(math.Ceil(v))
				if sec < 1 {
					sec = 1
				}
				return sec
			}
		}
	}
	return 0
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func quotaMessage(lang Lang, retrySec int) string {
	if lang == LangJA {
		if retrySec > 0 {
			return fmt.Sprintf("利用上限に達しました。約%d秒後に再試行してください。", retrySec)
		}
		return "利用上限に達しました。しばらくしてから再試行してください。"
	}
	if retrySec > 0 {
		return fmt.Sprintf("Quota exceeded. Please retry in about %d seconds.", retrySec)
	}
	return "Quota exceeded. Please retry later."
}

func fileTimeoutMessage(lang Lang) string {
	if lang == LangJA {
		return "動画の処理がタイムアウトしました。もう一度お試しください。"
	}
	return "Timed out while preparing the video. Please try again."
}

func fileFailedMessage(lang Lang) string {
	if lang == LangJA {
		return "動画の処理に失敗しました。別のファイルでお試しください。"
	}
	return "The video could not be processed. Please try a different file."
}

func internalMessage(lang Lang) string {
	if lang == LangJA {
		return "解析中にエラーが発生しました。もう一度お試しください。"
	}
	return "Something went wrong during analysis. Please try again."
}
