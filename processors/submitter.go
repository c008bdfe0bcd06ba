package processors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"videoExplain/core"
)

// Remote readiness polling: fixed interval, hard deadline. Hitting the
// deadline is terminal for the attempt, never a retry trigger.
const (
	fileReadyPollInterval = 800 * time.Millisecond
	fileReadyMaxWait      = 120 * time.Second
)

// SubmitSegment pushes one segment to the remote file store. The MIME type
// comes from the extension lookup, never from content sniffing.
func SubmitSegment(ctx context.Context, cli AIClient, segPath string) (FileRef, error) {
	ref, err := cli.UploadFile(ctx, segPath, filepath.Base(segPath), MIMEForSegment(segPath))
	if err != nil {
		return FileRef{}, fmt.Errorf("upload segment %s: %w", filepath.Base(segPath), err)
	}
	return ref, nil
}

// AwaitFileReady polls the remote file until it is ready, it reports a
// terminal failure, or the deadline passes.
func AwaitFileReady(ctx context.Context, cli AIClient, ref FileRef, interval, maxWait time.Duration) (FileRef, error) {
	latest := ref
	refresh := func(ctx context.Context) (bool, error) {
		if latest.State == FileStateProcessing || latest.State == "" {
			var err error
			latest, err = cli.FileState(ctx, latest)
			if err != nil {
				return false, fmt.Errorf("poll remote file %s: %w", latest.ID, err)
			}
		}
		switch latest.State {
		case FileStateReady:
			return true, nil
		case FileStateFailed:
			if latest.StateMessage != "" {
				return false, fmt.Errorf("%w: %s", core.ErrFileProcessingFailed, latest.StateMessage)
			}
			return false, core.ErrFileProcessingFailed
		default:
			return false, nil
		}
	}
	if err := pollUntil(ctx, interval, maxWait, refresh); err != nil {
		if errors.Is(err, errPollDeadline) {
			return latest, core.ErrFileReadyTimeout
		}
		return latest, err
	}
	return latest, nil
}
