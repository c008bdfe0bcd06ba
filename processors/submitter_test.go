package processors

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"videoExplain/core"
)

func TestAwaitFileReadyEventuallyReady(t *testing.T) {
	ai := &fakeAI{stateSequence: []FileState{FileStateProcessing, FileStateProcessing, FileStateReady}}
	ref := FileRef{ID: "f1", State: FileStateProcessing}
	got, err := AwaitFileReady(context.Background(), ai, ref, time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("AwaitFileReady: %v", err)
	}
	if got.State != FileStateReady {
		t.Errorf("expected ready, got %s", got.State)
	}
}

func TestAwaitFileReadyAlreadyReadySkipsPolling(t *testing.T) {
	ai := &fakeAI{stateSequence: []FileState{FileStateFailed}} // would fail if polled
	ref := FileRef{ID: "f1", State: FileStateReady}
	if _, err := AwaitFileReady(context.Background(), ai, ref, time.Millisecond, time.Second); err != nil {
		t.Fatalf("an already-ready file must not be polled: %v", err)
	}
	if ai.stateIdx != 0 {
		t.Errorf("expected zero state fetches, got %d", ai.stateIdx)
	}
}

func TestAwaitFileReadyTerminalFailure(t *testing.T) {
	ai := &fakeAI{stateSequence: []FileState{FileStateFailed}, stateMessage: "unsupported codec"}
	ref := FileRef{ID: "f1", State: FileStateProcessing}
	start := time.Now()
	_, err := AwaitFileReady(context.Background(), ai, ref, 50*time.Millisecond, 10*time.Second)
	if !errors.Is(err, core.ErrFileProcessingFailed) {
		t.Fatalf("expected processing-failed, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported codec") {
		t.Errorf("remote message should be carried, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("terminal failure must stop polling immediately")
	}
}

func TestAwaitFileReadyTimesOut(t *testing.T) {
	ai := &fakeAI{stateSequence: []FileState{FileStateProcessing}}
	ref := FileRef{ID: "f1", State: FileStateProcessing}
	_, err := AwaitFileReady(context.Background(), ai, ref, time.Millisecond, 20*time.Millisecond)
	if !errors.Is(err, core.ErrFileReadyTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestAwaitFileReadyContextCancel(t *testing.T) {
	ai := &fakeAI{stateSequence: []FileState{FileStateProcessing}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := AwaitFileReady(ctx, ai, FileRef{ID: "f1", State: FileStateProcessing}, time.Hour, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestSubmitSegmentUsesExtensionMIME(t *testing.T) {
	ai := &fakeAI{}
	if _, err := SubmitSegment(context.Background(), ai, "/tmp/seg/part_000.webm"); err != nil {
		t.Fatalf("SubmitSegment: %v", err)
	}
	if len(ai.mimes) != 1 || ai.mimes[0] != "video/webm" {
		t.Errorf("expected video/webm from extension lookup, got %v", ai.mimes)
	}
}
