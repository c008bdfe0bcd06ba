package core

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %q", sc.Text())
		}
		events = append(events, ev)
	}
	return events
}

func TestEmitterMonotonicProgress(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf)
	em.Progress(PhaseUpload, 10, "uploading", 0, 0)
	em.Progress(PhaseGenerate, 25, "segment 1/2", 0, 2)
	em.Progress(PhaseGenerate, 5, "regression attempt", 0, 2)
	em.Delta(30, "x", 0, 2)
	em.Done("x", nil)

	events := decodeLines(t, &buf)
	last := -1
	for _, ev := range events {
		p := int(ev["progress"].(float64))
		if p < last {
			t.Fatalf("progress went backwards: %d after %d", p, last)
		}
		last = p
	}
	if last != 100 {
		t.Errorf("final progress should be 100, got %d", last)
	}
}

func TestEmitterClosedAfterDone(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf)
	em.Done("text", &Tokens{InputTokens: 1, OutputTokens: 2, TotalTokens: 3})
	em.Progress(PhaseGenerate, 99, "late", 0, 1)
	em.Delta(99, "late", 0, 1)
	em.Error("INTERNAL", "late")

	events := decodeLines(t, &buf)
	if len(events) != 1 {
		t.Fatalf("expected exactly one event after done, got %d", len(events))
	}
	if events[0]["kind"] != "done" {
		t.Errorf("expected done, got %v", events[0]["kind"])
	}
}

func TestEmitterClosedAfterError(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(&buf)
	em.Progress(PhaseGenerate, 40, "", 0, 1)
	em.Error("FILE_TIMEOUT", "timed out")
	em.Done("late", nil)

	events := decodeLines(t, &buf)
	if len(events) != 2 {
		t.Fatalf("expected progress then error, got %d events", len(events))
	}
	if events[1]["kind"] != "error" {
		t.Errorf("expected error last, got %v", events[1]["kind"])
	}
	if int(events[1]["progress"].(float64)) != 40 {
		t.Errorf("error should carry the last progress, got %v", events[1]["progress"])
	}
}

func TestSegmentProgressSingleSegment(t *testing.T) {
	if got := SegmentProgress(20, 0, 1, 0); got != 20 {
		t.Errorf("segment start should be the upload ceiling, got %d", got)
	}
	if got := SegmentProgress(20, 0, 1, 10_000_000); got != 100 {
		t.Errorf("a segment never exceeds its share, got %d", got)
	}
}

func TestSegmentProgressEvenShares(t *testing.T) {
	// Four segments over 20..100: starts at 20, 40, 60, 80.
	for i, want := range []int{20, 40, 60, 80} {
		if got := SegmentProgress(20, i, 4, 0); got != want {
			t.Errorf("segment %d start: want %d, got %d", i, want, got)
		}
	}
	// Within segment 1, output advances progress but stays under 60.
	if got := SegmentProgress(20, 1, 4, 5*500); got != 45 {
		t.Errorf("within-segment advance: want 45, got %d", got)
	}
	if got := SegmentProgress(20, 1, 4, 1_000_000); got != 60 {
		t.Errorf("within-segment cap: want 60, got %d", got)
	}
}
