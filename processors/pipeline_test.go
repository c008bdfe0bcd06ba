package processors

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"videoExplain/config"
	"videoExplain/core"
)

func testConfig() *config.Config {
	return &config.Config{
		APIKey:              "test-key",
		BaseURL:             "http://localhost",
		ChatModel:           "test-model",
		DataDir:             "data",
		ChunkThresholdBytes: 50 * 1024 * 1024,
		ChunkSizeBytes:      5 * 1024 * 1024,
		SegmentLenSec:       0,
		UploadProgressMax:   20,
	}
}

func newTestPipeline(cfg *config.Config, ai AIClient, segments []string) *Pipeline {
	p := NewPipeline(cfg, ai)
	if segments != nil {
		p.segment = func(string, int) []string { return segments }
	}
	// No waiting in tests; the submitter has its own coverage.
	p.awaitReady = func(ctx context.Context, cli AIClient, ref FileRef) (FileRef, error) {
		return AwaitFileReady(ctx, cli, ref, 0, 0)
	}
	return p
}

func runEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("invalid event line %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	return events
}

func TestRunSingleSegment(t *testing.T) {
	ai := &fakeAI{chunkScript: [][]GenerateChunk{
		withUsage(deltas("## Overview\n", "Work steps"), core.Tokens{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}),
	}}
	p := newTestPipeline(testConfig(), ai, nil) // SegmentLenSec 0 keeps the whole file

	var buf bytes.Buffer
	em := core.NewEmitter(&buf)
	p.Run(context.Background(), em, "/tmp/in.mp4", AnalysisRequest{FileName: "in.mp4", Mode: core.ModeDetail, Lang: core.LangEN})

	events := runEvents(t, &buf)
	last := events[len(events)-1]
	if last["kind"] != "done" {
		t.Fatalf("expected done last, got %v", last["kind"])
	}
	if last["text"] != "## Overview\nWork steps" {
		t.Errorf("done text mismatch: %q", last["text"])
	}
	tok := last["tokens"].(map[string]any)
	if tok["totalTokens"].(float64) != 15 {
		t.Errorf("expected totalTokens 15, got %v", tok["totalTokens"])
	}

	prev := -1
	sawDelta := false
	for _, ev := range events {
		pv := int(ev["progress"].(float64))
		if pv < prev {
			t.Fatalf("progress decreased: %d after %d", pv, prev)
		}
		prev = pv
		if ev["kind"] == "delta" {
			sawDelta = true
		}
	}
	if !sawDelta {
		t.Error("expected at least one delta event")
	}
	if prev != 100 {
		t.Errorf("run should end at 100, got %d", prev)
	}
}

func TestRunThreeSegmentsBridgesSummaries(t *testing.T) {
	ai := &fakeAI{chunkScript: [][]GenerateChunk{
		deltas("First segment opened the CRM dashboard."),
		deltas("Second segment filtered the report."),
		deltas("Third segment exported the data."),
	}}
	segs := []string{"/tmp/part_000.mp4", "/tmp/part_001.mp4", "/tmp/part_002.mp4"}
	p := newTestPipeline(testConfig(), ai, segs)

	var buf bytes.Buffer
	em := core.NewEmitter(&buf)
	p.Run(context.Background(), em, "/tmp/in.mp4", AnalysisRequest{FileName: "in.mp4", Mode: core.ModeDetail, Lang: core.LangEN})

	if len(ai.prompts) != 3 {
		t.Fatalf("expected 3 generations, got %d", len(ai.prompts))
	}
	if strings.Contains(ai.prompts[0], "Previous segment summary:") {
		t.Error("segment 1 must not carry bridge text")
	}
	if !strings.Contains(ai.prompts[1], "Previous segment summary:") ||
		!strings.Contains(ai.prompts[1], "CRM dashboard") {
		t.Error("segment 2's prompt should carry segment 1's bridge summary")
	}
	if !strings.Contains(ai.prompts[2], "filtered the report") {
		t.Error("segment 3's prompt should carry the running narrative")
	}

	events := runEvents(t, &buf)
	last := events[len(events)-1]
	if last["kind"] != "done" {
		t.Fatalf("expected done, got %v", last["kind"])
	}
	text := last["text"].(string)
	if !strings.Contains(text, "First segment") || !strings.Contains(text, "Third segment") {
		t.Errorf("final text should span all segments, got %q", text)
	}
}

func TestRunUsageLastValueWins(t *testing.T) {
	ai := &fakeAI{chunkScript: [][]GenerateChunk{
		withUsage(deltas("a"), core.Tokens{TotalTokens: 100}),
		withUsage(deltas("b"), core.Tokens{TotalTokens: 250}),
	}}
	p := newTestPipeline(testConfig(), ai, []string{"/tmp/p0.mp4", "/tmp/p1.mp4"})

	var buf bytes.Buffer
	em := core.NewEmitter(&buf)
	p.Run(context.Background(), em, "/tmp/in.mp4", AnalysisRequest{FileName: "in.mp4", Mode: core.ModeSummary, Lang: core.LangEN})

	events := runEvents(t, &buf)
	last := events[len(events)-1]
	tok := last["tokens"].(map[string]any)
	if tok["totalTokens"].(float64) != 250 {
		t.Errorf("usage must be overwritten, not accumulated: got %v", tok["totalTokens"])
	}
}

func TestRunRemoteFailureEmitsNormalizedError(t *testing.T) {
	ai := &fakeAI{stateSequence: []FileState{FileStateFailed}, stateMessage: "bad moov atom"}
	p := newTestPipeline(testConfig(), ai, []string{"/tmp/p0.mp4"})
	// Force the submitter path to observe the failed state.
	p.awaitReady = func(ctx context.Context, cli AIClient, ref FileRef) (FileRef, error) {
		ref.State = FileStateProcessing
		return AwaitFileReady(ctx, cli, ref, 0, 0)
	}

	var buf bytes.Buffer
	em := core.NewEmitter(&buf)
	p.Run(context.Background(), em, "/tmp/in.mp4", AnalysisRequest{FileName: "in.mp4", Mode: core.ModeDetail, Lang: core.LangEN})

	events := runEvents(t, &buf)
	last := events[len(events)-1]
	if last["kind"] != "error" {
		t.Fatalf("expected error event, got %v", last["kind"])
	}
	errBody := last["error"].(map[string]any)
	if errBody["code"] != core.CodeFileFailed {
		t.Errorf("expected %s, got %v", core.CodeFileFailed, errBody["code"])
	}
	if strings.Contains(errBody["message"].(string), "moov") {
		t.Error("raw remote detail must not reach the client")
	}
}
