package core

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// deltaCharsPerPoint is the within-segment heuristic: one progress point per
// this many accumulated output characters.
const deltaCharsPerPoint = 500

// SegmentProgress maps a segment's position and its accumulated output
// length onto the generation range (uploadCeil..100]. The range is divided
// evenly between segments; within one segment progress advances with output
// length but never crosses into the next segment's share.
func SegmentProgress(uploadCeil, segIndex, segTotal, accChars int) int {
	if segTotal < 1 {
		segTotal = 1
	}
	span := 100 - uploadCeil
	start := uploadCeil + segIndex*span/segTotal
	end := uploadCeil + (segIndex+1)*span/segTotal
	p := start + accChars/deltaCharsPerPoint
	if p > end {
		p = end
	}
	return p
}

// Emitter serializes stream events as NDJSON and enforces the wire
// invariants: progress never decreases within a run, done or error is the
// final event, and nothing is written after the stream closes.
type Emitter struct {
	mu     sync.Mutex
	w      io.Writer
	fl     http.Flusher
	last   int
	closed bool
}

// NewEmitter wraps w; if w is an http.Flusher each event is flushed so the
// client sees lines as they are produced.
func NewEmitter(w io.Writer) *Emitter {
	e := &Emitter{w: w}
	if fl, ok := w.(http.Flusher); ok {
		e.fl = fl
	}
	return e
}

// Last returns the highest progress value emitted so far.
func (e *Emitter) Last() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Emitter) Progress(phase Phase, progress int, message string, segIndex, segTotal int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(ProgressEvent{
		Kind:         "progress",
		Phase:        phase,
		Progress:     e.clamp(progress),
		Message:      message,
		SegmentIndex: segIndex,
		SegmentTotal: segTotal,
	})
}

func (e *Emitter) Delta(progress int, delta string, segIndex, segTotal int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(DeltaEvent{
		Kind:         "delta",
		Phase:        PhaseStream,
		Progress:     e.clamp(progress),
		Delta:        delta,
		SegmentIndex: segIndex,
		SegmentTotal: segTotal,
	})
}

// Done emits the terminal success event and closes the emitter.
func (e *Emitter) Done(text string, tokens *Tokens) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(DoneEvent{Kind: "done", Phase: PhaseDone, Progress: e.clamp(100), Text: text, Tokens: tokens})
	e.closed = true
}

// Error emits the terminal failure event and closes the emitter.
func (e *Emitter) Error(code, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.send(ErrorEvent{Kind: "error", Phase: PhaseError, Progress: e.last, Error: ErrorBody{Code: code, Message: message}})
	e.closed = true
}

// clamp enforces monotonicity; callers hold e.mu.
func (e *Emitter) clamp(p int) int {
	if p < e.last {
		p = e.last
	}
	e.last = p
	return p
}

// send writes one event as a JSON line; callers hold e.mu.
func (e *Emitter) send(ev Event) {
	if e.closed {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if _, err := e.w.Write(append(b, '\n')); err != nil {
		// The client went away; terminal events still mark the emitter
		// closed, everything else is best effort.
		return
	}
	if e.fl != nil {
		e.fl.Flush()
	}
}
