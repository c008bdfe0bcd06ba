package core

// Phase names the pipeline stage an event was emitted from.
type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseUpload   Phase = "upload"
	PhaseGenerate Phase = "generate"
	PhaseStream   Phase = "stream"
	PhaseDone     Phase = "done"
	PhaseError    Phase = "error"
)

// Mode selects the output density of an analysis.
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeDetail  Mode = "detail"
)

// Lang selects the output language of an analysis.
type Lang string

const (
	LangEN Lang = "en"
	LangJA Lang = "ja"
)

// ParseMode falls back to detail for unknown values.
func ParseMode(s string) Mode {
	if s == string(ModeSummary) {
		return ModeSummary
	}
	return ModeDetail
}

// ParseLang falls back to English for unknown values.
func ParseLang(s string) Lang {
	if s == string(LangJA) {
		return LangJA
	}
	return LangEN
}

// Tokens carries the remote service's cumulative usage counters. The last
// value observed on a stream is authoritative; counters are never summed.
type Tokens struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// ErrorBody is the stable code/message pair carried by an error event.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Event is the closed set of wire events: Progress, Delta, Done, Error.
// Emission and consumption sites switch on the concrete type.
type Event interface {
	eventKind() string
}

type ProgressEvent struct {
	Kind         string `json:"kind"`
	Phase        Phase  `json:"phase"`
	Progress     int    `json:"progress"`
	Message      string `json:"message,omitempty"`
	SegmentIndex int    `json:"segmentIndex"`
	SegmentTotal int    `json:"segmentTotal"`
}

type DeltaEvent struct {
	Kind         string `json:"kind"`
	Phase        Phase  `json:"phase"`
	Progress     int    `json:"progress"`
	Delta        string `json:"delta"`
	SegmentIndex int    `json:"segmentIndex"`
	SegmentTotal int    `json:"segmentTotal"`
}

type DoneEvent struct {
	Kind     string  `json:"kind"`
	Phase    Phase   `json:"phase"`
	Progress int     `json:"progress"`
	Text     string  `json:"text"`
	Tokens   *Tokens `json:"tokens"`
}

type ErrorEvent struct {
	Kind     string    `json:"kind"`
	Phase    Phase     `json:"phase"`
	Progress int       `json:"progress"`
	Error    ErrorBody `json:"error"`
}

func (ProgressEvent) eventKind() string { return "progress" }
func (DeltaEvent) eventKind() string    { return "delta" }
func (DoneEvent) eventKind() string     { return "done" }
func (ErrorEvent) eventKind() string    { return "error" }
