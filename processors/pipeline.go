package processors

import (
	"context"
	"fmt"

	"videoExplain/config"
	"videoExplain/core"
)

// AnalysisRequest is one client-initiated run over one local file.
type AnalysisRequest struct {
	FileName string
	Mode     core.Mode
	Lang     core.Lang
	Hint     string
}

// Pipeline analyzes one video per Run call: segment, submit, await
// readiness, stream generation, and bridge summaries across segments.
// Segments are strictly sequential; segment i+1's prompt depends on the
// bridge summary computed from segment i's output.
type Pipeline struct {
	cfg *config.Config
	ai  AIClient

	// Indirections for tests; production uses the package functions.
	segment    func(path string, segmentLenSec int) []string
	awaitReady func(ctx context.Context, cli AIClient, ref FileRef) (FileRef, error)
}

func NewPipeline(cfg *config.Config, ai AIClient) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		ai:      ai,
		segment: SegmentVideo,
		awaitReady: func(ctx context.Context, cli AIClient, ref FileRef) (FileRef, error) {
			return AwaitFileReady(ctx, cli, ref, fileReadyPollInterval, fileReadyMaxWait)
		},
	}
}

// Run executes the full analysis and emits every event for it. The emitter
// is closed by the terminal done or error event. Cancelling ctx (client
// disconnect) aborts in-flight remote submission, polling, and generation.
func (p *Pipeline) Run(ctx context.Context, em *core.Emitter, localPath string, req AnalysisRequest) {
	if dur, err := ProbeDuration(localPath); err == nil {
		core.Log.Infow("analysis started", "file", req.FileName, "durationSec", dur, "mode", req.Mode, "lang", req.Lang)
	} else {
		core.Log.Infow("analysis started", "file", req.FileName, "mode", req.Mode, "lang", req.Lang)
	}

	uploadCeil := p.cfg.UploadProgressMax
	segments := p.segment(localPath, p.cfg.SegmentLenSec)
	total := len(segments)

	acc := ""
	bridge := ""
	var usage *core.Tokens

	for i, segPath := range segments {
		em.Progress(core.PhaseGenerate, core.SegmentProgress(uploadCeil, i, total, 0),
			fmt.Sprintf("segment %d/%d", i+1, total), i, total)

		ref, err := SubmitSegment(ctx, p.ai, segPath)
		if err != nil {
			p.fail(em, req.Lang, err)
			return
		}
		ref, err = p.awaitReady(ctx, p.ai, ref)
		if err != nil {
			p.fail(em, req.Lang, err)
			return
		}

		prompt := ComposePrompt(req.Mode, req.Lang, req.Hint, bridge)
		segChars := 0
		err = StreamSegment(ctx, p.ai, prompt, ref,
			func(delta string) {
				acc += delta
				segChars += len(delta)
				em.Delta(core.SegmentProgress(uploadCeil, i, total, segChars), delta, i, total)
			},
			func(t core.Tokens) {
				usage = &t
			})
		if err != nil {
			p.fail(em, req.Lang, err)
			return
		}

		bridge = SummarizeForBridge(acc, req.Lang)
	}

	em.Done(acc, usage)
	core.Log.Infow("analysis finished", "file", req.FileName, "segments", total, "chars", len(acc))
}

// fail logs the raw error server-side and emits only the normalized,
// localized pair to the client.
func (p *Pipeline) fail(em *core.Emitter, lang core.Lang, err error) {
	code, msg := core.NormalizeError(err, lang)
	core.Log.Errorw("analysis failed", "code", code, "error", err)
	em.Error(code, msg)
}
