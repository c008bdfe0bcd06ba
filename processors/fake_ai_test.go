package processors

import (
	"context"
	"io"
	"path/filepath"

	"videoExplain/core"
)

// fakeAI scripts the remote inference boundary for tests. Each uploaded
// file walks through stateSequence; each generation replays chunkScript.
type fakeAI struct {
	stateSequence []FileState // consumed per FileState call; last repeats
	stateMessage  string
	chunkScript   [][]GenerateChunk // per segment, in submission order

	uploads   []string // names passed to UploadFile
	mimes     []string
	prompts   []string // prompts passed to StreamGenerate
	stateIdx  int
	uploadErr error
	genErr    error
}

func (f *fakeAI) UploadFile(ctx context.Context, path, name, mimeType string) (FileRef, error) {
	if f.uploadErr != nil {
		return FileRef{}, f.uploadErr
	}
	f.uploads = append(f.uploads, name)
	f.mimes = append(f.mimes, mimeType)
	state := FileStateProcessing
	if len(f.stateSequence) == 0 {
		state = FileStateReady
	}
	return FileRef{ID: "file-" + filepath.Base(path), URI: "file-" + filepath.Base(path), MIMEType: mimeType, State: state}, nil
}

func (f *fakeAI) FileState(ctx context.Context, ref FileRef) (FileRef, error) {
	if len(f.stateSequence) == 0 {
		ref.State = FileStateReady
		return ref, nil
	}
	i := f.stateIdx
	if i >= len(f.stateSequence) {
		i = len(f.stateSequence) - 1
	}
	f.stateIdx++
	ref.State = f.stateSequence[i]
	ref.StateMessage = f.stateMessage
	return ref, nil
}

func (f *fakeAI) StreamGenerate(ctx context.Context, prompt string, ref FileRef) (GenerateStream, error) {
	if f.genErr != nil {
		return nil, f.genErr
	}
	f.prompts = append(f.prompts, prompt)
	seg := len(f.prompts) - 1
	var chunks []GenerateChunk
	if seg < len(f.chunkScript) {
		chunks = f.chunkScript[seg]
	}
	return &fakeStream{chunks: chunks}, nil
}

type fakeStream struct {
	chunks []GenerateChunk
	pos    int
}

func (s *fakeStream) Recv() (GenerateChunk, error) {
	if s.pos >= len(s.chunks) {
		return GenerateChunk{}, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *fakeStream) Close() error { return nil }

func deltas(text ...string) []GenerateChunk {
	out := make([]GenerateChunk, 0, len(text))
	for _, t := range text {
		out = append(out, GenerateChunk{Delta: t})
	}
	return out
}

func withUsage(chunks []GenerateChunk, tok core.Tokens) []GenerateChunk {
	return append(chunks, GenerateChunk{Usage: &tok})
}
