// Package storage implements the resumable-upload session store. A session
// accepts fixed-size chunks strictly in order, tracks the next expected
// index in a manifest, and promotes the partial file to a final path once
// every byte has arrived.
package storage

import (
	"errors"
	"fmt"
)

// Terminal session outcomes. Any manifest read/write failure is reported as
// ErrNotFound: a session whose bookkeeping cannot be trusted is unusable.
var (
	ErrNotFound    = errors.New("upload session not found")
	ErrIncomplete  = errors.New("upload incomplete")
	ErrInvalidSize = errors.New("invalid upload size")
)

// ConflictError reports an append at the wrong index and carries the true
// next expected index so the caller can resynchronize instead of blindly
// retrying.
type ConflictError struct {
	Expected int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("chunk index conflict: expected %d", e.Expected)
}

// Manifest records the immutable session parameters plus the single mutable
// field, NextIndex. One logical writer per session; concurrent appends race
// on NextIndex and resolve as conflicts.
type Manifest struct {
	UploadID  string `json:"uploadId"`
	FileName  string `json:"fileName"`
	Size      int64  `json:"size"`
	ChunkSize int64  `json:"chunkSize"`
	NextIndex int    `json:"nextIndex"`
	CreatedAt int64  `json:"createdAt"`
}

// SessionStore is the resumable-upload contract. The filesystem store backs
// the server; the memory store backs tests.
type SessionStore interface {
	// Init creates a session for a file of the declared size. Size must be
	// positive; chunkSize of zero or less falls back to defaultChunkSize.
	Init(fileName string, size, chunkSize int64) (*Manifest, error)

	// Append accepts chunk data for the given index. Only the next expected
	// index is accepted; anything else (including an already-accepted
	// index) fails with *ConflictError.
	Append(uploadID string, index int, data []byte) (*Manifest, error)

	// Complete promotes the partial file to its final path. Fails with
	// ErrIncomplete while accepted bytes cannot cover the declared size.
	Complete(uploadID string) (string, error)

	// Manifest returns the current session manifest.
	Manifest(uploadID string) (*Manifest, error)

	// FinalPath returns the finalized file path of a completed session.
	FinalPath(uploadID string) (string, error)
}
