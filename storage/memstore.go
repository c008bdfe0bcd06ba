package storage

import (
	"sync"
	"time"

	"videoExplain/core"
)

// MemStore is an in-memory SessionStore with the same semantics as FSStore.
// It backs tests; "final paths" are synthetic mem:// references resolvable
// through Bytes.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*memSession
}

type memSession struct {
	man   Manifest
	data  []byte
	final bool
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*memSession)}
}

func (s *MemStore) Init(fileName string, size, chunkSize int64) (*Manifest, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if fileName == "" {
		fileName = "video.mp4"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	man := Manifest{
		UploadID:  core.NewID(),
		FileName:  fileName,
		Size:      size,
		ChunkSize: chunkSize,
		CreatedAt: time.Now().UnixMilli(),
	}
	s.sessions[man.UploadID] = &memSession{man: man}
	cp := man
	return &cp, nil
}

func (s *MemStore) Append(uploadID string, index int, data []byte) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		return nil, ErrNotFound
	}
	if index != sess.man.NextIndex {
		return nil, &ConflictError{Expected: sess.man.NextIndex}
	}
	sess.data = append(sess.data, data...)
	sess.man.NextIndex++
	cp := sess.man
	return &cp, nil
}

func (s *MemStore) Complete(uploadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		return "", ErrNotFound
	}
	if int64(sess.man.NextIndex)*sess.man.ChunkSize < sess.man.Size {
		return "", ErrIncomplete
	}
	sess.final = true
	return "mem://" + uploadID + extOrDefault(sess.man.FileName), nil
}

func (s *MemStore) Manifest(uploadID string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := sess.man
	return &cp, nil
}

func (s *MemStore) FinalPath(uploadID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uploadID]
	if !ok || !sess.final {
		return "", ErrNotFound
	}
	return "mem://" + uploadID + extOrDefault(sess.man.FileName), nil
}

// Bytes returns the assembled payload of a session.
func (s *MemStore) Bytes(uploadID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[uploadID]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(sess.data))
	copy(out, sess.data)
	return out, true
}
