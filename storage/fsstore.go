package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"videoExplain/core"
)

const (
	manifestName     = "manifest.json"
	partName         = "file.part"
	finalBase        = "final"
	defaultChunkSize = 5 * 1024 * 1024
)

// FSStore keeps one directory per session under base:
//
//	<base>/<uploadId>/manifest.json
//	<base>/<uploadId>/file.part
//	<base>/<uploadId>/final<ext>
type FSStore struct {
	base string
}

func NewFSStore(base string) (*FSStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create upload base dir: %w", err)
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Init(fileName string, size, chunkSize int64) (*Manifest, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if fileName == "" {
		fileName = "video.mp4"
	}
	man := &Manifest{
		UploadID:  core.NewID(),
		FileName:  fileName,
		Size:      size,
		ChunkSize: chunkSize,
		NextIndex: 0,
		CreatedAt: time.Now().UnixMilli(),
	}
	dir := filepath.Join(s.base, man.UploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if err := s.writeManifest(man); err != nil {
		return nil, err
	}
	return man, nil
}

func (s *FSStore) Append(uploadID string, index int, data []byte) (*Manifest, error) {
	man, err := s.readManifest(uploadID)
	if err != nil {
		return nil, err
	}
	if index != man.NextIndex {
		return nil, &ConflictError{Expected: man.NextIndex}
	}
	part := filepath.Join(s.base, uploadID, partName)
	f, err := os.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		core.Log.Warnf("open partial file for %s: %v", uploadID, err)
		return nil, fmt.Errorf("open partial file: %w", ErrNotFound)
	}
	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		core.Log.Warnf("append chunk %d for %s: %v", index, uploadID, werr)
		return nil, fmt.Errorf("append chunk %d: %w", index, ErrNotFound)
	}
	man.NextIndex++
	if err := s.writeManifest(man); err != nil {
		return nil, err
	}
	return man, nil
}

func (s *FSStore) Complete(uploadID string) (string, error) {
	man, err := s.readManifest(uploadID)
	if err != nil {
		return "", err
	}
	if int64(man.NextIndex)*man.ChunkSize < man.Size {
		return "", ErrIncomplete
	}
	dir := filepath.Join(s.base, uploadID)
	part := filepath.Join(dir, partName)
	final := filepath.Join(dir, finalBase+extOrDefault(man.FileName))
	if err := promote(part, final); err != nil {
		core.Log.Warnf("promote partial file for %s: %v", uploadID, err)
		return "", fmt.Errorf("promote partial file: %w", ErrNotFound)
	}
	return final, nil
}

func (s *FSStore) Manifest(uploadID string) (*Manifest, error) {
	return s.readManifest(uploadID)
}

func (s *FSStore) FinalPath(uploadID string) (string, error) {
	man, err := s.readManifest(uploadID)
	if err != nil {
		return "", err
	}
	final := filepath.Join(s.base, uploadID, finalBase+extOrDefault(man.FileName))
	if _, err := os.Stat(final); err != nil {
		return "", ErrNotFound
	}
	return final, nil
}

// Sweep removes session directories older than maxAge and returns how many
// were reaped. There is no built-in TTL; operators decide the age and call
// this on their own schedule.
func (s *FSStore) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	reaped := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(s.base, e.Name())); err == nil {
				reaped++
			}
		}
	}
	return reaped, nil
}

func (s *FSStore) readManifest(uploadID string) (*Manifest, error) {
	if uploadID == "" || uploadID != filepath.Base(uploadID) {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(s.base, uploadID, manifestName))
	if err != nil {
		return nil, ErrNotFound
	}
	var man Manifest
	if err := json.Unmarshal(b, &man); err != nil {
		return nil, ErrNotFound
	}
	return &man, nil
}

func (s *FSStore) writeManifest(man *Manifest) error {
	b, err := json.Marshal(man)
	if err != nil {
		return ErrNotFound
	}
	if err := os.WriteFile(filepath.Join(s.base, man.UploadID, manifestName), b, 0o644); err != nil {
		core.Log.Warnf("write manifest for %s: %v", man.UploadID, err)
		return ErrNotFound
	}
	return nil
}

// promote renames src onto dst, falling back to copy-then-delete on
// filesystems where rename is unavailable. The copy fully succeeds before
// the source is removed, so an interruption never loses data.
func promote(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		// Already promoted by an earlier complete call.
		if _, serr := os.Stat(dst); serr == nil {
			return nil
		}
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	_ = os.Remove(src)
	return nil
}

func extOrDefault(fileName string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return ".mp4"
}
