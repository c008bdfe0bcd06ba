package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"videoExplain/core"
	"videoExplain/storage"
)

// Multipart parse ceiling for upload requests; chunks larger than memory
// spill to disk.
const uploadParseMemory = 64 << 20

// InitUpload opens a resumable-upload session.
// Fields: fileName, size (bytes, >0), chunkSize (optional).
func (a *API) InitUpload(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseMultipartForm(uploadParseMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}
	size, _ := strconv.ParseInt(r.FormValue("size"), 10, 64)
	chunkSize, _ := strconv.ParseInt(r.FormValue("chunkSize"), 10, 64)
	if chunkSize <= 0 {
		chunkSize = a.cfg.ChunkSizeBytes
	}
	man, err := a.store.Init(r.FormValue("fileName"), size, chunkSize)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidSize) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid size"})
			return
		}
		core.Log.Errorf("init upload: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "init failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"uploadId":  man.UploadID,
		"chunkSize": man.ChunkSize,
	})
}

// AppendChunk accepts the next chunk of a session.
// Fields: uploadId, index (0-based), blob (raw bytes).
// An index mismatch answers 409 with the server's true expected index.
func (a *API) AppendChunk(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseMultipartForm(uploadParseMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}
	uploadID := r.FormValue("uploadId")
	index, err := strconv.Atoi(r.FormValue("index"))
	if uploadID == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	blob, _, err := r.FormFile("blob")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing field 'blob'"})
		return
	}
	defer blob.Close()
	data, err := io.ReadAll(blob)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read chunk"})
		return
	}

	man, err := a.store.Append(uploadID, index, data)
	if err != nil {
		var conflict *storage.ConflictError
		switch {
		case errors.As(err, &conflict):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "index conflict", "expected": conflict.Expected})
		case errors.Is(err, storage.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			core.Log.Errorf("append chunk: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "append failed"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "next": man.NextIndex})
}

// CompleteUpload finalizes a session once every byte has arrived.
func (a *API) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseMultipartForm(uploadParseMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}
	uploadID := r.FormValue("uploadId")
	if uploadID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	man, err := a.store.Manifest(uploadID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if _, err := a.store.Complete(uploadID); err != nil {
		switch {
		case errors.Is(err, storage.ErrIncomplete):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "incomplete"})
		case errors.Is(err, storage.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			core.Log.Errorf("complete upload: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "complete failed"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "uploadId": uploadID, "fileName": man.FileName})
}
