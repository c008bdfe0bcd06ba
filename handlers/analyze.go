package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"videoExplain/core"
	"videoExplain/processors"
)

var (
	errInputMissing  = errors.New("file or uploadId is required")
	errInputNotFound = errors.New("upload session not found or not completed")
)

// Hint text is user-supplied; anything beyond this is truncated.
const maxHintLen = 160

// Multipart parse ceiling for direct (non-resumable) analysis uploads.
const analyzeParseMemory = 128 << 20

// Analyze runs the upload-and-streaming-analysis pipeline for one file and
// streams NDJSON events. The response is always 200 once events start
// flowing; analysis failures arrive as the final error event.
func (a *API) Analyze(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if !a.cfg.HasValidAPI() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "API_KEY is not set"})
		return
	}
	if err := r.ParseMultipartForm(analyzeParseMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	uploadID := r.FormValue("uploadId")
	fileName := r.FormValue("fileName")
	if fileName == "" {
		fileName = "video.mp4"
	}
	req := processors.AnalysisRequest{
		FileName: fileName,
		Mode:     core.ParseMode(r.FormValue("mode")),
		Lang:     core.ParseLang(r.FormValue("lang")),
		Hint:     truncate(r.FormValue("hint"), maxHintLen),
	}

	localPath, err := a.resolveInput(r, uploadID, fileName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.WriteHeader(http.StatusOK)

	em := core.NewEmitter(w)
	em.Progress(core.PhaseUpload, a.cfg.UploadProgressMax/2, "uploading", 0, 0)
	a.pipeline.Run(r.Context(), em, localPath, req)
}

// resolveInput yields a local filesystem path for the video: either the
// finalized file of a completed resumable session or the raw multipart file
// persisted under the data directory.
func (a *API) resolveInput(r *http.Request, uploadID, fileName string) (string, error) {
	if uploadID != "" {
		path, err := a.store.FinalPath(uploadID)
		if err != nil {
			return "", errInputNotFound
		}
		return path, nil
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return "", errInputMissing
	}
	defer file.Close()

	dir := filepath.Join(a.cfg.DataDir, "analyze")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(fileName)
	if ext == "" {
		ext = ".mp4"
	}
	dst := filepath.Join(dir, core.NewID()+ext)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
