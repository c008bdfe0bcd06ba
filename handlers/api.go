// Package handlers exposes the HTTP surface: the resumable-upload protocol,
// the NDJSON analysis stream, and the capability probe.
package handlers

import (
	"encoding/json"
	"net/http"

	"videoExplain/config"
	"videoExplain/core"
	"videoExplain/processors"
	"videoExplain/storage"
)

// API wires configuration, the upload session store, and the analysis
// pipeline into HTTP handlers.
type API struct {
	cfg      *config.Config
	store    storage.SessionStore
	pipeline *processors.Pipeline
}

func NewAPI(cfg *config.Config, store storage.SessionStore, ai processors.AIClient) *API {
	return &API{cfg: cfg, store: store, pipeline: processors.NewPipeline(cfg, ai)}
}

// Register installs all routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/uploads/init", a.InitUpload)
	mux.HandleFunc("/api/uploads/append", a.AppendChunk)
	mux.HandleFunc("/api/uploads/complete", a.CompleteUpload)
	mux.HandleFunc("/api/analyze", a.Analyze)
	mux.HandleFunc("/health", a.Health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		core.Log.Warnf("write json response: %v", err)
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	return true
}
