package handlers

import (
	"net/http"

	"videoExplain/processors"
)

// Health reports whether the remote-model credential and the segmentation
// tool are available, plus the active upload/segmentation configuration.
// Purely informational; clients use it to show a warning banner.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"hasAPIKey": a.cfg.HasValidAPI(),
		"hasFfmpeg": processors.FFmpegAvailable(),
		"config": map[string]any{
			"chunkThresholdBytes": a.cfg.ChunkThresholdBytes,
			"chunkSizeBytes":      a.cfg.ChunkSizeBytes,
			"segmentLenSec":       a.cfg.SegmentLenSec,
		},
	})
}
