// Package processors contains the analysis pipeline: video segmentation,
// segment submission to the remote model, prompt composition, streaming
// generation, and the per-run orchestration.
package processors

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"videoExplain/core"
)

// Overridable in tests to simulate a missing or broken tool.
var (
	ffmpegBin  = "ffmpeg"
	ffprobeBin = "ffprobe"
)

// SegmentVideo splits inputPath into stream-copied parts of at most
// segmentLenSec seconds each and returns their paths in chronological
// order. Zero or negative segmentLenSec disables splitting. Any failure of
// the external tool degrades to a single segment covering the whole file;
// segmentation never aborts an analysis.
func SegmentVideo(inputPath string, segmentLenSec int) []string {
	if segmentLenSec <= 0 {
		return []string{inputPath}
	}
	outDir := inputPath + "_segs"
	// A previous split of the same input may have left more parts than this
	// run will produce; stale trailing parts would duplicate content.
	if err := os.RemoveAll(outDir); err != nil {
		core.Log.Warnf("segmenter: clear output dir: %v", err)
		return []string{inputPath}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		core.Log.Warnf("segmenter: create output dir: %v", err)
		return []string{inputPath}
	}
	// Zero-padded ordinals keep lexicographic order chronological.
	pattern := filepath.Join(outDir, "part_%03d"+extOrMP4(inputPath))
	args := []string{
		"-hide_banner", "-y",
		"-i", inputPath,
		"-c", "copy",
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentLenSec),
		"-reset_timestamps", "1",
		pattern,
	}
	if err := runFFmpeg(args); err != nil {
		core.Log.Warnf("segmenter: ffmpeg split failed, using whole file: %v", err)
		return []string{inputPath}
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		core.Log.Warnf("segmenter: read output dir: %v", err)
		return []string{inputPath}
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "part_") {
			parts = append(parts, filepath.Join(outDir, e.Name()))
		}
	}
	if len(parts) == 0 {
		return []string{inputPath}
	}
	sort.Strings(parts)
	return parts
}

func runFFmpeg(args []string) error {
	cmd := exec.Command(ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %v: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// ProbeDuration returns the media duration in seconds via ffprobe.
func ProbeDuration(path string) (float64, error) {
	cmd := exec.Command(ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
}

// FFmpegAvailable reports whether the splitting tool can be spawned.
func FFmpegAvailable() bool {
	return exec.Command(ffmpegBin, "-version").Run() == nil
}

func extOrMP4(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
