// Package client drives the upload-and-analysis protocol from the consumer
// side: resumable chunked upload with conflict resync, and reassembly of
// the server's NDJSON event stream into final text plus token totals.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"videoExplain/core"
)

// appendAttempts bounds silent retries per chunk before the upload fails.
const appendAttempts = 3

// Client talks to one videoExplain server. Files above ChunkThreshold are
// sent through the resumable-upload protocol, smaller ones inline with the
// analysis request.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	ChunkThreshold int64
	ChunkSize      int64

	// OnProgress, when set, receives the display progress 0..100: chunk
	// upload occupies 0..20, server events are clamped into 20..100.
	OnProgress func(percent int)
}

// Result is a finished analysis.
type Result struct {
	Text   string
	Tokens *core.Tokens
}

const uploadProgressMax = 20

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) progress(p int) {
	if c.OnProgress != nil {
		c.OnProgress(p)
	}
}

// AnalyzeFile uploads path and reassembles the event stream. One file runs
// at a time per Client; the caller sequences multiple files.
func (c *Client) AnalyzeFile(ctx context.Context, path string, mode core.Mode, lang core.Lang, hint string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	c.progress(0)

	uploadID := ""
	if c.ChunkThreshold > 0 && info.Size() > c.ChunkThreshold {
		uploadID, err = c.uploadResumable(ctx, path, info.Size())
		if err != nil {
			return nil, err
		}
	}
	return c.analyze(ctx, path, filepath.Base(path), uploadID, mode, lang, hint)
}

// uploadResumable pushes the file as ordered chunks. On a 409 the client
// resynchronizes to the server's expected index instead of resending
// blindly; each chunk gets a bounded number of attempts.
func (c *Client) uploadResumable(ctx context.Context, path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	uploadID, chunkSize, err := c.initUpload(ctx, filepath.Base(path), size)
	if err != nil {
		return "", err
	}
	total := int((size + chunkSize - 1) / chunkSize)
	buf := make([]byte, chunkSize)
	for idx := 0; idx < total; {
		n, err := f.ReadAt(buf, int64(idx)*chunkSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if n == 0 {
			return "", fmt.Errorf("short read at chunk %d", idx)
		}
		next, err := c.appendChunk(ctx, uploadID, idx, buf[:n])
		if err != nil {
			return "", err
		}
		c.progress((next * uploadProgressMax) / total)
		idx = next
	}
	if err := c.completeUpload(ctx, uploadID); err != nil {
		return "", err
	}
	c.progress(uploadProgressMax)
	return uploadID, nil
}

func (c *Client) initUpload(ctx context.Context, fileName string, size int64) (string, int64, error) {
	form := map[string]string{
		"fileName": fileName,
		"size":     strconv.FormatInt(size, 10),
	}
	if c.ChunkSize > 0 {
		form["chunkSize"] = strconv.FormatInt(c.ChunkSize, 10)
	}
	resp, err := c.postForm(ctx, "/api/uploads/init", form, "", nil)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("init upload: %s", readError(resp))
	}
	var body struct {
		UploadID  string `json:"uploadId"`
		ChunkSize int64  `json:"chunkSize"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, err
	}
	if body.UploadID == "" || body.ChunkSize <= 0 {
		return "", 0, errors.New("init upload: malformed response")
	}
	return body.UploadID, body.ChunkSize, nil
}

// appendChunk sends one chunk and returns the next index to send.
func (c *Client) appendChunk(ctx context.Context, uploadID string, index int, data []byte) (int, error) {
	for attempt := 0; attempt < appendAttempts; attempt++ {
		form := map[string]string{
			"uploadId": uploadID,
			"index":    strconv.Itoa(index),
		}
		resp, err := c.postForm(ctx, "/api/uploads/append", form, "blob", data)
		if err != nil {
			return 0, err
		}
		switch resp.StatusCode {
		case http.StatusOK:
			resp.Body.Close()
			return index + 1, nil
		case http.StatusConflict:
			var body struct {
				Expected int `json:"expected"`
			}
			derr := json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			if derr == nil && body.Expected != index {
				// The server is ahead or behind us; resume from its index.
				return body.Expected, nil
			}
		default:
			resp.Body.Close()
			if attempt == appendAttempts-1 {
				return 0, fmt.Errorf("append chunk %d failed", index)
			}
		}
	}
	return 0, fmt.Errorf("append chunk %d failed after %d attempts", index, appendAttempts)
}

func (c *Client) completeUpload(ctx context.Context, uploadID string) error {
	resp, err := c.postForm(ctx, "/api/uploads/complete", map[string]string{"uploadId": uploadID}, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("complete upload: %s", readError(resp))
	}
	return nil
}

func (c *Client) analyze(ctx context.Context, path, fileName, uploadID string, mode core.Mode, lang core.Lang, hint string) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"fileName": fileName,
		"mode":     string(mode),
		"lang":     string(lang),
	}
	if hint != "" {
		fields["hint"] = hint
	}
	if uploadID != "" {
		fields["uploadId"] = uploadID
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if uploadID == "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		_, cerr := io.Copy(part, f)
		f.Close()
		if cerr != nil {
			return nil, cerr
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyze: %s", readError(resp))
	}
	return c.reassemble(resp.Body)
}

// reassemble applies the event stream in order. Malformed lines are skipped
// silently; the run aborts only on an explicit error event or a transport
// failure. A done event carrying non-empty text wins over locally
// accumulated deltas.
func (c *Client) reassemble(body io.Reader) (*Result, error) {
	acc := ""
	var tokens *core.Tokens
	var runErr error

	apply := func(line []byte) {
		if runErr != nil {
			return
		}
		var env struct {
			Kind     string          `json:"kind"`
			Progress int             `json:"progress"`
			Delta    string          `json:"delta"`
			Text     string          `json:"text"`
			Tokens   *core.Tokens    `json:"tokens"`
			Error    *core.ErrorBody `json:"error"`
		}
		if err := json.Unmarshal(line, &env); err != nil {
			return
		}
		switch env.Kind {
		case "progress":
			c.progress(clampServerProgress(env.Progress))
		case "delta":
			c.progress(clampServerProgress(env.Progress))
			acc += env.Delta
		case "done":
			c.progress(100)
			if env.Text != "" {
				acc = env.Text
			}
			tokens = env.Tokens
		case "error":
			msg := "processing error"
			if env.Error != nil && env.Error.Message != "" {
				msg = env.Error.Message
			}
			runErr = errors.New(msg)
		}
	}

	var lb lineBuffer
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			lb.Feed(buf[:n], apply)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			break
		}
	}
	lb.Flush(apply)
	if runErr != nil {
		return nil, runErr
	}
	return &Result{Text: acc, Tokens: tokens}, nil
}

// clampServerProgress maps server-side progress into the display range the
// server owns; the client tracks its own 0..20 during chunk upload.
func clampServerProgress(p int) int {
	if p < uploadProgressMax {
		return uploadProgressMax
	}
	if p > 100 {
		return 100
	}
	return p
}

func (c *Client) postForm(ctx context.Context, route string, fields map[string]string, fileField string, fileData []byte) (*http.Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, "blob")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(fileData); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+route, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.httpClient().Do(req)
}

func readError(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		return body.Error
	}
	return resp.Status
}
