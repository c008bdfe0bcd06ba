package processors

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"videoExplain/config"
	"videoExplain/core"
)

// Fixed generation settings; not user-configurable.
const (
	genTemperature     = 0.4
	genMaxOutputTokens = 4000
)

// FileState is the remote-side lifecycle of an uploaded segment.
type FileState string

const (
	FileStateProcessing FileState = "processing"
	FileStateReady      FileState = "ready"
	FileStateFailed     FileState = "failed"
)

// FileRef identifies a segment uploaded to the remote file store.
type FileRef struct {
	ID           string
	URI          string
	MIMEType     string
	State        FileState
	StateMessage string
}

// GenerateChunk is one unit of the remote token stream: a text delta, a
// usage report, or both. Usage counters are cumulative; the last one wins.
type GenerateChunk struct {
	Delta string
	Usage *core.Tokens
}

// GenerateStream is an ordered, finite, non-restartable token stream.
// Recv returns io.EOF when the remote closes the stream.
type GenerateStream interface {
	Recv() (GenerateChunk, error)
	Close() error
}

// AIClient is the boundary to the remote inference service: push a file,
// observe its state, and drive a generation stream that references it.
type AIClient interface {
	UploadFile(ctx context.Context, path, name, mimeType string) (FileRef, error)
	FileState(ctx context.Context, ref FileRef) (FileRef, error)
	StreamGenerate(ctx context.Context, prompt string, ref FileRef) (GenerateStream, error)
}

// OpenAIClient implements AIClient against an OpenAI-compatible endpoint.
type OpenAIClient struct {
	cli   *openai.Client
	model string
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{cli: openai.NewClientWithConfig(clientConfig), model: cfg.ChatModel}
}

func (c *OpenAIClient) UploadFile(ctx context.Context, path, name, mimeType string) (FileRef, error) {
	f, err := c.cli.CreateFile(ctx, openai.FileRequest{
		FileName: name,
		FilePath: path,
		Purpose:  "assistants",
	})
	if err != nil {
		return FileRef{}, err
	}
	return fileRefFromRemote(f, mimeType), nil
}

func (c *OpenAIClient) FileState(ctx context.Context, ref FileRef) (FileRef, error) {
	f, err := c.cli.GetFile(ctx, ref.ID)
	if err != nil {
		return ref, err
	}
	next := fileRefFromRemote(f, ref.MIMEType)
	return next, nil
}

func (c *OpenAIClient) StreamGenerate(ctx context.Context, prompt string, ref FileRef) (GenerateStream, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					// Compatible endpoints take uploaded-media references
					// through the URL part.
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: ref.URI}},
				},
			},
		},
		Temperature:   genTemperature,
		MaxTokens:     genMaxOutputTokens,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	}
	s, err := c.cli.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	return &openAIStream{s: s}, nil
}

type openAIStream struct {
	s *openai.ChatCompletionStream
}

func (o *openAIStream) Recv() (GenerateChunk, error) {
	resp, err := o.s.Recv()
	if err != nil {
		return GenerateChunk{}, err
	}
	var chunk GenerateChunk
	if len(resp.Choices) > 0 {
		chunk.Delta = resp.Choices[0].Delta.Content
	}
	if resp.Usage != nil {
		chunk.Usage = &core.Tokens{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}
	return chunk, nil
}

func (o *openAIStream) Close() error {
	return o.s.Close()
}

func fileRefFromRemote(f openai.File, mimeType string) FileRef {
	ref := FileRef{ID: f.ID, URI: f.ID, MIMEType: mimeType, StateMessage: f.StatusDetails}
	switch f.Status {
	case "processed", "active":
		ref.State = FileStateReady
	case "error", "failed":
		ref.State = FileStateFailed
	default:
		ref.State = FileStateProcessing
	}
	return ref
}
