package processors

import (
	"context"
	"errors"
	"io"

	"videoExplain/core"
)

// StreamSegment drives the remote token stream for one segment. Each text
// delta is forwarded through onDelta in arrival order; each usage record is
// forwarded through onUsage and overwrites the previous one at the caller.
// Returns when the remote closes the stream.
func StreamSegment(ctx context.Context, cli AIClient, prompt string, ref FileRef, onDelta func(string), onUsage func(core.Tokens)) error {
	stream, err := cli.StreamGenerate(ctx, prompt, ref)
	if err != nil {
		return err
	}
	defer stream.Close()
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if chunk.Delta != "" {
			onDelta(chunk.Delta)
		}
		if chunk.Usage != nil {
			onUsage(*chunk.Usage)
		}
	}
}
