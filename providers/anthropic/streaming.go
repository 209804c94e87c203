package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

// GenerateStream generates a streaming response from Claude. Text deltas are
// delivered on the returned channel in arrival order; the channel closes
// when the stream ends. Failures never cross this boundary: they become one
// terminal delta with a fixed user-safe message plus one structured error
// log entry.
func (c *Connector) GenerateStream(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) <-chan string {
	deltas := make(chan string)

	go func() {
		defer close(deltas)

		if !c.IsConfigured() {
			c.logger.Error("connector is not configured, check API key", chatconnect.Fields{
				"model": c.model,
			})
			send(ctx, deltas, chatconnect.MsgNotConfigured)
			return
		}

		if err := c.stream(ctx, conversation, overrides, deltas); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			classified := chatconnect.Classify(err, map[string]interface{}{
				"model":         c.model,
				"message_count": len(conversation),
			})
			c.logger.Error("generation failed", chatconnect.Fields{
				"error":      err.Error(),
				"error_kind": classified.Kind.String(),
				"context":    classified.Context,
			})
			send(ctx, deltas, classified.Message)
		}
	}()

	return deltas
}

func (c *Connector) stream(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams, deltas chan<- string) error {
	apiParams, err := c.buildMessageParams(conversation, overrides)
	if err != nil {
		return err
	}

	c.logger.Info("invoking model", chatconnect.Fields{
		"model":         string(apiParams.Model),
		"message_count": len(apiParams.Messages),
	})

	stream := c.client.Messages.NewStreaming(ctx, apiParams)
	eventCount := 0
	contentChunks := 0

	for stream.Next() {
		event := stream.Current()
		eventCount++

		switch e := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if e.Delta.Type == "text_delta" && e.Delta.Text != "" {
				contentChunks++
				if !send(ctx, deltas, e.Delta.Text) {
					return ctx.Err()
				}
			}
		default:
			// Message and block lifecycle events carry no text.
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic streaming error: %w", err)
	}

	c.logger.Info("stream complete", chatconnect.Fields{
		"event_count":    eventCount,
		"content_chunks": contentChunks,
	})
	return nil
}

// send delivers one delta unless ctx is cancelled first.
func send(ctx context.Context, deltas chan<- string, text string) bool {
	select {
	case deltas <- text:
		return true
	case <-ctx.Done():
		return false
	}
}
