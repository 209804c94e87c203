package bedrock

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

// progressLogInterval controls how often a per-event debug entry is written
// while streaming. The first event is always logged.
const progressLogInterval = 10

// GenerateStream generates a streaming response. Text deltas are delivered
// on the returned channel in arrival order; the channel closes when the
// stream ends.
//
// Failures never cross this boundary. An unconfigured connector, a rejected
// call, and a broken stream all end the sequence with exactly one terminal
// delta carrying a fixed user-safe message, plus one structured error log
// entry. Per-event decode failures are logged and skipped; the stream
// continues.
//
// Cancel ctx to abandon the stream early; the response body is released on
// every exit path.
func (c *Connector) GenerateStream(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) <-chan string {
	deltas := make(chan string)

	go func() {
		defer close(deltas)

		if !c.IsConfigured() {
			c.logger.Error("connector is not configured, check credentials", chatconnect.Fields{
				"model": c.modelName,
			})
			send(ctx, deltas, chatconnect.MsgNotConfigured)
			return
		}

		wireReq, err := c.stream(ctx, conversation, overrides, deltas)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// Consumer abandoned the stream; nothing left to tell it.
				c.logger.Debug("stream cancelled by consumer", chatconnect.Fields{
					"model": c.modelName,
				})
				return
			}
			errorContext := map[string]interface{}{
				"model":         c.modelName,
				"message_count": len(conversation),
			}
			if wireReq != nil && len(wireReq.Messages) > 0 {
				errorContext["first_message_role"] = wireReq.Messages[0].Role
			}

			classified := chatconnect.Classify(err, errorContext)
			if classified.Kind != chatconnect.KindValidation {
				delete(classified.Context, "first_message_role")
			}

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

// stream runs one streaming generation attempt. It returns the formatted
// wire request alongside any error so the caller can enrich the error
// context, and yields each decoded text delta to the channel as it arrives.
func (c *Connector) stream(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams, deltas chan<- string) (*chatconnect.WireRequest, error) {
	resolved := c.defaults.Resolve(overrides)
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", chatconnect.ErrInvalidRequest, err)
	}

	modelID := c.catalog.ModelID(resolved.GetModel(c.modelName))
	wireReq := chatconnect.FormatConversation(conversation, resolved)

	c.logger.Info("invoking model", chatconnect.Fields{
		"model":         c.modelName,
		"model_id":      modelID,
		"message_count": len(wireReq.Messages),
		"max_tokens":    wireReq.MaxTokens,
		"temperature":   wireReq.Temperature,
	})

	body, err := c.invoke(ctx, modelID, wireReq, true)
	if err != nil {
		return wireReq, err
	}
	defer body.Close()

	eventCount := 0
	contentChunks := 0

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		eventCount++
		decoded := chatconnect.DecodeChunk([]byte(payload))

		if eventCount == 1 || eventCount%progressLogInterval == 0 {
			c.logger.Debug("processing chunk", chatconnect.Fields{
				"event":      eventCount,
				"chunk_kind": decoded.Kind.String(),
			})
		}

		if decoded.Kind == chatconnect.ChunkMalformed {
			// One bad event must not abort the stream.
			c.logger.Error("error processing chunk", chatconnect.Fields{
				"event": eventCount,
			})
			continue
		}

		if decoded.HasText() {
			contentChunks++
			if !send(ctx, deltas, decoded.Text) {
				return wireReq, ctx.Err()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return wireReq, err
	}

	c.logger.Info("stream complete", chatconnect.Fields{
		"event_count":    eventCount,
		"content_chunks": contentChunks,
	})

	return wireReq, nil
}

// send delivers one delta unless ctx is cancelled first. Returns false when
// the consumer is gone.
func send(ctx context.Context, deltas chan<- string, text string) bool {
	select {
	case deltas <- text:
		return true
	case <-ctx.Done():
		return false
	}
}
