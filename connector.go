package chatconnect

import (
	"context"
)

// Connector defines the capability set every chat backend must implement.
// This abstraction allows supporting multiple backends (Bedrock, Anthropic,
// the lorem mock, ...) behind one consistent interface.
//
// Types used by this interface:
//   - Message: defined in message.go
//   - GenerationParams: defined in params.go
type Connector interface {
	// GenerateResponse generates a complete response in one blocking call.
	// Overrides are merged over the connector's configured defaults.
	GenerateResponse(ctx context.Context, conversation []Message, overrides *GenerationParams) (string, error)

	// GenerateStream generates a streaming response. The returned channel
	// emits text deltas in arrival order and is closed when the stream ends.
	//
	// GenerateStream never fails across this boundary: misconfiguration and
	// call-level failures are delivered as exactly one terminal delta whose
	// text is a fixed user-safe message, after which the channel closes.
	// Ceasing to consume early is safe once ctx is cancelled; the underlying
	// transport is released on every exit path.
	//
	// Usage:
	//   for delta := range conn.GenerateStream(ctx, conversation, nil) {
	//     render(delta)
	//   }
	GenerateStream(ctx context.Context, conversation []Message, overrides *GenerationParams) <-chan string

	// IsConfigured reports whether the connector holds everything it needs
	// to issue a call (a complete credential bundle).
	IsConfigured() bool

	// ModelName returns the display name of the currently selected model.
	ModelName() string
}

// ConnectorID represents a unique connector identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ConnectorID string

// Known connector identifiers
const (
	// ConnectorBedrock streams from an AWS Bedrock-style invoke endpoint
	ConnectorBedrock ConnectorID = "bedrock"

	// ConnectorAnthropic streams from the Anthropic API directly
	ConnectorAnthropic ConnectorID = "anthropic"

	// ConnectorLorem is the mock lorem connector for testing
	ConnectorLorem ConnectorID = "lorem"
)

// String returns the string representation of the connector ID
func (c ConnectorID) String() string {
	return string(c)
}

// IsValid returns true if the connector ID is a known connector
func (c ConnectorID) IsValid() bool {
	switch c {
	case ConnectorBedrock, ConnectorAnthropic, ConnectorLorem:
		return true
	default:
		return false
	}
}
