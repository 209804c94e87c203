package chatconnect

// ProtocolVersion is the fixed wire protocol identifier sent with every
// invoke request. The endpoint rejects requests without it.
const ProtocolVersion = "bedrock-2023-05-31"

// WireMessage is the {role, content} pair the inference endpoint expects.
// Message type, metadata, and timestamp are deliberately dropped: the remote
// endpoint has no concept of them.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WireRequest is the serialized payload sent to the inference endpoint for
// one generation call.
type WireRequest struct {
	AnthropicVersion string        `json:"anthropic_version"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p"`
	TopK             int           `json:"top_k"`
	Messages         []WireMessage `json:"messages"`
}

// FormatConversation converts an ordered conversation into the wire request
// shape the endpoint expects. Messages with whitespace-only content are
// dropped; if nothing survives the filter, a single placeholder user message
// is synthesized because the endpoint requires at least one message.
//
// The transformation is pure: no I/O, and it always produces a valid request
// for any input.
func FormatConversation(conversation []Message, params *GenerationParams) *WireRequest {
	formatted := make([]WireMessage, 0, len(conversation))
	for _, msg := range conversation {
		if msg.IsEmpty() {
			continue
		}
		formatted = append(formatted, WireMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}

	// The endpoint requires at least one message.
	if len(formatted) == 0 {
		formatted = append(formatted, WireMessage{
			Role:    RoleUser.String(),
			Content: "Hello",
		})
	}

	return &WireRequest{
		AnthropicVersion: ProtocolVersion,
		MaxTokens:        params.GetMaxTokens(DefaultMaxTokens),
		Temperature:      params.GetTemperature(DefaultTemperature),
		TopP:             params.GetTopP(DefaultTopP),
		TopK:             params.GetTopK(DefaultTopK),
		Messages:         formatted,
	}
}
