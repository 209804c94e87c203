package chatconnect

// WireContentBlock is one element of the content array in a non-streaming
// invoke response.
type WireContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// WireResponse is the body of a non-streaming invoke response.
type WireResponse struct {
	Content    []WireContentBlock `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      WireUsage          `json:"usage"`
}

// WireUsage carries the token accounting reported by the endpoint.
type WireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Text returns the text of the first content block, or "" when the response
// carries no content.
func (r *WireResponse) Text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}
