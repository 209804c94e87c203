package chatconnect

import "github.com/tidwall/gjson"

// ChunkKind discriminates the known wire shapes of one stream event.
// The dispatch is an open union: adding a new wire shape later is a local
// change to DecodeChunk and this enum.
type ChunkKind int

const (
	// ChunkUnrecognized covers control/metadata events, block start/stop
	// events, and unknown future shapes. Carries no text and is not an error.
	ChunkUnrecognized ChunkKind = iota

	// ChunkMalformed marks a payload that failed to parse as JSON. The
	// connector logs and skips it; one bad event never aborts the stream.
	ChunkMalformed

	// ChunkContent is the traditional shape: a content array whose first
	// element carries the text.
	ChunkContent

	// ChunkBlockDelta is the content_block_delta shape: a delta object
	// carrying the text directly.
	ChunkBlockDelta
)

// String returns a short name for the chunk kind, used in log fields.
func (k ChunkKind) String() string {
	switch k {
	case ChunkMalformed:
		return "malformed"
	case ChunkContent:
		return "content"
	case ChunkBlockDelta:
		return "content_block_delta"
	default:
		return "unrecognized"
	}
}

// DecodedChunk is the result of decoding one raw stream event: a kind tag
// and, for the two content-bearing kinds, the extracted text delta.
type DecodedChunk struct {
	Kind ChunkKind
	Text string
}

// HasText returns true if the chunk decoded to a non-empty text delta.
func (c DecodedChunk) HasText() bool {
	return c.Text != ""
}

// DecodeChunk parses one raw streamed event into at most one text delta.
// It is total: any input byte payload, valid JSON or not, yields a
// DecodedChunk and never an error.
//
// Dispatch, first match wins:
//   - non-empty `content` array: text of content[0]
//   - `type` == "content_block_delta" with a `delta.text` field
//   - anything else decodes to no delta
func DecodeChunk(raw []byte) DecodedChunk {
	if !gjson.ValidBytes(raw) {
		return DecodedChunk{Kind: ChunkMalformed}
	}

	if content := gjson.GetBytes(raw, "content"); content.IsArray() && len(content.Array()) > 0 {
		return DecodedChunk{
			Kind: ChunkContent,
			Text: content.Array()[0].Get("text").String(),
		}
	}

	if gjson.GetBytes(raw, "type").String() == "content_block_delta" {
		if delta := gjson.GetBytes(raw, "delta.text"); delta.Exists() {
			return DecodedChunk{
				Kind: ChunkBlockDelta,
				Text: delta.String(),
			}
		}
	}

	return DecodedChunk{Kind: ChunkUnrecognized}
}
