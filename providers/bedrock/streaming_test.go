package bedrock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

// sseServer serves the given payloads as one server-sent event stream.
func sseServer(t *testing.T, payloads ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, payload := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
	}))
}

func collect(deltas <-chan string) []string {
	var out []string
	for delta := range deltas {
		out = append(out, delta)
	}
	return out
}

func userSays(content string) []chatconnect.Message {
	return []chatconnect.Message{
		chatconnect.NewMessage(content, chatconnect.RoleUser, chatconnect.TypeText),
	}
}

// Three content deltas aggregate to the full response, in arrival order.
func TestGenerateStream_DeltasInOrder(t *testing.T) {
	server := sseServer(t,
		`{"type":"message_start","message":{"role":"assistant"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"!"}}`,
		`{"type":"message_stop"}`,
	)
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))

	store := chatconnect.NewMemoryStore()
	agg := chatconnect.NewAggregator(store, nil)
	agg.Consume(conn.GenerateStream(context.Background(), userSays("Hi"), nil))

	msg, err := agg.Finalize()
	if err != nil {
		t.Fatalf("Finalize error = %v", err)
	}
	if msg.Content != "Hello!" {
		t.Errorf("final content = %q, want %q", msg.Content, "Hello!")
	}
	if agg.DeltaCount() != 3 {
		t.Errorf("DeltaCount = %d, want 3", agg.DeltaCount())
	}
}

// Both known wire shapes decode; control events yield nothing.
func TestGenerateStream_MixedChunkShapes(t *testing.T) {
	server := sseServer(t,
		`{"content":[{"text":"legacy "}]}`,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"and new"}}`,
	)
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))

	got := collect(conn.GenerateStream(context.Background(), userSays("Hi"), nil))

	want := []string{"legacy ", "and new"}
	if len(got) != len(want) {
		t.Fatalf("got %d deltas %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delta[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// One malformed event is logged and skipped; the other four deliver.
func TestGenerateStream_MalformedEventIsSkipped(t *testing.T) {
	server := sseServer(t,
		`{"type":"content_block_delta","delta":{"type":"text_delta","text":"a"}}`,
		`{"type":"content_block_delta","delta":{"type":"text_delta","text":"b"}}`,
		`{not valid json`,
		`{"type":"content_block_delta","delta":{"type":"text_delta","text":"c"}}`,
		`{"type":"content_block_delta","delta":{"type":"text_delta","text":"d"}}`,
	)
	defer server.Close()

	logger := &recordLogger{}
	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL), WithLogger(logger))

	got := collect(conn.GenerateStream(context.Background(), userSays("Hi"), nil))

	if strings.Join(got, "") != "abcd" {
		t.Errorf("deltas = %v, want a b c d", got)
	}
	if _, ok := logger.find("error", "error processing chunk"); !ok {
		t.Error("malformed chunk was not logged")
	}
	if entry, ok := logger.find("info", "stream complete"); !ok {
		t.Error("missing completion summary log")
	} else {
		if entry.fields["event_count"] != 5 {
			t.Errorf("event_count = %v, want 5", entry.fields["event_count"])
		}
		if entry.fields["content_chunks"] != 4 {
			t.Errorf("content_chunks = %v, want 4", entry.fields["content_chunks"])
		}
	}
}

// Missing credentials produce exactly one terminal delta and no network call.
func TestGenerateStream_NotConfigured(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	conn := New(chatconnect.Credentials{}, testCatalog(t), WithBaseURL(server.URL))

	store := chatconnect.NewMemoryStore()
	agg := chatconnect.NewAggregator(store, nil)
	agg.Consume(conn.GenerateStream(context.Background(), userSays("Hi"), nil))

	if agg.DeltaCount() != 1 {
		t.Fatalf("DeltaCount = %d, want exactly 1 terminal delta", agg.DeltaCount())
	}
	msg, err := agg.Finalize()
	if err != nil {
		t.Fatalf("Finalize error = %v", err)
	}
	if msg.Content != chatconnect.MsgNotConfigured {
		t.Errorf("terminal delta = %q, want not-configured message", msg.Content)
	}
	if calls.Load() != 0 {
		t.Errorf("endpoint called %d times, want 0", calls.Load())
	}
	if len(store.Messages()) != 1 || store.Messages()[0].Content != chatconnect.MsgNotConfigured {
		t.Errorf("store = %+v, want the terminal message persisted", store.Messages())
	}
}

// A ValidationException from the endpoint becomes the validation terminal
// delta and an error log entry classified as validation_error.
func TestGenerateStream_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"ValidationException: messages must alternate roles"}`))
	}))
	defer server.Close()

	logger := &recordLogger{}
	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL), WithLogger(logger))

	got := collect(conn.GenerateStream(context.Background(), userSays("Hi"), nil))

	if len(got) != 1 {
		t.Fatalf("got %d deltas, want exactly 1 terminal delta", len(got))
	}
	if got[0] != chatconnect.MsgValidation {
		t.Errorf("terminal delta = %q, want validation message", got[0])
	}

	entry, ok := logger.find("error", "generation failed")
	if !ok {
		t.Fatal("missing generation failed log entry")
	}
	if entry.fields["error_kind"] != chatconnect.KindValidation.String() {
		t.Errorf("error_kind = %v, want %v", entry.fields["error_kind"], chatconnect.KindValidation)
	}
	ctx, _ := entry.fields["context"].(map[string]interface{})
	if ctx == nil || ctx["first_message_role"] != "user" {
		t.Errorf("context = %v, want first_message_role enrichment", entry.fields["context"])
	}
}

func TestGenerateStream_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"AccessDeniedException: not authorized"}`))
	}))
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))

	got := collect(conn.GenerateStream(context.Background(), userSays("Hi"), nil))
	if len(got) != 1 || got[0] != chatconnect.MsgAuth {
		t.Errorf("deltas = %v, want one auth terminal delta", got)
	}
}

func TestGenerateStream_UnknownError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`internal failure`))
	}))
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))

	got := collect(conn.GenerateStream(context.Background(), userSays("Hi"), nil))
	if len(got) != 1 || got[0] != chatconnect.MsgUnknown {
		t.Errorf("deltas = %v, want one generic terminal delta", got)
	}
}

// Invalid caller overrides short-circuit to the validation terminal delta
// before any network call.
func TestGenerateStream_InvalidOverrides(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))

	got := collect(conn.GenerateStream(context.Background(), userSays("Hi"), &chatconnect.GenerationParams{
		MaxTokens: intPtr(0),
	}))
	if len(got) != 1 || got[0] != chatconnect.MsgValidation {
		t.Errorf("deltas = %v, want one validation terminal delta", got)
	}
	if calls.Load() != 0 {
		t.Errorf("endpoint called %d times, want 0", calls.Load())
	}
}

// An empty conversation is sent as the one-message placeholder.
func TestGenerateStream_EmptyConversationPlaceholder(t *testing.T) {
	bodyCh := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		bodyCh <- buf
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))
	collect(conn.GenerateStream(context.Background(), nil, nil))

	body := string(<-bodyCh)
	if !strings.Contains(body, `"content":"Hello"`) {
		t.Errorf("request body = %s, want placeholder message", body)
	}
}

// Cancelling the context abandons the stream without a terminal delta and
// closes the channel.
func TestGenerateStream_EarlyCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 100; i++ {
			fmt.Fprintf(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"chunk\"}}\n\n")
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}))
	defer server.Close()

	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	deltas := conn.GenerateStream(ctx, userSays("Hi"), nil)

	first, ok := <-deltas
	if !ok || first != "chunk" {
		t.Fatalf("first delta = %q ok=%v", first, ok)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		for range deltas {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("delta channel did not close after cancellation")
	}
}

// Call-start logging reports the model and message count, never credentials.
func TestGenerateStream_CallStartLog(t *testing.T) {
	server := sseServer(t, `{"type":"message_stop"}`)
	defer server.Close()

	logger := &recordLogger{}
	conn := New(testCreds, testCatalog(t), WithBaseURL(server.URL), WithLogger(logger))

	collect(conn.GenerateStream(context.Background(), userSays("Hi"), nil))

	entry, ok := logger.find("info", "invoking model")
	if !ok {
		t.Fatal("missing invoking model log entry")
	}
	if entry.fields["message_count"] != 1 {
		t.Errorf("message_count = %v, want 1", entry.fields["message_count"])
	}
	for _, e := range logger.entries {
		for _, v := range e.fields {
			if s, ok := v.(string); ok && strings.Contains(s, testCreds.SecretKey) {
				t.Errorf("secret key leaked into log fields: %v", e.fields)
			}
		}
	}
}
