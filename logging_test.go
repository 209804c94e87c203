package chatconnect

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestZerologLogger_MasksSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, "test")

	logger.Info("credentials loaded", Fields{
		"aws_secret_access_key": "wJalrXUtnFEMI",
		"access_key":            "AKIAIOSFODNN7",
		"region":                "us-east-1",
	})

	out := buf.String()
	if strings.Contains(out, "wJalrXUtnFEMI") {
		t.Errorf("secret key leaked into log output: %s", out)
	}
	if strings.Contains(out, "AKIAIOSFODNN7") {
		t.Errorf("access key leaked into log output: %s", out)
	}
	if !strings.Contains(out, "us-east-1") {
		t.Errorf("non-sensitive field missing from output: %s", out)
	}
	if !strings.Contains(out, "****") {
		t.Errorf("masked placeholder missing from output: %s", out)
	}
}

func TestZerologLogger_ExtraSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, "test", "session_cookie")

	logger.Error("request rejected", Fields{"session_cookie": "c0ffee"})

	if strings.Contains(buf.String(), "c0ffee") {
		t.Errorf("extra sensitive field leaked: %s", buf.String())
	}
}

func TestZerologLogger_StructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, "bedrock")

	logger.Info("invoking model", Fields{
		"model":         "Claude 3.7 V1",
		"message_count": 2,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["component"] != "bedrock" {
		t.Errorf("component = %v, want bedrock", entry["component"])
	}
	if entry["model"] != "Claude 3.7 V1" {
		t.Errorf("model = %v", entry["model"])
	}
	if entry["message"] != "invoking model" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestZerologLogger_NilFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, "test")

	logger.Debug("no fields", nil)
	logger.Warn("still no fields", nil)
	// Must not panic; output presence depends on the global level.
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	logger.Debug("a", nil)
	logger.Info("b", Fields{"k": "v"})
	logger.Warn("c", nil)
	logger.Error("d", nil)
}
