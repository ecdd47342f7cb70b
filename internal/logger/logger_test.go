package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	Info("channel opened", KeyChannelID, 1, KeyTokenID, 1)
	out := buf.String()
	if !strings.Contains(out, "channel opened") {
		t.Errorf("message missing from output: %q", out)
	}
	if !strings.Contains(out, "channel_id=1") {
		t.Errorf("field missing from output: %q", out)
	}
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("level missing from output: %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)

	Info("session created", KeySessionID, "ns=1;g=abc")
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "session created" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record[KeySessionID] != "ns=1;g=abc" {
		t.Errorf("session_id = %v", record[KeySessionID])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", false)

	Debug("hidden")
	Info("hidden too")
	Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn level missing: %q", out)
	}
}

func TestTraceAndFatalLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "TRACE", "text", false)

	Trace("chunk received", KeyChunkType, "F")
	Fatal("invariant violated")

	out := buf.String()
	if !strings.Contains(out, "[TRACE]") {
		t.Errorf("trace level missing: %q", out)
	}
	if !strings.Contains(out, "[FATAL]") {
		t.Errorf("fatal level missing: %q", out)
	}
}

func TestCategoryLogger(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	Category("transport").Info("listening")
	if !strings.Contains(buf.String(), "category=transport") {
		t.Errorf("category tag missing: %q", buf.String())
	}
}

func TestInvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)
	SetLevel("LOUD") // ignored

	Info("still works")
	if !strings.Contains(buf.String(), "still works") {
		t.Errorf("logger broken by invalid level: %q", buf.String())
	}
}
