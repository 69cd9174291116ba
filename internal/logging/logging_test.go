package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testStringer string

func (s testStringer) String() string { return string(s) }

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "hetero.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
	})

	LogEvent("hello %s", "world")
	Warn("unclosed tags at end: %s", "document/test")
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if !strings.Contains(content, "[WARN] unclosed tags at end: document/test") {
		t.Fatalf("expected Warn content, got: %s", content)
	}
}

func TestQuietKeepsConsoleClean(t *testing.T) {
	var out bytes.Buffer
	mu.Lock()
	console = &out
	mu.Unlock()
	t.Cleanup(func() {
		SetQuiet(false)
		mu.Lock()
		console = os.Stdout
		mu.Unlock()
		_ = Close()
	})

	logPath := filepath.Join(t.TempDir(), "quiet.log")
	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	SetQuiet(true)
	LogEvent("hidden")
	SetQuiet(false)
	LogEvent("shown")

	if strings.Contains(out.String(), "hidden") {
		t.Fatalf("quiet line reached the console: %s", out.String())
	}
	if !strings.Contains(out.String(), "shown") {
		t.Fatalf("expected console line, got: %s", out.String())
	}
	_ = Close()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hidden") {
		t.Fatalf("quiet line missing from log file: %s", data)
	}
}

func TestBuildRunMessageDefaults(t *testing.T) {
	msg := buildRunMessage(" parse ", " ", " done ", map[string]any{"examples": 3})
	if !strings.Contains(msg, "[PARSE]") {
		t.Fatalf("expected uppercased component, got: %s", msg)
	}
	if !strings.Contains(msg, "run=unknown") {
		t.Fatalf("expected default run, got: %s", msg)
	}
	if !strings.Contains(msg, "action=done") {
		t.Fatalf("expected action, got: %s", msg)
	}
	if !strings.Contains(msg, "payload={\"examples\":3}") {
		t.Fatalf("expected payload json, got: %s", msg)
	}
	if msg := buildRunMessage("", "stop.xml", "", nil); msg != "[RUN] run=stop.xml payload=null" {
		t.Fatalf("unexpected minimal message: %s", msg)
	}
}

func TestFormatPayloadVariants(t *testing.T) {
	if got := formatPayload(nil); got != "null" {
		t.Fatalf("nil payload: %s", got)
	}
	if got := formatPayload(" "); got != `""` {
		t.Fatalf("empty string payload: %s", got)
	}
	if got := formatPayload([]byte("hi")); got != "hi" {
		t.Fatalf("byte payload: %s", got)
	}
	if got := formatPayload(testStringer("ok")); got != "ok" {
		t.Fatalf("stringer payload: %s", got)
	}
}

func TestInitWithoutFileWritesConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	mu.Lock()
	console = &bytes.Buffer{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		console = os.Stdout
		mu.Unlock()
	})
	if err := Init(""); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	LogEvent("console")
	if buf.Len() != 0 {
		t.Fatalf("expected previous output replaced, got: %s", buf.String())
	}
}
