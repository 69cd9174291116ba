package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
	quiet   bool
	console io.Writer = os.Stdout
)

// Init routes the standard logger to the console and, when logPath is set, to
// that file as well.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
	}
	applyOutput()
	return nil
}

// SetQuiet keeps log lines off the console, for commands whose stdout is
// machine-readable. The log file, if any, still receives them.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
	applyOutput()
}

// applyOutput must be called with mu held.
func applyOutput() {
	var writers []io.Writer
	if !quiet {
		writers = append(writers, console)
	}
	if logFile != nil {
		writers = append(writers, logFile)
	}
	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(io.MultiWriter(writers...))
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// Warn logs a non-fatal problem with a [WARN] tag.
func Warn(format string, args ...any) {
	log.Println("[WARN] " + fmt.Sprintf(format, args...))
}

// LogRun logs one event about a named run with a structured payload.
func LogRun(component, run, action string, payload any) {
	log.Println(buildRunMessage(component, run, action, payload))
}

func buildRunMessage(component, run, action string, payload any) string {
	comp := strings.ToUpper(strings.TrimSpace(component))
	if comp == "" {
		comp = "RUN"
	}
	runValue := strings.TrimSpace(run)
	if runValue == "" {
		runValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", comp)}
	parts = append(parts, fmt.Sprintf("run=%s", runValue))
	if action = strings.TrimSpace(action); action != "" {
		parts = append(parts, fmt.Sprintf("action=%s", action))
	}
	parts = append(parts, fmt.Sprintf("payload=%s", formatPayload(payload)))
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
