package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

// TestLogBuffer captures JSON log lines written by a test logger. It is safe
// for concurrent writers, which the pipeline's worker goroutines are.
type TestLogBuffer struct {
	mu  sync.Mutex
	raw bytes.Buffer
}

// Write implements io.Writer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw.Write(p)
}

// String returns everything logged so far.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw.String()
}

// Entries decodes every captured line, failing the test on malformed JSON.
func (b *TestLogBuffer) Entries(t *testing.T) []map[string]any {
	t.Helper()

	b.mu.Lock()
	data := bytes.Clone(b.raw.Bytes())
	b.mu.Unlock()

	var entries []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("malformed log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

// EntriesWithMessage returns the captured entries whose msg equals message.
func (b *TestLogBuffer) EntriesWithMessage(t *testing.T, message string) []map[string]any {
	t.Helper()

	var matched []map[string]any
	for _, entry := range b.Entries(t) {
		if entry[slog.MessageKey] == message {
			matched = append(matched, entry)
		}
	}
	return matched
}

// NewTestLogger returns a debug-level JSON logger and the buffer it writes to.
func NewTestLogger(t *testing.T) (*slog.Logger, *TestLogBuffer) {
	t.Helper()

	buf := &TestLogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
