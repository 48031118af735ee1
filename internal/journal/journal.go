// Package journal reads and writes the append-only newline-delimited
// JSON log of executed operations, one JournalEntry per line. The
// sync.Mutex-guarded lifecycle follows internal/transaction.Manager's
// shape, but replaces its single-JSON-array persistence
// (rewrite-the-whole-file-per-write) with true append-only writes,
// since a shared array file can't be tailed safely by a concurrently
// running undo command.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

// Writer appends JournalEntry records to a file, one per line, in
// operation execution order.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// OpenWriter opens (creating if necessary) path for append.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Writer{file: f}, nil
}

// Append writes one entry and flushes it to disk before returning, so
// a crash mid-apply never loses a record that's already on the line.
func (w *Writer) Append(entry types.JournalEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("journal: marshal entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("journal: write entry: %w", err)
	}
	return w.file.Sync()
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadAll parses every entry in an NDJSON journal file. Blank lines
// are permitted and ignored.
func ReadAll(path string) ([]types.JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer f.Close()

	var entries []types.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}
		var entry types.JournalEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("journal: parse entry at line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	return entries, nil
}

func bytesTrimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
