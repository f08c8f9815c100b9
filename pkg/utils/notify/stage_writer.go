package notify

import (
	"fmt"
	"io"
	"sync"
	"unicode"
	"unicode/utf8"
)

// StageWriter separates stages with a blank line.
//
// A write that starts with a title emoji gets a leading newline when anything was
// written before it. Status symbols (► ✔ ✗ ⚠ ℹ ✚ ⏲) never count as titles.
type StageWriter struct {
	mu         sync.Mutex
	underlying io.Writer
	hasWritten bool
}

// NewStageWriter wraps underlying.
func NewStageWriter(underlying io.Writer) *StageWriter {
	return &StageWriter{underlying: underlying}
}

// Write implements io.Writer.
func (w *StageWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(data) == 0 {
		return 0, nil
	}

	if w.hasWritten && startsWithTitleEmoji(data) {
		_, err := w.underlying.Write([]byte{'\n'})
		if err != nil {
			return 0, fmt.Errorf("write stage separator: %w", err)
		}
	}

	written, err := w.underlying.Write(data)
	if written > 0 {
		w.hasWritten = true
	}

	if err != nil {
		return written, fmt.Errorf("write stage output: %w", err)
	}

	return written, nil
}

func startsWithTitleEmoji(data []byte) bool {
	first, _ := utf8.DecodeRune(data)
	if first == utf8.RuneError {
		return false
	}

	switch first {
	case '►', '✔', '✗', '⚠', 'ℹ', '✚', '⏲':
		return false
	}

	return unicode.Is(unicode.So, first)
}
