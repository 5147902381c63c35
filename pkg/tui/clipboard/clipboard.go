// ABOUTME: Clipboard text read/write through atotto/clipboard with an in-memory stand-in
// ABOUTME: Pasted text is normalized to LF line endings before it reaches the composer

package clipboard

import (
	"errors"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard not supported")

// Clipboard reads and writes text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// System is the platform clipboard.
type System struct{}

// ReadText returns the clipboard text with CRLF folded to LF.
func (System) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	return Normalize(s), nil
}

// WriteText copies text to the system clipboard.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Write copies text to the system clipboard.
func Write(text string) error { return System{}.WriteText(text) }

// Memory is a process-local clipboard for tests and headless runs.
type Memory struct {
	mu   sync.Mutex
	text string
}

// ReadText returns the last written text.
func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteText stores text.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = Normalize(text)
	return nil
}

// Normalize folds CRLF and lone CR to LF and drops NUL bytes.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\x00", "")
}
