package board

import (
	"strconv"
	"strings"
	"sync"
)

// Digits : character positions of the segment display
const Digits = 6

// historyLimit : lines of LCD history kept for the monitor
const historyLimit = 64

// LCD is the six character segment display
type LCD struct {
	mu      sync.Mutex
	cells   [Digits]byte
	history []string
	out     Display
}

// NewLCD returns a blank display mirrored to d
func NewLCD(d Display) *LCD {
	l := &LCD{out: d}
	l.blank()
	return l
}

func (l *LCD) blank() {
	for i := range l.cells {
		l.cells[i] = ' '
	}
}

// ShowChar puts c at position pos, 1 being the leftmost. Nothing is shown
// until Commit.
func (l *LCD) ShowChar(c byte, pos int) {
	if pos < 1 || pos > Digits {
		return
	}
	if c < ' ' || c > '~' {
		c = ' '
	}
	l.mu.Lock()
	l.cells[pos-1] = c
	l.mu.Unlock()
}

// ShowNumber displays n right aligned. Numbers wider than the display keep
// their low digits.
func (l *LCD) ShowNumber(n uint) {
	s := strconv.FormatUint(uint64(n), 10)
	if len(s) > Digits {
		s = s[len(s)-Digits:]
	}
	l.mu.Lock()
	l.blank()
	copy(l.cells[Digits-len(s):], s)
	l.mu.Unlock()
	l.Commit()
}

// Clear blanks the display
func (l *LCD) Clear() {
	l.mu.Lock()
	l.blank()
	l.mu.Unlock()
	l.Commit()
}

// Commit latches the current cells: they're logged and mirrored to the
// display if they differ from what was shown last.
func (l *LCD) Commit() {
	l.mu.Lock()
	text := string(l.cells[:])
	if n := len(l.history); n > 0 && l.history[n-1] == text {
		l.mu.Unlock()
		return
	}
	if len(l.history) == historyLimit {
		copy(l.history, l.history[1:])
		l.history = l.history[:historyLimit-1]
	}
	l.history = append(l.history, text)
	out := l.out
	l.mu.Unlock()

	if out != nil {
		out.WriteConsole("LCD [" + text + "]")
	}
}

// Text returns what the cells hold right now
func (l *LCD) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return string(l.cells[:])
}

// History returns the committed displays, oldest first
func (l *LCD) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.history...)
}

// Frames returns the six character windows of words scrolling in from the
// right and off to the left, blank at either end.
func Frames(words string) []string {
	pad := strings.Repeat(" ", Digits)
	s := pad + words + pad
	var out []string
	for i := 0; i+Digits <= len(s); i++ {
		out = append(out, s[i:i+Digits])
	}
	return out
}
