package console

import (
	"io"
	"strings"
	"sync"
)

// Simple console writes lines to a plain writer, stdout in headless mode
type Simple struct {
	consoleOut chan string // string channel, to which the console data is sent to
	out        io.Writer
	once       sync.Once
	done       chan struct{}
}

// NewSimple returns a console writing to out
func NewSimple(out io.Writer) *Simple {
	c := new(Simple)
	c.consoleOut = make(chan string, 64)
	c.done = make(chan struct{})
	c.out = out
	c.initSimple()
	return c
}

func (c *Simple) initSimple() {
	go func() {
		defer close(c.done)
		for s := range c.consoleOut {
			io.WriteString(c.out, s)
		}
	}()
}

// WriteConsole displays a string on the console
func (c *Simple) WriteConsole(msg string) error {
	for _, line := range strings.Split(msg, "\n") {
		if line != "" {
			c.consoleOut <- line + "\n"
		}
	}
	return nil
}

// Close flushes what was written so far. The console can't be written to
// afterwards.
func (c *Simple) Close() {
	c.once.Do(func() {
		close(c.consoleOut)
	})
	<-c.done
}
