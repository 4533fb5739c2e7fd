package console

import (
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"
)

// Gui writes to a gocui view
type Gui struct {
	consoleOut chan string // string channel, to which the console data is sent to
	g          *gocui.Gui  // main gocui GUI object
	view       string      // name of the view lines go to
}

// NewGui returns a console writing to the named view of g
func NewGui(g *gocui.Gui, view string) *Gui {
	c := new(Gui)
	c.consoleOut = make(chan string, 64)
	c.g = g
	c.view = view
	c.initGui()
	return c
}

// initGui starts the goroutine moving lines into the view. gocui views may
// only be touched from Update callbacks.
func (c *Gui) initGui() {
	go func() {
		for s := range c.consoleOut {
			c.g.Update(func(g *gocui.Gui) error {
				v, err := g.View(c.view)
				if err != nil {
					return nil
				}
				fmt.Fprint(v, s)
				return nil
			})
		}
	}()
}

// WriteConsole displays a string on the console
func (c *Gui) WriteConsole(msg string) error {
	for _, line := range strings.Split(msg, "\n") {
		if line != "" {
			c.consoleOut <- line + "\n"
		}
	}
	return nil
}
