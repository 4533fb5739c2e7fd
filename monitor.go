package main

import (
	"context"
	"fmt"
	"rtos/console"
	"rtos/system"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
)

// monitor owns the gocui views showing the running board
type monitor struct {
	sys    *system.System
	status console.Console
}

// gocui layout
func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	split := maxX / 2

	// up left -> console, LCD updates and kernel messages
	if v, err := g.SetView("console", 0, 0, split-1, maxY-14); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Console"
		v.Autoscroll = true
		v.Wrap = true
	}

	// up right -> process table
	if v, err := g.SetView("tasks", split, 0, maxX-1, maxY-14); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Tasks"
	}

	// middle -> register values and board status
	if v, err := g.SetView("registers", 0, maxY-13, maxX-1, maxY-10); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
		v.Wrap = true
	}

	// down -> command replies
	if v, err := g.SetView("status", 0, maxY-9, maxX-1, maxY-4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		v.Autoscroll = true
	}

	// command line
	if v, err := g.SetView("cmd", 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Command (help for a list)"
		v.Editable = true
		if _, err := g.SetCurrentView("cmd"); err != nil {
			return err
		}
	}
	return nil
}

func (m *monitor) bind(g *gocui.Gui) error {
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quitKey); err != nil {
		return err
	}
	return g.SetKeybinding("cmd", gocui.KeyEnter, gocui.ModNone, m.enter)
}

// enter runs the command typed into the command view
func (m *monitor) enter(g *gocui.Gui, v *gocui.View) error {
	line := strings.TrimSpace(v.Buffer())
	v.Clear()
	if err := v.SetCursor(0, 0); err != nil {
		return err
	}
	if line == "" {
		return nil
	}
	reply, err := execLine(m.sys, line)
	if err != nil {
		reply = err.Error()
	}
	return m.status.WriteConsole("> " + line + "\n" + reply)
}

// refresh redraws the tasks and registers views once a second, like a
// front panel. It draws once more when the kernel is done.
func (m *monitor) refresh(ctx context.Context, g *gocui.Gui, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			done = nil
		case <-ticker.C:
		}
		table := m.sys.ProcessTable()
		regs := m.sys.Kernel.Snapshot().CPU.DumpRegisters()
		status := m.sys.Status()
		t := tick
		g.Update(func(g *gocui.Gui) error {
			v, err := g.View("tasks")
			if err != nil {
				return err
			}
			v.Clear()
			fmt.Fprint(v, table)

			v, err = g.View("registers")
			if err != nil {
				return err
			}
			v.Clear()
			fmt.Fprintf(v, "%s\n%s <t : 0x%x>", regs, status, t)
			return nil
		})
		tick++
	}
}

func quitKey(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
