package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/mattn/go-runewidth"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Command is a parsed monitor command line
type Command struct {
	Name string
	Args []string
}

type commandDef struct {
	usage   string
	minArgs int
	maxArgs int
	help    string
}

var commands = map[string]commandDef{
	"ps":    {"ps", 0, 0, "show the process table"},
	"regs":  {"regs", 0, 0, "show the cpu registers"},
	"press": {"press", 0, 0, "push the board button (P1.1)"},
	"trace": {"trace [n]", 0, 1, "show the last n dispatches"},
	"hold":  {"hold <seconds>", 1, 1, "set HoldGreenLED"},
	"lcd":   {"lcd", 0, 0, "show the LCD history"},
	"halt":  {"halt", 0, 0, "let every task finish and stop the kernel"},
	"help":  {"help", 0, 0, "this text"},
}

// ParseCommand splits a line the way a shell would and checks it against
// the command table. An empty line parses to the zero Command.
func ParseCommand(line string) (Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("%q: %w", line, err)
	}
	if len(words) == 0 {
		return Command{}, nil
	}
	name := strings.ToLower(words[0])
	def, ok := commands[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, words[0])
	}
	args := words[1:]
	if len(args) < def.minArgs || len(args) > def.maxArgs {
		return Command{}, fmt.Errorf("%w: %s", ErrUsage, def.usage)
	}
	return Command{Name: name, Args: args}, nil
}

// Help lists the commands
func Help() string {
	names := []string{"ps", "regs", "press", "trace", "hold", "lcd", "halt", "help"}
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{commands[n].usage, commands[n].help})
	}
	return FormatTable(nil, rows)
}

// FormatTable pads columns to the widest cell, counting display width so
// wide runes line up in a terminal.
func FormatTable(header []string, rows [][]string) string {
	all := rows
	if header != nil {
		all = append([][]string{header}, rows...)
	}
	var widths []int
	for _, r := range all {
		for i, cell := range r {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	var b strings.Builder
	for _, r := range all {
		for i, cell := range r {
			if i == len(r)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
