// Package shell is a line-oriented browser for terminals where the full
// screen UI is unavailable (pipes, dumb terminals, --plain).
package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentic-research/divtree/internal/tree"
	"github.com/chzyer/readline"
)

// ErrQuit is returned by Exec when the user asks to leave.
var ErrQuit = errors.New("quit requested")

// Shell reads commands and applies them to a tree. Rows are addressed by
// their index in the last listing.
type Shell struct {
	tree *tree.Tree
	rl   *readline.Instance
	out  io.Writer
}

// New returns a shell writing to out. rl may be nil when commands are fed
// through Exec directly.
func New(t *tree.Tree, rl *readline.Instance, out io.Writer) *Shell {
	return &Shell{tree: t, rl: rl, out: out}
}

// NewReadline builds a readline instance with divtree's prompt and completer.
func NewReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "divtree> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("show"),
			readline.PcItem("open"),
			readline.PcItem("close"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
}

// Run prints the tree and loops over input lines until quit or EOF.
func (s *Shell) Run() error {
	s.show()
	for {
		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Exec(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// Exec runs a single command line.
func (s *Shell) Exec(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "show", "ls":
		s.show()
		return nil
	case "open", "expand", "o":
		n, err := s.row(args[1:])
		if err != nil {
			return err
		}
		if err := s.tree.Expand(n); err != nil {
			return err
		}
		if len(n.Children) == 0 {
			fmt.Fprintf(s.out, "%s has no child divisions\n", n.Label)
		}
		s.show()
		return nil
	case "close", "collapse", "c":
		n, err := s.row(args[1:])
		if err != nil {
			return err
		}
		s.tree.Collapse(n)
		s.show()
		return nil
	case "help", "?":
		fmt.Fprint(s.out, helpText)
		return nil
	case "quit", "exit", "q":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
}

func (s *Shell) row(args []string) (*tree.Node, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one row number")
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("bad row number %q", args[0])
	}
	rows := s.tree.Visible()
	if i < 1 || i > len(rows) {
		return nil, fmt.Errorf("row %d out of range 1..%d", i, len(rows))
	}
	return rows[i-1], nil
}

func (s *Shell) show() {
	rows := s.tree.Visible()
	if len(rows) == 0 {
		fmt.Fprintln(s.out, "No divisions.")
		return
	}
	width := len(strconv.Itoa(len(rows)))
	for i, n := range rows {
		fmt.Fprintf(s.out, "%*d  %s%s %s\n", width, i+1, strings.Repeat("  ", n.Depth), marker(n), n.Label)
	}
}

func marker(n *tree.Node) string {
	switch {
	case n.Expanded:
		return "-"
	case n.Expandable():
		return "+"
	default:
		return " "
	}
}

const helpText = `Commands:
  show            list the visible rows
  open <row>      expand a row (loads its children on first use)
  close <row>     collapse a row
  help            this text
  quit            leave
`
