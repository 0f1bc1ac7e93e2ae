// Package glueshell implements the interactive mode: a readline loop
// that pushes each entered command into a stack and executes it, so
// results saved by earlier commands stay reusable for the whole
// session.
package glueshell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/freitascorp/glue/pkg/gluerunner"
	"github.com/freitascorp/glue/pkg/tui"
)

// Shell owns the session stack and the prompt loop.
type Shell struct {
	stack       *gluerunner.Stack
	verbose     bool
	historyFile string
}

// NewShell creates a shell around the given stack.
func NewShell(stack *gluerunner.Stack, verbose bool, historyFile string) *Shell {
	return &Shell{stack: stack, verbose: verbose, historyFile: historyFile}
}

// Run starts the prompt loop and blocks until the user exits with
// `exit`, `quit`, ^C, or EOF. Empty lines are ignored; a failing
// command prints its error and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          tui.RenderPrompt(),
		HistoryFile:     s.historyFile,
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		// No terminal for readline; fall back to a plain reader.
		return s.runSimple(ctx)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Print(tui.RenderGoodbye())
				return nil
			}
			fmt.Println(tui.RenderError(err.Error()))
			continue
		}

		if done := s.handleLine(ctx, line); done {
			fmt.Print(tui.RenderGoodbye())
			return nil
		}
	}
}

// runSimple is the fallback loop for non-TTY stdin.
func (s *Shell) runSimple(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(tui.RenderPrompt())
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Print(tui.RenderGoodbye())
				return nil
			}
			return err
		}

		if done := s.handleLine(ctx, line); done {
			fmt.Print(tui.RenderGoodbye())
			return nil
		}
	}
}

// handleLine executes one entered line and reports whether the
// session should end.
func (s *Shell) handleLine(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}
	if input == "exit" || input == "quit" {
		return true
	}

	if err := s.stack.PushCommand(input, s.verbose); err != nil {
		fmt.Println(tui.RenderError(err.Error()))
		return false
	}

	for s.stack.Pending() > 0 {
		if err := s.stack.ExecuteNext(ctx); err != nil {
			fmt.Println(tui.RenderError(err.Error()))
			continue
		}
		fmt.Println(s.stack.Current().Result)
	}

	return false
}
