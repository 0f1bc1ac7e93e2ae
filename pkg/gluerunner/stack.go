package gluerunner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/freitascorp/glue/pkg/gluescript"
)

// Stack runs compiled runners sequentially over a shared heap, so a
// later runner's req reads observe every save an earlier runner made.
// Runners accumulate; the next index tracks the one to run next.
type Stack struct {
	runners []*Runner
	heap    *Heap
	next    int
	timeout time.Duration
}

// NewStack creates an empty stack with a fresh heap.
func NewStack() *Stack {
	return &Stack{heap: NewHeap()}
}

// SetTimeout sets the per-request timeout applied to runners that
// PushCommand and PushFile compile after the call. Runners added with
// PushRunner keep their own timeout. Zero means no timeout.
func (s *Stack) SetTimeout(timeout time.Duration) { s.timeout = timeout }

// Heap returns the stack's shared heap.
func (s *Stack) Heap() *Heap { return s.heap }

// PushCommand compiles a script of one or more ';'-separated commands
// into runners bound to the stack's heap and appends them in order.
func (s *Stack) PushCommand(script string, verbose bool) error {
	roots, err := gluescript.Parse(script)
	if err != nil {
		return err
	}
	for _, root := range roots {
		runner := NewRunnerFromNode(root, s.heap, verbose)
		runner.SetTimeout(s.timeout)
		s.runners = append(s.runners, runner)
	}
	return nil
}

// PushFile reads a command file as UTF-8 text and pushes its script
// like PushCommand.
func (s *Stack) PushFile(path string, verbose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapRunError(ErrFileRead, err, "read command file %s: %v", path, err)
	}
	return s.PushCommand(string(data), verbose)
}

// PushRunner appends an already-compiled runner, rebinding it to the
// stack's heap so saves and reads share the same store.
func (s *Stack) PushRunner(runner *Runner) {
	runner.heap = s.heap
	s.runners = append(s.runners, runner)
}

// ExecuteNext runs the runner at the next index. The index advances
// before execution, so a failing runner surfaces its error without
// wedging the stack.
func (s *Stack) ExecuteNext(ctx context.Context) error {
	if s.next >= len(s.runners) {
		return fmt.Errorf("no runner to execute")
	}

	runner := s.runners[s.next]
	s.next++

	return runner.Execute(ctx)
}

// Current returns the last-executed runner, or nil if none has run.
func (s *Stack) Current() *Runner {
	if s.next == 0 {
		return nil
	}
	return s.runners[s.next-1]
}

// Pending returns how many pushed runners have not executed yet.
func (s *Stack) Pending() int {
	return len(s.runners) - s.next
}
