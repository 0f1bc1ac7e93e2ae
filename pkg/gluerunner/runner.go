package gluerunner

import (
	"os"
	"time"

	"github.com/freitascorp/glue/pkg/gluescript"
)

// Runner owns one compiled request tree and its execution result.
// Compilation flattens the tree into layers indexed by depth, deepest
// first, so every node's dependencies complete in an earlier layer.
// A runner executes at most once.
type Runner struct {
	// Root is the depth-0 node; its result becomes the runner's.
	Root *gluescript.GlueNode

	// Result is the root node's result after Execute.
	Result string

	layers  [][]*gluescript.GlueNode
	heap    *Heap
	verbose bool
	timeout time.Duration
	done    bool
}

// NewRunnerFromNode compiles a runner from an already-parsed root
// node bound to the given heap.
func NewRunnerFromNode(root *gluescript.GlueNode, heap *Heap, verbose bool) *Runner {
	r := &Runner{Root: root, heap: heap, verbose: verbose}
	r.planLayers()
	return r
}

// NewRunnerFromCommand parses a single command and compiles it into a
// runner. Scripts with ';' separators are rejected here; they go
// through Stack.PushCommand.
func NewRunnerFromCommand(command string, heap *Heap, verbose bool) (*Runner, error) {
	root, err := gluescript.NodeFromCommand(command)
	if err != nil {
		return nil, err
	}
	return NewRunnerFromNode(root, heap, verbose), nil
}

// NewRunnerFromFile reads the file as UTF-8 text and compiles it like
// NewRunnerFromCommand.
func NewRunnerFromFile(path string, heap *Heap, verbose bool) (*Runner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapRunError(ErrFileRead, err, "read command file %s: %v", path, err)
	}
	return NewRunnerFromCommand(string(data), heap, verbose)
}

// SetTimeout sets the per-request timeout applied to every HTTP
// dispatch of this runner. Zero means no timeout.
func (r *Runner) SetTimeout(timeout time.Duration) { r.timeout = timeout }

// Heap returns the heap the runner is bound to.
func (r *Runner) Heap() *Heap { return r.heap }

// Done reports whether Execute has been called, whether it succeeded
// or failed. It turns true as soon as Execute starts.
func (r *Runner) Done() bool { return r.done }

// Layers returns the execution plan: one slice of nodes per layer,
// deepest first, root alone in the final layer.
func (r *Runner) Layers() [][]*gluescript.GlueNode { return r.layers }

// planLayers buckets every node of the tree by depth and orders the
// buckets from the deepest down to the root. Within a layer nodes
// keep tree-walk order.
func (r *Runner) planLayers() {
	maxDepth := r.Root.MaxDepth()

	buckets := make([][]*gluescript.GlueNode, maxDepth+1)
	r.Root.Walk(func(n *gluescript.GlueNode) {
		buckets[n.Depth] = append(buckets[n.Depth], n)
	})

	r.layers = make([][]*gluescript.GlueNode, 0, maxDepth+1)
	for depth := maxDepth; depth >= 0; depth-- {
		r.layers = append(r.layers, buckets[depth])
	}
}
