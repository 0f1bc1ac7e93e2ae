package gluerunner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/freitascorp/glue/pkg/gluescript"
	"github.com/freitascorp/glue/pkg/logger"
	"github.com/freitascorp/glue/pkg/observability"
	"github.com/freitascorp/glue/pkg/tui"
)

// Metrics is updated by every executor in the process.
var Metrics = observability.NewGlueMetrics()

// depMap holds resolved node results for one execution, keyed by node
// id. Writers are the tasks of earlier layers; readers are the tasks
// of later ones, so every read observes a completed write.
type depMap struct {
	mu      sync.Mutex
	results map[string]string
}

func newDepMap() *depMap {
	return &depMap{results: make(map[string]string)}
}

func (d *depMap) set(id, result string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results[id] = result
}

func (d *depMap) get(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result, ok := d.results[id]
	return result, ok
}

// Execute runs the layer plan. Layers run strictly in order; within a
// layer every node runs in its own goroutine and the layer joins
// before the next starts. A failing node does not cancel its
// siblings; they run to completion and the first error surfaces after
// the join. A runner executes once — calling Execute again returns an
// error without dispatching anything.
func (r *Runner) Execute(ctx context.Context) error {
	if r.done {
		return fmt.Errorf("runner already executed")
	}
	r.done = true

	client := resty.New()
	if r.timeout > 0 {
		client.SetTimeout(r.timeout)
	}

	deps := newDepMap()
	for i, layer := range r.layers {
		logger.Debug("executing layer %d/%d (%d nodes)", i+1, len(r.layers), len(layer))

		g := new(errgroup.Group)
		for _, node := range layer {
			g.Go(func() error {
				return r.executeNode(ctx, client, node, deps)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	r.Result = r.Root.Result
	return nil
}

// executeNode runs one node: substitute dependency results into the
// predicate, re-parse it, dispatch, select, and publish the result.
func (r *Runner) executeNode(ctx context.Context, client *resty.Client, node *gluescript.GlueNode, deps *depMap) error {
	for _, dep := range node.Deps {
		result, ok := deps.get(dep.ID)
		if !ok {
			return fmt.Errorf("dependency %s of %q has no result", dep.ID, node.Command)
		}
		node.SubstituteDependency(result)
	}

	if err := node.ResolvePredicate(); err != nil {
		return err
	}

	if r.verbose {
		fmt.Println(tui.RenderRequestInfo(node))
	}

	response, err := r.dispatch(ctx, client, node)
	if err != nil {
		return err
	}

	isRoot := node.Depth == 0
	result, err := SelectResponseValue(node.ResultSelector, response, !isRoot, isRoot)
	if err != nil {
		return err
	}

	node.Result = result
	deps.set(node.ID, result)

	if name := strings.TrimSpace(node.SaveAs); name != "" {
		r.heap.Set(name, result)
		Metrics.HeapWrites.Inc()
		logger.Debug("saved result under %q", name)
	}

	return nil
}

// dispatch reads the heap for req nodes and fires the HTTP request
// for everything else.
func (r *Runner) dispatch(ctx context.Context, client *resty.Client, node *gluescript.GlueNode) (string, error) {
	if node.Method == gluescript.MethodReq {
		Metrics.HeapReads.Inc()
		name := strings.TrimSpace(node.URL)
		value, ok := r.heap.Get(name)
		if !ok {
			return "", newRunError(ErrUnresolvedVariable, "variable %q is not saved in the heap", name)
		}
		return value, nil
	}

	start := time.Now()
	response, err := sendHTTPRequest(ctx, client, node)
	Metrics.RequestsTotal.Inc()
	Metrics.RequestLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		Metrics.RequestErrors.Inc()
		return "", err
	}
	return response, nil
}
