package gluerunner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freitascorp/glue/pkg/gluescript"
)

func TestRunner_LayerPlan(t *testing.T) {
	runner, err := NewRunnerFromCommand(
		"get http://a/{get http://b/{get http://c}/}/ ~x={get http://d}",
		NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}

	layers := runner.Layers()
	if len(layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(layers))
	}

	// Deepest first, one depth per layer, root alone in the last.
	previousDepth := layers[0][0].Depth
	for i, layer := range layers {
		if len(layer) == 0 {
			t.Fatalf("layer %d is empty", i)
		}
		for _, node := range layer {
			if node.Depth != layer[0].Depth {
				t.Errorf("layer %d mixes depths", i)
			}
		}
		if layer[0].Depth > previousDepth {
			t.Errorf("layer %d depth %d after depth %d", i, layer[0].Depth, previousDepth)
		}
		previousDepth = layer[0].Depth
	}

	last := layers[len(layers)-1]
	if len(last) != 1 || last[0].Depth != 0 {
		t.Errorf("final layer = %d nodes at depth %d", len(last), last[0].Depth)
	}

	// Every dependency sits in a strictly earlier layer.
	layerOf := map[string]int{}
	for i, layer := range layers {
		for _, node := range layer {
			layerOf[node.ID] = i
		}
	}
	runner.Root.Walk(func(n *gluescript.GlueNode) {
		for _, dep := range n.Deps {
			if layerOf[dep.ID] >= layerOf[n.ID] {
				t.Errorf("dependency %q not in an earlier layer", dep.Command)
			}
		}
	})
}

func TestRunner_ExecuteSimpleGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		fmt.Fprint(w, "hello from the server")
	}))
	defer server.Close()

	runner, err := NewRunnerFromCommand("get "+server.URL, NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	if err := runner.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if runner.Result != "hello from the server" {
		t.Errorf("Result = %q", runner.Result)
	}
	if !runner.Done() {
		t.Error("Done = false")
	}
}

func TestRunner_ExecuteNestedDependency(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("inner method = %s", r.Method)
		}
		fmt.Fprint(w, `{"id": 42}`)
	})
	mux.HandleFunc("/item/42/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "widget"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	command := fmt.Sprintf("get %s/item/{post %s/user ^$.id}/", server.URL, server.URL)
	runner, err := NewRunnerFromCommand(command, NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	if len(runner.Layers()) != 2 {
		t.Fatalf("layers = %d", len(runner.Layers()))
	}

	if err := runner.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if runner.Result != `{"name": "widget"}` {
		t.Errorf("Result = %q", runner.Result)
	}
}

func TestRunner_RootSelectorIsPretty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42}`)
	}))
	defer server.Close()

	runner, err := NewRunnerFromCommand("get "+server.URL+" ^$.id", NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	if err := runner.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The root selector returns the match array, short enough to
	// stay on one line.
	if runner.Result != "[42]" {
		t.Errorf("Result = %q", runner.Result)
	}
}

func TestRunner_SiblingsInOneLayer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "one") })
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "two") })
	mux.HandleFunc("/one/two/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "joined") })
	server := httptest.NewServer(mux)
	defer server.Close()

	command := fmt.Sprintf("get %s/{get %s/a}/{get %s/b}/", server.URL, server.URL, server.URL)
	runner, err := NewRunnerFromCommand(command, NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	if err := runner.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if runner.Result != "joined" {
		t.Errorf("Result = %q", runner.Result)
	}
}

func TestRunner_SaveAsWritesHeap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "abc"}`)
	}))
	defer server.Close()

	heap := NewHeap()
	runner, err := NewRunnerFromCommand("get "+server.URL+" ^$.id >token", heap, false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	if err := runner.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	value, ok := heap.Get("token")
	if !ok {
		t.Fatal("token not saved")
	}
	if value != runner.Result {
		t.Errorf("heap = %q, result = %q", value, runner.Result)
	}
}

func TestRunner_ReqReadsHeap(t *testing.T) {
	heap := NewHeap()
	heap.Set("token", "saved-value")

	runner, err := NewRunnerFromCommand("req token", heap, false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	if err := runner.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if runner.Result != "saved-value" {
		t.Errorf("Result = %q", runner.Result)
	}
}

func TestRunner_ReqMissingVariable(t *testing.T) {
	runner, err := NewRunnerFromCommand("req nothing", NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	err = runner.Execute(context.Background())
	assertRunKind(t, err, ErrUnresolvedVariable)
}

func TestRunner_ExecuteTwice(t *testing.T) {
	runner, err := NewRunnerFromCommand("req nothing", NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	_ = runner.Execute(context.Background())
	if err := runner.Execute(context.Background()); err == nil {
		t.Error("expected error on second Execute")
	}
}

func TestRunner_TransportError(t *testing.T) {
	// A closed server port: dispatch must surface a transport error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	runner, err := NewRunnerFromCommand("get "+url, NewHeap(), false)
	if err != nil {
		t.Fatalf("NewRunnerFromCommand: %v", err)
	}
	err = runner.Execute(context.Background())
	assertRunKind(t, err, ErrTransport)
}

func TestNewRunnerFromFile(t *testing.T) {
	_, err := NewRunnerFromFile("/nonexistent/glue/script", NewHeap(), false)
	assertRunKind(t, err, ErrFileRead)
}
