package gluescript

import (
	"strings"

	"github.com/google/uuid"
)

// GlueNode is the executable form of one command. Each node may carry
// child nodes as dependencies that run before it; their results
// substitute into the {} holes of the predicate, which is then
// re-parsed to produce the final method, URL, attributes and
// selector.
//
// During execution a node is owned by the task running its layer;
// parents read dependency results from the runner's dep map keyed by
// ID, never from the child node directly.
type GlueNode struct {
	// ID uniquely identifies the node within one runner execution.
	ID string

	// Command is the raw text this node was parsed from.
	Command string

	// Predicate is the command text with each dependency replaced
	// by a {} hole, in positional order of Deps.
	Predicate string

	// Method is the lowercased request method, or "req" for a heap
	// variable read.
	Method string

	// URL is the request target, or the variable name when Method
	// is "req".
	URL string

	// ResultSelector is the JSONPath applied to the response.
	ResultSelector string

	// Headers maps lowercased header names to values. Nil until the
	// first header attribute is applied.
	Headers map[string]string

	// Body is nil for body-less requests.
	Body *RequestBody

	// SaveAs names the heap variable the result is saved under.
	SaveAs string

	// Deps are the child nodes, ordered to match the {} holes.
	Deps []*GlueNode

	// Depth in the tree; the root is 0 and every dependency sits at
	// its parent's depth plus one.
	Depth int

	// Result is set by the executor after the node has run.
	Result string
}

// NewGlueNode creates an empty node for a command at the given depth.
func NewGlueNode(command string, depth int) *GlueNode {
	return &GlueNode{
		ID:      uuid.NewString(),
		Command: command,
		Depth:   depth,
	}
}

// NodeFromCommand parses a single command into a node tree rooted at
// depth 0. Multi-command scripts are rejected; they go through Parse.
func NodeFromCommand(command string) (*GlueNode, error) {
	nodes, err := Parse(command)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, newParseError(ErrInvalidToken,
			"expected a single command, got %d (';' scripts run through a stack)", len(nodes))
	}
	return nodes[0], nil
}

// ToNode projects the expression into a GlueNode at the given depth.
// Tokens populate the typed fields; child expressions project
// recursively at depth+1, appended in hole order.
func (e *Expression) ToNode(depth int) (*GlueNode, error) {
	node := NewGlueNode(e.Command(), depth)
	node.Predicate = e.Predicate()

	if err := node.applyTokens(e.Tokens); err != nil {
		return nil, err
	}

	for _, ref := range e.Refs {
		dep, err := ref.ToNode(depth + 1)
		if err != nil {
			return nil, err
		}
		node.Deps = append(node.Deps, dep)
	}

	return node, nil
}

// ResolvePredicate re-parses the node's predicate into its typed
// fields. The executor calls this after dependency results have been
// substituted into the holes, so values flowing in from child nodes
// land in the method, URL, attributes and selector exactly as if they
// had been written literally.
func (n *GlueNode) ResolvePredicate() error {
	n.Method = ""
	n.URL = ""
	n.ResultSelector = ""
	n.SaveAs = ""
	n.Headers = nil
	n.Body = nil

	mask := NewMask(n.Predicate)
	tokens, err := tokenizeMasked(mask.Masked(), mask)
	if err != nil {
		return err
	}
	return n.applyTokens(tokens)
}

func (n *GlueNode) applyTokens(tokens []Token) error {
	for _, token := range tokens {
		switch token.Kind {
		case TokenMethod:
			n.Method = strings.ToLower(token.Value)

		case TokenURL:
			n.URL = token.Value

		case TokenSelector:
			n.ResultSelector = token.Value

		case TokenSaveAs:
			n.SaveAs = token.Value

		case TokenBodyAttribute:
			key, value, err := token.KeyValue()
			if err != nil {
				return err
			}
			n.setBodyAttribute(key, value)

		case TokenBodyRaw:
			n.setBodyRaw(token.Value)

		case TokenHeaderAttribute:
			key, value, err := token.KeyValue()
			if err != nil {
				return err
			}
			n.setHeader(strings.ToLower(key), value)
		}
	}

	if n.Method == "" {
		return newParseError(ErrUnresolvedMethod, "failed to resolve method from %q", n.Predicate)
	}
	if n.URL == "" {
		return newParseError(ErrUnresolvedURL, "failed to resolve url from %q", n.Predicate)
	}

	return nil
}

// setBodyAttribute merges an attribute into the body as JSON type,
// resetting a raw body first.
func (n *GlueNode) setBodyAttribute(key, value string) {
	if n.Body == nil {
		n.Body = NewRequestBody(BodyJSON, nil)
	}
	n.Body.SetAttribute(key, value)
}

// setBodyRaw replaces the body with the raw fenced text, discarding
// any attribute body.
func (n *GlueNode) setBodyRaw(raw string) {
	if n.Body == nil {
		n.Body = NewRawBody(raw)
		return
	}
	n.Body.SetRaw(raw)
}

// setHeader inserts a header, creating the map on first insertion.
// Duplicate keys are last-write-wins.
func (n *GlueNode) setHeader(key, value string) {
	if n.Headers == nil {
		n.Headers = make(map[string]string)
	}
	n.Headers[key] = value
}

// SubstituteDependency replaces the next {} hole in the predicate
// with the given result. Holes are consumed left to right, matching
// the order of Deps.
func (n *GlueNode) SubstituteDependency(result string) {
	n.Predicate = strings.Replace(n.Predicate, DependencyHole, result, 1)
}

// HoleCount returns the number of {} holes left in the predicate.
func (n *GlueNode) HoleCount() int {
	return strings.Count(n.Predicate, DependencyHole)
}

// Walk visits the node and every dependency below it, parents first.
func (n *GlueNode) Walk(visit func(*GlueNode)) {
	visit(n)
	for _, dep := range n.Deps {
		dep.Walk(visit)
	}
}

// MaxDepth returns the deepest depth in the tree rooted at n.
func (n *GlueNode) MaxDepth() int {
	max := n.Depth
	for _, dep := range n.Deps {
		if d := dep.MaxDepth(); d > max {
			max = d
		}
	}
	return max
}
