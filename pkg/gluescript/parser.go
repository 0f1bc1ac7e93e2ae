package gluescript

import "strings"

// Parse compiles a script of one or more ';'-separated commands into
// root node trees, in order. The script is masked first, so
// separators inside quoted text or raw body fences do not split
// commands. Empty segments are dropped.
func Parse(script string) ([]*GlueNode, error) {
	expressions, err := ParseExpressions(script)
	if err != nil {
		return nil, err
	}

	nodes := make([]*GlueNode, 0, len(expressions))
	for _, expression := range expressions {
		node, err := expression.ToNode(0)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// ParseExpressions splits a masked script on ';' and parses each
// non-empty segment into an Expression.
func ParseExpressions(script string) ([]*Expression, error) {
	m := NewMask(script)

	var expressions []*Expression
	for _, segment := range strings.Split(m.Masked(), CommandSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		expression, err := ExpressionFromMask(Derive(segment, m))
		if err != nil {
			return nil, err
		}
		expressions = append(expressions, expression)
	}

	return expressions, nil
}
