// Package tui – render.go
// Rendering helpers shared by the shell, the CLI, and the executor's
// verbose output.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/freitascorp/glue/pkg/gluescript"
)

const promptText = "glue >"

// RenderPrompt returns the interactive prompt, green on a TTY.
func RenderPrompt() string {
	return styled(PromptStyle, promptText) + " "
}

// RenderError returns an error line in the prompt's shape, red on a
// TTY: `glue > <message>`.
func RenderError(message string) string {
	return styled(ErrorStyle, fmt.Sprintf("%s %s", promptText, message))
}

// RenderRequestInfo returns the gray verbose line for a node about to
// be dispatched: the uppercased method and URL, then one indented
// key=value line per body attribute, in stable order.
func RenderRequestInfo(node *gluescript.GlueNode) string {
	var b strings.Builder
	b.WriteString(styled(InfoStyle, fmt.Sprintf("> %s %s", strings.ToUpper(node.Method), node.URL)))

	if node.Body != nil && len(node.Body.Values) > 0 {
		keys := make([]string, 0, len(node.Body.Values))
		for key := range node.Body.Values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			b.WriteString("\n\t")
			b.WriteString(styled(InfoStyle, fmt.Sprintf("%s=%s", key, node.Body.Values[key])))
		}
	}

	return b.String()
}

// RenderGoodbye returns the shell farewell line.
func RenderGoodbye() string {
	return styled(MutedStyle, "bye") + "\n"
}
