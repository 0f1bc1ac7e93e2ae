package gluerunner

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/freitascorp/glue/pkg/gluescript"
)

// sendHTTPRequest fires the node's request and returns the response
// body as text. The node must be fully resolved.
//
// JSON bodies are encoded as a key→value object with Content-Type
// application/json; FORM bodies go URL-encoded; ARBITRARY bodies are
// sent verbatim, with Content-Type left to a header attribute.
// Headers attach as resolved, last write winning on duplicates.
func sendHTTPRequest(ctx context.Context, client *resty.Client, node *gluescript.GlueNode) (string, error) {
	switch node.Method {
	case gluescript.MethodGet, gluescript.MethodPost, gluescript.MethodPut,
		gluescript.MethodPatch, gluescript.MethodDelete:
	default:
		return "", newRunError(ErrUnknownMethod, "unknown request method %q", node.Method)
	}

	request := client.R().SetContext(ctx)

	if node.Body != nil {
		switch node.Body.Type {
		case gluescript.BodyJSON:
			request.SetHeader("Content-Type", "application/json")
			request.SetBody(node.Body.Values)
		case gluescript.BodyForm:
			request.SetFormData(node.Body.Values)
		case gluescript.BodyArbitrary:
			request.SetBody(node.Body.Raw)
		}
	}

	if len(node.Headers) > 0 {
		request.SetHeaders(node.Headers)
	}

	response, err := request.Execute(strings.ToUpper(node.Method), node.URL)
	if err != nil {
		return "", wrapRunError(ErrTransport, err, "%s %s: %v", strings.ToUpper(node.Method), node.URL, err)
	}

	return response.String(), nil
}
