package gluerunner

import (
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/pretty"
)

// SelectResponseValue applies a JSONPath selector to a response.
//
// An empty selector returns the response unchanged. Otherwise the
// response is parsed as JSON and the selector evaluated against it.
// With firstOnly the first match is returned stringified (strings
// as-is, everything else serialized); no match is an error. Without
// firstOnly the full match array is serialized, indented when pretty
// is set and compact otherwise.
func SelectResponseValue(selector, response string, firstOnly, prettyOutput bool) (string, error) {
	if selector == "" {
		return response, nil
	}

	data, err := oj.ParseString(response)
	if err != nil {
		return "", wrapRunError(ErrSelectorInvalid, err, "response is not valid JSON: %v", err)
	}

	path, err := jp.ParseString(selector)
	if err != nil {
		return "", wrapRunError(ErrSelectorInvalid, err, "invalid selector %q: %v", selector, err)
	}

	matches := path.Get(data)

	if firstOnly {
		if len(matches) == 0 {
			return "", newRunError(ErrSelectorNoMatch,
				"selector %q matched nothing in the response", selector)
		}
		return stringifyScalar(matches[0]), nil
	}

	compact := oj.JSON(matches)
	if prettyOutput {
		return strings.TrimSpace(string(pretty.Pretty([]byte(compact)))), nil
	}
	return compact, nil
}

// stringifyScalar renders a single selector match: strings keep their
// value, everything else is serialized as JSON.
func stringifyScalar(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return oj.JSON(value)
}
