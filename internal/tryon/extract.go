package tryon

import (
	"fmt"
	"strings"
)

// URLer is the file-object shape some model outputs use: a value exposing
// its location through a method rather than a field.
type URLer interface {
	URL() string
}

// maxExtractDepth bounds sequence recursion. Model outputs are shallow in
// practice; the bound keeps the function total on adversarial input.
const maxExtractDepth = 8

// ExtractImageURL normalizes an arbitrarily shaped model output into a
// single image URL, or "" when none can be found. It never panics.
//
// Shapes, in precedence order: a bare string is taken as the URL; a
// sequence defers to its first element; a URLer's method result wins over
// a "url" field, which wins over "href", which wins over a stringified
// value carrying an HTTP scheme.
func ExtractImageURL(output any) string {
	return extractImageURL(output, 0)
}

func extractImageURL(output any, depth int) string {
	if output == nil || depth > maxExtractDepth {
		return ""
	}

	switch v := output.(type) {
	case string:
		return v

	case []any:
		if len(v) == 0 {
			return ""
		}
		return extractImageURL(v[0], depth+1)

	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]

	case URLer:
		return v.URL()

	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return u
		}
		if h, ok := v["href"].(string); ok {
			return h
		}
		return ""

	case fmt.Stringer:
		if s := v.String(); strings.HasPrefix(s, "http") {
			return s
		}
		return ""
	}

	return ""
}
