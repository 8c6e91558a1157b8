package sqlast

import (
	"fmt"
	"strings"
)

// RenderTemplate expands {name} holes in body, where name may contain dots
// (params.foo is a single identifier, not a nested field access — the
// DotsFormatter behavior from the reference implementation). lookup resolves
// a hole to its SQL text; onMissing, if non-nil, is consulted when lookup
// fails and may itself register side effects (such as a CTE) before
// returning a column reference.
func RenderTemplate(body string, lookup func(name string) (string, bool), onMissing func(name string) (string, error)) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '{' {
			end := strings.IndexByte(body[i:], '}')
			if end == -1 {
				return "", fmt.Errorf("sqlast: unterminated hole in template %q", body)
			}
			name := body[i+1 : i+end]
			i += end + 1
			if v, ok := lookup(name); ok {
				out.WriteString(v)
				continue
			}
			if onMissing == nil {
				return "", fmt.Errorf("sqlast: unknown hole %q", name)
			}
			v, err := onMissing(name)
			if err != nil {
				return "", err
			}
			out.WriteString(v)
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.String(), nil
}
