package checker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	ErrMalformedTemplate     = errors.New("malformed template")
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Render substitutes every {{name}} in tmpl with vars[name].
func Render(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, strings.Join(missing, ", "))
	}

	// "}}" closes nested JSON objects, so only a dangling opener is malformed.
	if strings.Contains(placeholder.ReplaceAllString(tmpl, ""), "{{") {
		return "", fmt.Errorf("%w: unclosed placeholder", ErrMalformedTemplate)
	}
	return out, nil
}
