// Package pattern renders naming templates into literal filenames.
//
// A pattern is plain text with two kinds of tags:
//
//	{{ field }}           value substitution
//	{{ field|pad:4 }}     zero-padded substitution for numeric values
//	{% if field %}…{% endif %}   section included only when field is set
//
// Known fields are supplied by the caller as Values. Unknown fields render
// empty. Conditional sections do not nest.
package pattern

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedPattern indicates unbalanced or unparsable template tags.
	ErrMalformedPattern = errors.New("malformed naming pattern")

	variableRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*(?:\|\s*pad:(\d+)\s*)?\}\}`)
	sectionRegex  = regexp.MustCompile(`\{%\s*if\s+(\w+)\s*%\}(.*?)\{%\s*endif\s*%\}`)
	strayTagRegex = regexp.MustCompile(`\{%|%\}|\{\{|\}\}`)
)

// Values holds the fields available to a naming pattern.
type Values map[string]any

// Render expands pattern against values.
func Render(pattern string, values Values) (string, error) {
	// Resolve conditional sections first so their bodies can contain
	// variable tags.
	out := sectionRegex.ReplaceAllStringFunc(pattern, func(section string) string {
		m := sectionRegex.FindStringSubmatch(section)
		if truthy(values[m[1]]) {
			return m[2]
		}
		return ""
	})

	out = variableRegex.ReplaceAllStringFunc(out, func(tag string) string {
		m := variableRegex.FindStringSubmatch(tag)
		value := values[m[1]]
		if m[2] != "" {
			width, _ := strconv.Atoi(m[2])
			return pad(value, width)
		}
		return stringify(value)
	})

	if strayTagRegex.MatchString(out) {
		return "", fmt.Errorf("%w: %q", ErrMalformedPattern, pattern)
	}

	return out, nil
}

// RenderFilename expands pattern against values and ensures the result
// carries a file extension, appending ext when the pattern itself has none.
func RenderFilename(pattern string, values Values, ext string) (string, error) {
	name, err := Render(pattern, values)
	if err != nil {
		return "", err
	}

	if filepath.Ext(name) == "" {
		name += ext
	}

	return name, nil
}

// pad zero-pads numeric values to the given width and passes non-numeric
// values through unchanged.
func pad(value any, width int) string {
	s := stringify(value)
	if s == "" {
		return ""
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}

	return fmt.Sprintf("%0*d", width, n)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	default:
		return true
	}
}
