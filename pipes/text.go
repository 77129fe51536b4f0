package pipes

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseMode selects the transformation of the Case pipe.
type CaseMode int

const (
	Upper CaseMode = iota
	Lower
	Title
)

// Trim removes surrounding whitespace from strings and string slices.
func Trim() Pipe {
	return mapStrings(strings.TrimSpace)
}

// Case converts strings using the casing rules of tag.
// Use language.Und when the language is unknown.
func Case(mode CaseMode, tag language.Tag) Pipe {
	// cases.Caser is stateful, so every call gets its own.
	newCaser := func() cases.Caser {
		switch mode {
		case Lower:
			return cases.Lower(tag)
		case Title:
			return cases.Title(tag)
		default:
			return cases.Upper(tag)
		}
	}
	return mapStrings(func(s string) string {
		return newCaser().String(s)
	})
}

func mapStrings(fn func(string) string) Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		switch v := value.(type) {
		case string:
			return fn(v), nil
		case []string:
			out := make([]string, len(v))
			for i, s := range v {
				out[i] = fn(s)
			}
			return out, nil
		case map[string]string:
			out := make(map[string]string, len(v))
			for k, s := range v {
				out[k] = fn(s)
			}
			return out, nil
		}
		return value, nil
	})
}
