// Package match builds the predicates used to select test files and tests:
// title matchers from grep patterns and file matchers from command-line
// location arguments.
package match

import (
	"fmt"
	"regexp"
	"strings"
)

// TitleMatcher reports whether a rendered title path is selected
type TitleMatcher func(title string) bool

// MatchAll accepts every title
func MatchAll(string) bool { return true }

// NewTitleMatcher compiles pattern as a regular expression. An empty pattern
// matches every title.
func NewTitleMatcher(pattern string) (TitleMatcher, error) {
	if pattern == "" {
		return MatchAll, nil
	}
	re, err := ForceRegexp(pattern)
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}

// ForceRegexp turns a user supplied pattern into a regexp. Patterns written as
// /source/flags keep their source; the i flag makes them case-insensitive.
// Anything else is compiled as-is.
func ForceRegexp(pattern string) (*regexp.Regexp, error) {
	source := pattern
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") {
		if end := strings.LastIndex(pattern, "/"); end > 0 {
			flags := pattern[end+1:]
			if strings.Trim(flags, "gimsuy") == "" {
				source = pattern[1:end]
				if strings.Contains(flags, "i") {
					source = "(?i)" + source
				}
				if strings.Contains(flags, "s") {
					source = "(?s)" + source
				}
			}
		}
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Not negates a matcher
func Not(m TitleMatcher) TitleMatcher {
	return func(title string) bool { return !m(title) }
}

// And composes matchers; nil matchers are skipped
func And(matchers ...TitleMatcher) TitleMatcher {
	return func(title string) bool {
		for _, m := range matchers {
			if m != nil && !m(title) {
				return false
			}
		}
		return true
	}
}

// RenderTitle joins a title path the way grep patterns see it
func RenderTitle(path []string) string {
	return strings.Join(path, " ")
}
