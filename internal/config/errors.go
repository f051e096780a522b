package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrCircularDependency = errors.New("circular dependency between projects")
)

// Error wraps configuration validation failures
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidConfig, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &Error{Kind: ErrCircularDependency, Msg: strings.Join(path, " -> ")}
}
