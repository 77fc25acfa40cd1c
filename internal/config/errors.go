package config

import (
	"errors"
	"fmt"
)

var (
	ErrConfigLoadFailed = errors.New("failed to load configuration")
	ErrConfigSaveFailed = errors.New("failed to save configuration")
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrInvalidServers   = errors.New("'mcpServers' must be an object")
)

// SyntaxError reports where in a configuration file JSON parsing failed.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Unwrap allows errors.Is(err, ErrInvalidJSON).
func (e *SyntaxError) Unwrap() error {
	return ErrInvalidJSON
}
