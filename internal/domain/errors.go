package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrProviderFailure = errors.New("provider failure")
	ErrTaskNotTerminal = errors.New("task not terminal")
	ErrTaskTerminal    = errors.New("task already terminal")
)
