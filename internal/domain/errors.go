package domain

import "errors"

var (
	ErrMissingAnalysisID   = errors.New("analysis id is required")
	ErrEmptyCode           = errors.New("code must not be empty")
	ErrUnsupportedLanguage = errors.New("language is not supported")
)
