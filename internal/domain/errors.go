package domain

import "errors"

var (
	ErrModelUnavailable = errors.New("recommendation model not loaded")
	ErrArtifactMissing  = errors.New("model artifact missing")
	ErrArtifactCorrupt  = errors.New("model artifact corrupt")
)
