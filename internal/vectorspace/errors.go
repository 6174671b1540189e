package vectorspace

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCorpus     = errors.New("no documents to fit")
	ErrEmptyVocabulary = errors.New("no terms remain after document frequency pruning")
	ErrInvalidConfig   = errors.New("invalid vectorizer config")
)

// ShapeError reports a malformed matrix row.
type ShapeError struct {
	Row int
	Msg string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("matrix row %d: %s", e.Row, e.Msg)
}
