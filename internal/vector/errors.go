package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is matched by every DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDuplicateStatement is returned when a statement's natural key is already stored.
	ErrDuplicateStatement = errors.New("statement already stored")
	// ErrEmptyEmbedding is returned when a record carries no embedding values.
	ErrEmptyEmbedding = errors.New("empty embedding")
)

// DimensionMismatchError reports a vector whose length differs from the index dimensionality.
type DimensionMismatchError struct {
	Got      int
	Expected int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: got %d, expected %d", e.Got, e.Expected)
}

// Is lets errors.Is(err, ErrDimensionMismatch) match.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
