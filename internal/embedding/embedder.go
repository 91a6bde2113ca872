// Package embedding turns text into fixed-length vectors via an external embedding service.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder produces a vector embedding for text. Each call makes exactly one
// request to the backing service; implementations keep no per-text state and do not retry.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model returns the model identifier the embeddings come from.
	Model() string
}

// ErrService is matched by every *ServiceError.
var ErrService = errors.New("embedding service error")

// ServiceError reports a failed embedding request: a transport failure, a non-2xx
// status, or a response without embedding values.
type ServiceError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("embedding service (%s)", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrService) match.
func (e *ServiceError) Is(target error) bool { return target == ErrService }
