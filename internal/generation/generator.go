// Package generation sends a single text prompt to an external language model and returns its raw reply.
package generation

import (
	"context"
	"errors"
	"fmt"
)

// Generator returns the model's raw text reply to prompt. Implementations make
// one request per call and do not retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ErrService is matched by every *ServiceError.
var ErrService = errors.New("generation service error")

// ServiceError reports a failed generation request.
type ServiceError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("generation service (%s)", e.Provider)
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
