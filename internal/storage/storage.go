// Package storage persists the prediction log. Only a hash of each classified
// text is stored, never the text itself.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kokoro/internal/models"
)

// ErrNotFound is returned when a prediction id does not exist.
var ErrNotFound = errors.New("prediction not found")

// Storage defines prediction log operations.
type Storage interface {
	CreatePrediction(ctx context.Context, p *models.Prediction) error
	GetPrediction(ctx context.Context, id string) (*models.Prediction, error)
	ListPredictions(ctx context.Context, offset, limit int) ([]*models.Prediction, error)

	// Stats
	CountPredictions(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)

	Close() error
}
