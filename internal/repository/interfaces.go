package repository

import (
	"context"

	"github.com/ottkit/tunerd/internal/tuner"
)

// ChannelRepository defines the interface for channel record persistence.
type ChannelRepository interface {
	// Save persists a channel record, assigning a row id on first insert.
	Save(ctx context.Context, c *tuner.Channel) error

	// GetByID retrieves one channel by row id, nil when not found.
	GetByID(ctx context.Context, id int64) (*tuner.Channel, error)

	// GetAll retrieves all stored channels in row order.
	GetAll(ctx context.Context) ([]*tuner.Channel, error)

	// SetLocked updates the lock flag of a stored channel.
	SetLocked(ctx context.Context, id int64, locked bool) error

	// Delete removes a stored channel by row id.
	Delete(ctx context.Context, id int64) error
}
