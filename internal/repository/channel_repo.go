// Package repository implements data access for tunerd entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/ottkit/tunerd/internal/models"
	"github.com/ottkit/tunerd/internal/tuner"
)

// channelRepo implements ChannelRepository using GORM.
type channelRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

var _ ChannelRepository = (*channelRepo)(nil)

// NewChannelRepository creates a new channel repository.
func NewChannelRepository(db *gorm.DB, log *slog.Logger) *channelRepo {
	if log == nil {
		log = slog.Default()
	}
	return &channelRepo{db: db, log: log}
}

// Save persists a channel record. A record without a row id is inserted and
// receives one; an already-assigned record has its row updated in place. The
// lock flag is mirrored into its scalar column so it stays queryable without
// decoding blobs.
func (r *channelRepo) Save(ctx context.Context, c *tuner.Channel) error {
	data, err := c.Serialize()
	if err != nil {
		return fmt.Errorf("serializing channel: %w", err)
	}

	if c.ChannelID() == tuner.InvalidChannelID {
		row := models.ChannelRow{Locked: c.IsLocked(), Data: data}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("creating channel row: %w", err)
		}
		c.SetChannelID(row.ID)
		return nil
	}

	row := models.ChannelRow{ID: c.ChannelID(), Locked: c.IsLocked(), Data: data}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("updating channel row: %w", err)
	}
	return nil
}

// GetByID retrieves one channel by row id. Returns (nil, nil) when the row
// does not exist or its blob cannot be parsed.
func (r *channelRepo) GetByID(ctx context.Context, id int64) (*tuner.Channel, error) {
	row := r.db.WithContext(ctx).
		Raw("SELECT id, locked, data FROM channels WHERE id = ?", id).
		Row()

	c, err := tuner.FromRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting channel by id: %w", err)
	}
	return c, nil
}

// GetAll retrieves all stored channels in row order. Rows whose blob cannot
// be parsed are skipped and logged rather than failing the whole read.
func (r *channelRepo) GetAll(ctx context.Context) ([]*tuner.Channel, error) {
	rows, err := r.db.WithContext(ctx).
		Raw("SELECT id, locked, data FROM channels ORDER BY id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("getting all channels: %w", err)
	}
	defer rows.Close()

	var channels []*tuner.Channel
	for rows.Next() {
		c, err := tuner.FromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("reading channel row: %w", err)
		}
		if c == nil {
			r.log.Warn("skipping unparseable channel row")
			continue
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channel rows: %w", err)
	}
	return channels, nil
}

// SetLocked updates the lock flag of a stored channel. Only the scalar
// column changes; the blob's embedded copy is superseded on every read.
func (r *channelRepo) SetLocked(ctx context.Context, id int64, locked bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.ChannelRow{}).
		Where("id = ?", id).
		Update("locked", locked)
	if res.Error != nil {
		return fmt.Errorf("updating channel lock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating channel lock: no channel with id %d", id)
	}
	return nil
}

// Delete removes a stored channel by row id.
func (r *channelRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.ChannelRow{}, id).Error; err != nil {
		return fmt.Errorf("deleting channel: %w", err)
	}
	return nil
}
