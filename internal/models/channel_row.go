// Package models defines GORM database models for tunerd entities.
package models

import (
	"gorm.io/gorm"
)

// ChannelRow is the relational shape of one stored channel: the row id the
// storage layer assigns, the lock flag kept queryable outside the blob, and
// the serialized channel record itself.
type ChannelRow struct {
	ID     int64  `gorm:"primarykey;autoIncrement" json:"id"`
	Locked bool   `gorm:"not null;default:false" json:"locked"`
	Data   []byte `gorm:"type:blob;not null" json:"-"`
}

// TableName returns the table name for ChannelRow.
func (ChannelRow) TableName() string {
	return "channels"
}

// Validate performs basic validation on the row.
func (r *ChannelRow) Validate() error {
	if len(r.Data) == 0 {
		return ErrDataRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the row.
func (r *ChannelRow) BeforeCreate(_ *gorm.DB) error {
	return r.Validate()
}

// BeforeUpdate is a GORM hook that validates the row before update.
func (r *ChannelRow) BeforeUpdate(_ *gorm.DB) error {
	return r.Validate()
}
