package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelRowTableName(t *testing.T) {
	assert.Equal(t, "channels", ChannelRow{}.TableName())
}

func TestChannelRowValidate(t *testing.T) {
	tests := []struct {
		name    string
		row     ChannelRow
		wantErr error
	}{
		{name: "valid", row: ChannelRow{Data: []byte{0x08, 0x01}}},
		{name: "empty data", row: ChannelRow{Data: []byte{}}, wantErr: ErrDataRequired},
		{name: "nil data", row: ChannelRow{}, wantErr: ErrDataRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.row.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestChannelRowHooksValidate(t *testing.T) {
	row := &ChannelRow{}
	assert.ErrorIs(t, row.BeforeCreate(nil), ErrDataRequired)
	assert.ErrorIs(t, row.BeforeUpdate(nil), ErrDataRequired)

	row.Data = []byte{0x01}
	assert.NoError(t, row.BeforeCreate(nil))
	assert.NoError(t, row.BeforeUpdate(nil))
}
