package tuner

import (
	"fmt"
)

// Row is the cursor shape the storage layer exposes for one channel row:
// three columns in fixed order (64-bit row id, lock flag as an integer, the
// record blob). *sql.Row and *sql.Rows satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// FromRow reconstructs a channel record from a storage row. The row's scalar
// id and lock columns supersede any values embedded in the blob. An
// unparseable blob yields (nil, nil); a cursor failure yields an error.
func FromRow(row Row) (*Channel, error) {
	var (
		id     int64
		locked int64
		blob   []byte
	)
	if err := row.Scan(&id, &locked, &blob); err != nil {
		return nil, fmt.Errorf("scanning channel row: %w", err)
	}
	c := Parse(blob)
	if c == nil {
		return nil, nil
	}
	c.SetChannelID(id)
	c.SetLocked(locked > 0)
	return c, nil
}
