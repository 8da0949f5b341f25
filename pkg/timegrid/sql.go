package timegrid

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Scan implements sql.Scanner. Postgres DATE columns arrive as time.Time
// through lib/pq; text columns arrive as bytes or string.
func (d *Day) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case []byte:
		*d = Day(string(v))
		return nil
	case string:
		*d = Day(v)
		return nil
	}
	return fmt.Errorf("cannot scan %T into timegrid.Day", src)
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}
