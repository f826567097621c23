package store

import (
	"database/sql"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableID(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	id := int(v.Int64)
	return &id
}

func idArg(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}

func utcNow() time.Time {
	return time.Now().UTC()
}
