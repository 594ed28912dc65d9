package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

// Unsigned 64-bit values are stored as decimal text so the full range fits
// both SQLite and Postgres integer columns.

type validatorRecord struct {
	bun.BaseModel `bun:"table:ledger_validators,alias:lv"`

	Position    int    `bun:"position,pk"`
	ValidatorID string `bun:"validator_id,notnull"`
}

type administratorRecord struct {
	bun.BaseModel `bun:"table:ledger_administrators,alias:la"`

	Position int    `bun:"position,pk"`
	Identity string `bun:"identity,notnull"`
	Role     int    `bun:"role,notnull"`
}

type collectionRecord struct {
	bun.BaseModel `bun:"table:ledger_collections,alias:lc"`

	CollectionID string    `bun:"collection_id,pk"`
	Name         string    `bun:"name,notnull"`
	URI          string    `bun:"uri,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type collectionStatusRecord struct {
	bun.BaseModel `bun:"table:ledger_collection_statuses,alias:lcs"`

	CollectionID string    `bun:"collection_id,pk"`
	LimitValue   string    `bun:"limit_value,notnull"`
	Category     int       `bun:"category,notnull"`
	Locked       bool      `bun:"locked,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type collectionCountRecord struct {
	bun.BaseModel `bun:"table:ledger_collection_counts,alias:lcc"`

	CollectionID string    `bun:"collection_id,pk"`
	Total        string    `bun:"total,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type bindCountRecord struct {
	bun.BaseModel `bun:"table:ledger_bind_counts,alias:lbc"`

	BindID       string    `bun:"bind_id,pk"`
	CollectionID string    `bun:"collection_id,pk"`
	Total        string    `bun:"total,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type eventRecord struct {
	bun.BaseModel `bun:"table:ledger_events,alias:le"`

	ID         string    `bun:"id,pk"`
	Sequence   int64     `bun:"sequence,notnull"`
	Name       string    `bun:"name,notnull"`
	Payload    string    `bun:"payload,notnull"`
	RecordedAt time.Time `bun:"recorded_at,nullzero,notnull,default:current_timestamp"`
}
