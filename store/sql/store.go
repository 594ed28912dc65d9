package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-ledger/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store keeps the ledger tables in SQL. Atomic runs inside a bun transaction
// and is serialized in process.
type Store struct {
	db     *bun.DB
	events repository.Repository[*eventRecord]
	mu     sync.Mutex
	now    func() time.Time
}

func NewStore(db *bun.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	events := repository.NewRepository[*eventRecord](db, eventHandlers())
	if validator, ok := events.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid event repository wiring: %w", err)
		}
	}
	return &Store{
		db:     db,
		events: events,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *Store) DB() *bun.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tables core.Tables) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: ledger store is not configured")
	}
	if fn == nil {
		return fmt.Errorf("sqlstore: atomic function is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &tables{idb: tx, tx: &tx, store: s})
	})
}

func (s *Store) view() (*tables, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: ledger store is not configured")
	}
	return &tables{idb: s.db, store: s}, nil
}

func (s *Store) Validators(ctx context.Context) ([]core.ValidatorID, error) {
	view, err := s.view()
	if err != nil {
		return nil, err
	}
	return view.Validators(ctx)
}

func (s *Store) PutValidators(ctx context.Context, validators []core.ValidatorID) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.PutValidators(ctx, validators)
	})
}

func (s *Store) Administrators(ctx context.Context) (core.AdministratorTable, error) {
	view, err := s.view()
	if err != nil {
		return core.AdministratorTable{}, err
	}
	return view.Administrators(ctx)
}

func (s *Store) PutAdministrators(ctx context.Context, table core.AdministratorTable) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.PutAdministrators(ctx, table)
	})
}

func (s *Store) Collection(ctx context.Context, id core.CollectionID) (core.CollectionMetadata, bool, error) {
	view, err := s.view()
	if err != nil {
		return core.CollectionMetadata{}, false, err
	}
	return view.Collection(ctx, id)
}

func (s *Store) PutCollection(ctx context.Context, id core.CollectionID, metadata core.CollectionMetadata) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.PutCollection(ctx, id, metadata)
	})
}

func (s *Store) CollectionStatus(ctx context.Context, id core.CollectionID) (core.CollectionStatus, error) {
	view, err := s.view()
	if err != nil {
		return core.CollectionStatus{}, err
	}
	return view.CollectionStatus(ctx, id)
}

func (s *Store) PutCollectionStatus(ctx context.Context, id core.CollectionID, status core.CollectionStatus) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.PutCollectionStatus(ctx, id, status)
	})
}

func (s *Store) CollectionCount(ctx context.Context, id core.CollectionID) (uint64, error) {
	view, err := s.view()
	if err != nil {
		return 0, err
	}
	return view.CollectionCount(ctx, id)
}

func (s *Store) PutCollectionCount(ctx context.Context, id core.CollectionID, count uint64) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.PutCollectionCount(ctx, id, count)
	})
}

func (s *Store) BindCount(ctx context.Context, bindID core.BindID, id core.CollectionID) (uint64, error) {
	view, err := s.view()
	if err != nil {
		return 0, err
	}
	return view.BindCount(ctx, bindID, id)
}

func (s *Store) PutBindCount(ctx context.Context, bindID core.BindID, id core.CollectionID, count uint64) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.PutBindCount(ctx, bindID, id, count)
	})
}

func (s *Store) AppendEvent(ctx context.Context, event core.Event) error {
	return s.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		return tables.AppendEvent(ctx, event)
	})
}

func (s *Store) Events(ctx context.Context, filter core.EventFilter) ([]core.EventRecord, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("sqlstore: ledger store is not configured")
	}
	selectors := []repository.SelectCriteria{
		repository.OrderBy("sequence ASC"),
	}
	if filter.AfterSequence > 0 {
		after := filter.AfterSequence
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.sequence > ?", after)
		}))
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		selectors = append(selectors, repository.SelectBy("name", "=", name))
	}
	if filter.Limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(filter.Limit, 0))
	}

	records, _, err := s.events.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	out := make([]core.EventRecord, 0, len(records))
	for _, record := range records {
		event, decodeErr := core.DecodeEvent(record.Name, []byte(record.Payload))
		if decodeErr != nil {
			return nil, decodeErr
		}
		out = append(out, core.EventRecord{
			Sequence:   record.Sequence,
			Event:      event,
			RecordedAt: record.RecordedAt.UTC(),
		})
	}
	return out, nil
}

// tables reads through either the shared db or a transaction. Writes only
// happen inside Atomic, where tx is set.
type tables struct {
	idb   bun.IDB
	tx    *bun.Tx
	store *Store
}

func (t *tables) Validators(ctx context.Context) ([]core.ValidatorID, error) {
	var records []validatorRecord
	if err := t.idb.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	ids := make([]core.ValidatorID, 0, len(records))
	for _, record := range records {
		ids = append(ids, core.ValidatorID(record.ValidatorID))
	}
	return ids, nil
}

func (t *tables) PutValidators(ctx context.Context, validators []core.ValidatorID) error {
	if _, err := t.idb.NewDelete().
		Model((*validatorRecord)(nil)).
		Where("1 = 1").
		Exec(ctx); err != nil {
		return err
	}
	if len(validators) == 0 {
		return nil
	}
	records := make([]validatorRecord, 0, len(validators))
	for index, id := range validators {
		records = append(records, validatorRecord{Position: index + 1, ValidatorID: string(id)})
	}
	_, err := t.idb.NewInsert().Model(&records).Exec(ctx)
	return err
}

func (t *tables) Administrators(ctx context.Context) (core.AdministratorTable, error) {
	var records []administratorRecord
	if err := t.idb.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.AdministratorTable{}, err
	}
	entries := make([]core.AdministratorEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, core.AdministratorEntry{
			Identity: core.Identity(record.Identity),
			Role:     core.Role(record.Role),
		})
	}
	return core.NewAdministratorTable(entries), nil
}

// PutAdministrators stores no rows for the unset table.
func (t *tables) PutAdministrators(ctx context.Context, table core.AdministratorTable) error {
	if _, err := t.idb.NewDelete().
		Model((*administratorRecord)(nil)).
		Where("1 = 1").
		Exec(ctx); err != nil {
		return err
	}
	entries := table.Entries()
	if len(entries) == 0 {
		return nil
	}
	records := make([]administratorRecord, 0, len(entries))
	for index, entry := range entries {
		records = append(records, administratorRecord{
			Position: index + 1,
			Identity: string(entry.Identity),
			Role:     int(entry.Role),
		})
	}
	_, err := t.idb.NewInsert().Model(&records).Exec(ctx)
	return err
}

func (t *tables) Collection(ctx context.Context, id core.CollectionID) (core.CollectionMetadata, bool, error) {
	record := &collectionRecord{}
	err := t.idb.NewSelect().
		Model(record).
		Where("?TableAlias.collection_id = ?", formatUint(uint64(id))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.CollectionMetadata{}, false, nil
		}
		return core.CollectionMetadata{}, false, err
	}
	return core.CollectionMetadata{Name: record.Name, URI: record.URI}, true, nil
}

func (t *tables) PutCollection(ctx context.Context, id core.CollectionID, metadata core.CollectionMetadata) error {
	now := t.store.now()
	return upsertRecord(ctx, t.idb, &collectionRecord{
		CollectionID: formatUint(uint64(id)),
		Name:         metadata.Name,
		URI:          metadata.URI,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, "name", "uri", "updated_at")
}

func (t *tables) CollectionStatus(ctx context.Context, id core.CollectionID) (core.CollectionStatus, error) {
	record := &collectionStatusRecord{}
	err := t.idb.NewSelect().
		Model(record).
		Where("?TableAlias.collection_id = ?", formatUint(uint64(id))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.CollectionStatus{}, nil
		}
		return core.CollectionStatus{}, err
	}
	limit, err := parseUint(record.LimitValue)
	if err != nil {
		return core.CollectionStatus{}, fmt.Errorf("sqlstore: collection %d limit: %w", id, err)
	}
	return core.CollectionStatus{
		Limit:    limit,
		Category: uint8(record.Category),
		Locked:   record.Locked,
	}, nil
}

func (t *tables) PutCollectionStatus(ctx context.Context, id core.CollectionID, status core.CollectionStatus) error {
	return upsertRecord(ctx, t.idb, &collectionStatusRecord{
		CollectionID: formatUint(uint64(id)),
		LimitValue:   formatUint(status.Limit),
		Category:     int(status.Category),
		Locked:       status.Locked,
		UpdatedAt:    t.store.now(),
	}, "limit_value", "category", "locked", "updated_at")
}

func (t *tables) CollectionCount(ctx context.Context, id core.CollectionID) (uint64, error) {
	record := &collectionCountRecord{}
	err := t.idb.NewSelect().
		Model(record).
		Where("?TableAlias.collection_id = ?", formatUint(uint64(id))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return parseUint(record.Total)
}

func (t *tables) PutCollectionCount(ctx context.Context, id core.CollectionID, count uint64) error {
	return upsertRecord(ctx, t.idb, &collectionCountRecord{
		CollectionID: formatUint(uint64(id)),
		Total:        formatUint(count),
		UpdatedAt:    t.store.now(),
	}, "total", "updated_at")
}

func (t *tables) BindCount(ctx context.Context, bindID core.BindID, id core.CollectionID) (uint64, error) {
	record := &bindCountRecord{}
	err := t.idb.NewSelect().
		Model(record).
		Where("?TableAlias.bind_id = ?", string(bindID)).
		Where("?TableAlias.collection_id = ?", formatUint(uint64(id))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return parseUint(record.Total)
}

func (t *tables) PutBindCount(ctx context.Context, bindID core.BindID, id core.CollectionID, count uint64) error {
	return upsertRecord(ctx, t.idb, &bindCountRecord{
		BindID:       string(bindID),
		CollectionID: formatUint(uint64(id)),
		Total:        formatUint(count),
		UpdatedAt:    t.store.now(),
	}, "total", "updated_at")
}

func (t *tables) AppendEvent(ctx context.Context, event core.Event) error {
	if t.tx == nil {
		return fmt.Errorf("sqlstore: events are appended inside a transaction")
	}
	name, payload, err := core.EncodeEvent(event)
	if err != nil {
		return err
	}
	sequence, err := t.nextSequence(ctx)
	if err != nil {
		return err
	}
	record := &eventRecord{
		ID:         uuid.NewString(),
		Sequence:   sequence,
		Name:       name,
		Payload:    string(payload),
		RecordedAt: t.store.now(),
	}
	_, err = t.store.events.CreateTx(ctx, *t.tx, record)
	return err
}

func (t *tables) nextSequence(ctx context.Context) (int64, error) {
	var maxSequence int64
	if err := t.idb.NewSelect().
		Model((*eventRecord)(nil)).
		ColumnExpr("COALESCE(MAX(sequence), 0)").
		Scan(ctx, &maxSequence); err != nil {
		return 0, err
	}
	return maxSequence + 1, nil
}

// upsertRecord inserts record or updates columns on the existing row with
// the same primary key.
func upsertRecord[T any](ctx context.Context, idb bun.IDB, record *T, columns ...string) error {
	exists, err := idb.NewSelect().Model(record).WherePK().Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		_, err = idb.NewInsert().Model(record).Exec(ctx)
		return err
	}
	_, err = idb.NewUpdate().Model(record).Column(columns...).WherePK().Exec(ctx)
	return err
}

func formatUint(value uint64) string {
	return strconv.FormatUint(value, 10)
}

func parseUint(value string) (uint64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: invalid counter value %q: %w", value, err)
	}
	return parsed, nil
}
