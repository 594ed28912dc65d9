package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

type bindKey struct {
	bindID       BindID
	collectionID CollectionID
}

type memoryState struct {
	validators       []ValidatorID
	administrators   AdministratorTable
	collections      map[CollectionID]CollectionMetadata
	statuses         map[CollectionID]CollectionStatus
	collectionCounts map[CollectionID]uint64
	bindCounts       map[bindKey]uint64
	events           []EventRecord
}

func newMemoryState() *memoryState {
	return &memoryState{
		collections:      map[CollectionID]CollectionMetadata{},
		statuses:         map[CollectionID]CollectionStatus{},
		collectionCounts: map[CollectionID]uint64{},
		bindCounts:       map[bindKey]uint64{},
	}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		validators:       slices.Clone(s.validators),
		administrators:   s.administrators,
		collections:      maps.Clone(s.collections),
		statuses:         maps.Clone(s.statuses),
		collectionCounts: maps.Clone(s.collectionCounts),
		bindCounts:       maps.Clone(s.bindCounts),
		events:           slices.Clone(s.events),
	}
}

// MemoryStore keeps every ledger table in process memory. Atomic stages
// writes on a copy and swaps it in on success.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: newMemoryState(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context, tables Tables) error) error {
	if s == nil {
		return fmt.Errorf("core: memory store is not configured")
	}
	if fn == nil {
		return fmt.Errorf("core: atomic function is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &memoryTables{state: s.state.clone(), now: s.now}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	s.state = staged.state
	return nil
}

func (s *MemoryStore) view() *memoryTables {
	return &memoryTables{state: s.state, now: s.now}
}

func (s *MemoryStore) Validators(ctx context.Context) ([]ValidatorID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Validators(ctx)
}

func (s *MemoryStore) PutValidators(ctx context.Context, validators []ValidatorID) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.PutValidators(ctx, validators)
	})
}

func (s *MemoryStore) Administrators(ctx context.Context) (AdministratorTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Administrators(ctx)
}

func (s *MemoryStore) PutAdministrators(ctx context.Context, table AdministratorTable) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.PutAdministrators(ctx, table)
	})
}

func (s *MemoryStore) Collection(ctx context.Context, id CollectionID) (CollectionMetadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Collection(ctx, id)
}

func (s *MemoryStore) PutCollection(ctx context.Context, id CollectionID, metadata CollectionMetadata) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.PutCollection(ctx, id, metadata)
	})
}

func (s *MemoryStore) CollectionStatus(ctx context.Context, id CollectionID) (CollectionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CollectionStatus(ctx, id)
}

func (s *MemoryStore) PutCollectionStatus(ctx context.Context, id CollectionID, status CollectionStatus) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.PutCollectionStatus(ctx, id, status)
	})
}

func (s *MemoryStore) CollectionCount(ctx context.Context, id CollectionID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CollectionCount(ctx, id)
}

func (s *MemoryStore) PutCollectionCount(ctx context.Context, id CollectionID, count uint64) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.PutCollectionCount(ctx, id, count)
	})
}

func (s *MemoryStore) BindCount(ctx context.Context, bindID BindID, id CollectionID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().BindCount(ctx, bindID, id)
}

func (s *MemoryStore) PutBindCount(ctx context.Context, bindID BindID, id CollectionID, count uint64) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.PutBindCount(ctx, bindID, id, count)
	})
}

func (s *MemoryStore) AppendEvent(ctx context.Context, event Event) error {
	return s.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		return tables.AppendEvent(ctx, event)
	})
}

func (s *MemoryStore) Events(_ context.Context, filter EventFilter) ([]EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventRecord, 0, len(s.state.events))
	for _, record := range s.state.events {
		if record.Sequence <= filter.AfterSequence {
			continue
		}
		if filter.Name != "" && record.Event.EventName() != filter.Name {
			continue
		}
		out = append(out, record)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

type memoryTables struct {
	state *memoryState
	now   func() time.Time
}

func (t *memoryTables) Validators(context.Context) ([]ValidatorID, error) {
	return slices.Clone(t.state.validators), nil
}

func (t *memoryTables) PutValidators(_ context.Context, validators []ValidatorID) error {
	t.state.validators = slices.Clone(validators)
	return nil
}

func (t *memoryTables) Administrators(context.Context) (AdministratorTable, error) {
	return t.state.administrators, nil
}

func (t *memoryTables) PutAdministrators(_ context.Context, table AdministratorTable) error {
	t.state.administrators = NewAdministratorTable(table.Entries())
	return nil
}

func (t *memoryTables) Collection(_ context.Context, id CollectionID) (CollectionMetadata, bool, error) {
	metadata, ok := t.state.collections[id]
	return metadata, ok, nil
}

func (t *memoryTables) PutCollection(_ context.Context, id CollectionID, metadata CollectionMetadata) error {
	t.state.collections[id] = metadata
	return nil
}

func (t *memoryTables) CollectionStatus(_ context.Context, id CollectionID) (CollectionStatus, error) {
	return t.state.statuses[id], nil
}

func (t *memoryTables) PutCollectionStatus(_ context.Context, id CollectionID, status CollectionStatus) error {
	t.state.statuses[id] = status
	return nil
}

func (t *memoryTables) CollectionCount(_ context.Context, id CollectionID) (uint64, error) {
	return t.state.collectionCounts[id], nil
}

func (t *memoryTables) PutCollectionCount(_ context.Context, id CollectionID, count uint64) error {
	t.state.collectionCounts[id] = count
	return nil
}

func (t *memoryTables) BindCount(_ context.Context, bindID BindID, id CollectionID) (uint64, error) {
	return t.state.bindCounts[bindKey{bindID: bindID, collectionID: id}], nil
}

func (t *memoryTables) PutBindCount(_ context.Context, bindID BindID, id CollectionID, count uint64) error {
	t.state.bindCounts[bindKey{bindID: bindID, collectionID: id}] = count
	return nil
}

func (t *memoryTables) AppendEvent(_ context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("core: event is nil")
	}
	t.state.events = append(t.state.events, EventRecord{
		Sequence:   int64(len(t.state.events)) + 1,
		Event:      event,
		RecordedAt: t.now(),
	})
	return nil
}
