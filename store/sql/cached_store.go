package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-ledger/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const (
	collectionCacheKeyPrefix       = "go-ledger::collection::v1"
	collectionStatusCacheKeyPrefix = "go-ledger::collection_status::v1"
)

type cachedCollection struct {
	Metadata core.CollectionMetadata
	Found    bool
}

// CachedStore serves collection metadata and status reads from a cache and
// drops the touched keys after every write.
type CachedStore struct {
	base  core.Store
	cache repositorycache.CacheService
}

func NewCachedStore(base core.Store, cacheService repositorycache.CacheService) (*CachedStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base ledger store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: ledger cache service is required")
	}
	return &CachedStore{base: base, cache: cacheService}, nil
}

// CollectionCacheKey returns go-ledger::collection::v1::<collection_id>.
func CollectionCacheKey(id core.CollectionID) string {
	return strings.Join([]string{collectionCacheKeyPrefix, strconv.FormatUint(uint64(id), 10)}, "::")
}

// CollectionStatusCacheKey returns go-ledger::collection_status::v1::<collection_id>.
func CollectionStatusCacheKey(id core.CollectionID) string {
	return strings.Join([]string{collectionStatusCacheKeyPrefix, strconv.FormatUint(uint64(id), 10)}, "::")
}

func (s *CachedStore) ready() error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached ledger store is not configured")
	}
	return nil
}

func (s *CachedStore) Atomic(ctx context.Context, fn func(ctx context.Context, tables core.Tables) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	tracker := &touchedTables{}
	err := s.base.Atomic(ctx, func(ctx context.Context, tables core.Tables) error {
		tracker.Tables = tables
		return fn(ctx, tracker)
	})
	if invalidateErr := s.invalidate(ctx, tracker.keys()); invalidateErr != nil && err == nil {
		return invalidateErr
	}
	return err
}

func (s *CachedStore) Validators(ctx context.Context) ([]core.ValidatorID, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.base.Validators(ctx)
}

func (s *CachedStore) PutValidators(ctx context.Context, validators []core.ValidatorID) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.base.PutValidators(ctx, validators)
}

func (s *CachedStore) Administrators(ctx context.Context) (core.AdministratorTable, error) {
	if err := s.ready(); err != nil {
		return core.AdministratorTable{}, err
	}
	return s.base.Administrators(ctx)
}

func (s *CachedStore) PutAdministrators(ctx context.Context, table core.AdministratorTable) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.base.PutAdministrators(ctx, table)
}

func (s *CachedStore) Collection(ctx context.Context, id core.CollectionID) (core.CollectionMetadata, bool, error) {
	if err := s.ready(); err != nil {
		return core.CollectionMetadata{}, false, err
	}
	cached, err := repositorycache.GetOrFetch(ctx, s.cache, CollectionCacheKey(id), func(ctx context.Context) (cachedCollection, error) {
		metadata, found, fetchErr := s.base.Collection(ctx, id)
		if fetchErr != nil {
			return cachedCollection{}, fetchErr
		}
		return cachedCollection{Metadata: metadata, Found: found}, nil
	})
	if err != nil {
		return core.CollectionMetadata{}, false, err
	}
	return cached.Metadata, cached.Found, nil
}

func (s *CachedStore) PutCollection(ctx context.Context, id core.CollectionID, metadata core.CollectionMetadata) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.PutCollection(ctx, id, metadata); err != nil {
		return err
	}
	return s.cache.Delete(ctx, CollectionCacheKey(id))
}

func (s *CachedStore) CollectionStatus(ctx context.Context, id core.CollectionID) (core.CollectionStatus, error) {
	if err := s.ready(); err != nil {
		return core.CollectionStatus{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, CollectionStatusCacheKey(id), func(ctx context.Context) (core.CollectionStatus, error) {
		return s.base.CollectionStatus(ctx, id)
	})
}

func (s *CachedStore) PutCollectionStatus(ctx context.Context, id core.CollectionID, status core.CollectionStatus) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.PutCollectionStatus(ctx, id, status); err != nil {
		return err
	}
	return s.cache.Delete(ctx, CollectionStatusCacheKey(id))
}

func (s *CachedStore) CollectionCount(ctx context.Context, id core.CollectionID) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.base.CollectionCount(ctx, id)
}

func (s *CachedStore) PutCollectionCount(ctx context.Context, id core.CollectionID, count uint64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.base.PutCollectionCount(ctx, id, count)
}

func (s *CachedStore) BindCount(ctx context.Context, bindID core.BindID, id core.CollectionID) (uint64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.base.BindCount(ctx, bindID, id)
}

func (s *CachedStore) PutBindCount(ctx context.Context, bindID core.BindID, id core.CollectionID, count uint64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.base.PutBindCount(ctx, bindID, id, count)
}

func (s *CachedStore) AppendEvent(ctx context.Context, event core.Event) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.base.AppendEvent(ctx, event)
}

func (s *CachedStore) Events(ctx context.Context, filter core.EventFilter) ([]core.EventRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	log, ok := s.base.(core.EventLog)
	if !ok {
		return nil, fmt.Errorf("sqlstore: base ledger store %T does not expose events", s.base)
	}
	return log.Events(ctx, filter)
}

func (s *CachedStore) invalidate(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// touchedTables records the cache keys written during one Atomic call.
type touchedTables struct {
	core.Tables

	mu      sync.Mutex
	touched []string
	seen    map[string]struct{}
}

func (t *touchedTables) PutCollection(ctx context.Context, id core.CollectionID, metadata core.CollectionMetadata) error {
	t.touch(CollectionCacheKey(id))
	return t.Tables.PutCollection(ctx, id, metadata)
}

func (t *touchedTables) PutCollectionStatus(ctx context.Context, id core.CollectionID, status core.CollectionStatus) error {
	t.touch(CollectionStatusCacheKey(id))
	return t.Tables.PutCollectionStatus(ctx, id, status)
}

func (t *touchedTables) touch(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seen == nil {
		t.seen = map[string]struct{}{}
	}
	if _, ok := t.seen[key]; ok {
		return
	}
	t.seen[key] = struct{}{}
	t.touched = append(t.touched, key)
}

func (t *touchedTables) keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.touched...)
}
