package core

import (
	"context"
	"fmt"
	"math/bits"
	"slices"
	"time"
)

// Issue records a batch mint. Every entry is validated against the current
// counters, including earlier entries of the same batch, before any counter
// is written, so a failed batch changes nothing.
func (s *Service) Issue(ctx context.Context, caller Caller, req IssueRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller": callerField(caller),
		"batch":  len(req.CollectionIDs),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "issuance.issue", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := s.gate.ensureRole(ctx, tables, caller, RoleMinter); err != nil {
			return err
		}
		if err := s.validateBatchShape(req); err != nil {
			return err
		}
		if err := validateBatchCollections(ctx, tables, req.CollectionIDs); err != nil {
			return err
		}
		plan, err := planIssuance(ctx, tables, req)
		if err != nil {
			return err
		}
		if err := plan.commit(ctx, tables); err != nil {
			return err
		}

		height, err := s.currentHeight(ctx)
		if err != nil {
			return err
		}
		return tables.AppendEvent(ctx, Minted{
			Height:        height,
			BindIDs:       slices.Clone(req.BindIDs),
			CollectionIDs: slices.Clone(req.CollectionIDs),
			Counts:        slices.Clone(req.Counts),
		})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) validateBatchShape(req IssueRequest) error {
	limit := s.config.Issuance.BatchLimit
	size := len(req.CollectionIDs)
	if size == 0 || size >= limit {
		return fmt.Errorf("%w: %d entries, limit %d", ErrBatchSizeExceeded, size, limit)
	}
	if len(req.BindIDs) != size || len(req.Counts) != size {
		return fmt.Errorf("%w: %d bind ids, %d collection ids, %d counts", ErrLengthMismatch, len(req.BindIDs), size, len(req.Counts))
	}
	for _, bindID := range req.BindIDs {
		if len(bindID) > MaxBindIDLength {
			return fmt.Errorf("%w: %d bytes, limit %d", ErrBindIDTooLong, len(bindID), MaxBindIDLength)
		}
	}
	return nil
}

// validateBatchCollections runs the existence pass over the whole batch
// before the lock pass.
func validateBatchCollections(ctx context.Context, tables Tables, ids []CollectionID) error {
	for _, id := range ids {
		_, exists, err := tables.Collection(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %d", ErrCollectionNotFound, id)
		}
	}
	for _, id := range ids {
		status, err := tables.CollectionStatus(ctx, id)
		if err != nil {
			return err
		}
		if status.Locked {
			return fmt.Errorf("%w: %d", ErrCollectionLocked, id)
		}
	}
	return nil
}

type issuancePlan struct {
	collectionOrder []CollectionID
	collections     map[CollectionID]uint64
	bindOrder       []bindKey
	binds           map[bindKey]uint64
}

// planIssuance accumulates the batch on top of the stored counters and
// fails on the first entry that would overflow either counter.
func planIssuance(ctx context.Context, tables Tables, req IssueRequest) (issuancePlan, error) {
	plan := issuancePlan{
		collections: make(map[CollectionID]uint64, len(req.CollectionIDs)),
		binds:       make(map[bindKey]uint64, len(req.CollectionIDs)),
	}
	for i, collectionID := range req.CollectionIDs {
		count := req.Counts[i]
		key := bindKey{bindID: req.BindIDs[i], collectionID: collectionID}

		collectionTotal, ok := plan.collections[collectionID]
		if !ok {
			stored, err := tables.CollectionCount(ctx, collectionID)
			if err != nil {
				return issuancePlan{}, err
			}
			collectionTotal = stored
			plan.collectionOrder = append(plan.collectionOrder, collectionID)
		}
		nextCollection, carry := bits.Add64(collectionTotal, count, 0)
		if carry != 0 {
			return issuancePlan{}, fmt.Errorf("%w: collection %d", ErrOverflow, collectionID)
		}

		bindTotal, ok := plan.binds[key]
		if !ok {
			stored, err := tables.BindCount(ctx, key.bindID, key.collectionID)
			if err != nil {
				return issuancePlan{}, err
			}
			bindTotal = stored
			plan.bindOrder = append(plan.bindOrder, key)
		}
		nextBind, carry := bits.Add64(bindTotal, count, 0)
		if carry != 0 {
			return issuancePlan{}, fmt.Errorf("%w: bind %q in collection %d", ErrOverflow, key.bindID, collectionID)
		}

		plan.collections[collectionID] = nextCollection
		plan.binds[key] = nextBind
	}
	return plan, nil
}

func (p issuancePlan) commit(ctx context.Context, tables Tables) error {
	for _, id := range p.collectionOrder {
		if err := tables.PutCollectionCount(ctx, id, p.collections[id]); err != nil {
			return err
		}
	}
	for _, key := range p.bindOrder {
		if err := tables.PutBindCount(ctx, key.bindID, key.collectionID, p.binds[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) currentHeight(ctx context.Context) (uint64, error) {
	if s.heightSource == nil {
		return 0, nil
	}
	height, err := s.heightSource.CurrentHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("core: read height: %w", err)
	}
	return height, nil
}

func (s *Service) CollectionCount(ctx context.Context, id CollectionID) (uint64, error) {
	if err := s.ensureStore(); err != nil {
		return 0, err
	}
	count, err := s.store.CollectionCount(ctx, id)
	if err != nil {
		return 0, s.mapError(err)
	}
	return count, nil
}

func (s *Service) BindCount(ctx context.Context, bindID BindID, id CollectionID) (uint64, error) {
	if err := s.ensureStore(); err != nil {
		return 0, err
	}
	count, err := s.store.BindCount(ctx, bindID, id)
	if err != nil {
		return 0, s.mapError(err)
	}
	return count, nil
}
