package core

import (
	"context"
	"fmt"
	"time"
)

func validateCollectionMetadata(metadata CollectionMetadata) error {
	if len(metadata.Name) > MaxCollectionDataLength {
		return fmt.Errorf("%w: name is %d bytes, limit %d", ErrCollectionDataTooLong, len(metadata.Name), MaxCollectionDataLength)
	}
	if len(metadata.URI) > MaxCollectionDataLength {
		return fmt.Errorf("%w: uri is %d bytes, limit %d", ErrCollectionDataTooLong, len(metadata.URI), MaxCollectionDataLength)
	}
	return nil
}

func (s *Service) CreateCollection(ctx context.Context, caller Caller, id CollectionID, metadata CollectionMetadata) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":        callerField(caller),
		"collection_id": uint64(id),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "collection.create", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := s.gate.ensureRole(ctx, tables, caller, RoleCreator); err != nil {
			return err
		}
		if err := validateCollectionMetadata(metadata); err != nil {
			return err
		}
		_, exists, err := tables.Collection(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %d", ErrCollectionAlreadyExists, id)
		}
		if err := tables.PutCollection(ctx, id, metadata); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, CollectionCreated{
			CollectionID: id,
			Name:         metadata.Name,
			URI:          metadata.URI,
		})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) UpdateCollection(ctx context.Context, caller Caller, id CollectionID, metadata CollectionMetadata) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":        callerField(caller),
		"collection_id": uint64(id),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "collection.update", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := s.gate.ensureRole(ctx, tables, caller, RoleCreator); err != nil {
			return err
		}
		if err := validateCollectionMetadata(metadata); err != nil {
			return err
		}
		_, exists, err := tables.Collection(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %d", ErrCollectionNotFound, id)
		}
		if err := tables.PutCollection(ctx, id, metadata); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, CollectionUpdated{
			CollectionID: id,
			Name:         metadata.Name,
			URI:          metadata.URI,
		})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) Collection(ctx context.Context, id CollectionID) (CollectionMetadata, error) {
	if err := s.ensureStore(); err != nil {
		return CollectionMetadata{}, err
	}
	metadata, exists, err := s.store.Collection(ctx, id)
	if err != nil {
		return CollectionMetadata{}, s.mapError(err)
	}
	if !exists {
		return CollectionMetadata{}, s.mapError(fmt.Errorf("%w: %d", ErrCollectionNotFound, id))
	}
	return metadata, nil
}

// SetCollectionStatus flips the lock flag and keeps limit and category.
// The collection does not have to be registered.
func (s *Service) SetCollectionStatus(ctx context.Context, caller Caller, id CollectionID, locked bool) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":        callerField(caller),
		"collection_id": uint64(id),
		"locked":        locked,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "collection.set_status", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := s.gate.ensureRole(ctx, tables, caller, RoleCreator); err != nil {
			return err
		}
		status, err := tables.CollectionStatus(ctx, id)
		if err != nil {
			return err
		}
		status.Locked = locked
		if err := tables.PutCollectionStatus(ctx, id, status); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, CollectionStatusUpdated{
			CollectionID: id,
			Limit:        status.Limit,
			Category:     status.Category,
			Locked:       status.Locked,
		})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) CollectionStatus(ctx context.Context, id CollectionID) (CollectionStatus, error) {
	if err := s.ensureStore(); err != nil {
		return CollectionStatus{}, err
	}
	status, err := s.store.CollectionStatus(ctx, id)
	if err != nil {
		return CollectionStatus{}, s.mapError(err)
	}
	return status, nil
}
