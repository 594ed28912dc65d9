package core

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// ValidatorSet is an ordered validator list bounded by a fixed capacity.
type ValidatorSet struct {
	ids              []ValidatorID
	capacity         int
	rejectDuplicates bool
}

// NewValidatorSet builds a bounded set from ids. It fails without
// truncating when ids exceed capacity.
func NewValidatorSet(ids []ValidatorID, capacity int, rejectDuplicates bool) (ValidatorSet, error) {
	set := ValidatorSet{
		ids:              make([]ValidatorID, 0, len(ids)),
		capacity:         capacity,
		rejectDuplicates: rejectDuplicates,
	}
	if len(ids) > capacity {
		return ValidatorSet{}, fmt.Errorf("%w: %d validators, capacity %d", ErrTooManyValidators, len(ids), capacity)
	}
	for _, id := range ids {
		if err := set.Push(id); err != nil {
			return ValidatorSet{}, err
		}
	}
	return set, nil
}

// Push appends id, leaving the set unchanged on failure.
func (v *ValidatorSet) Push(id ValidatorID) error {
	if len(v.ids)+1 > v.capacity {
		return fmt.Errorf("%w: capacity %d", ErrTooManyValidators, v.capacity)
	}
	if v.rejectDuplicates && slices.Contains(v.ids, id) {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, id)
	}
	v.ids = append(v.ids, id)
	return nil
}

// Remove drops the first occurrence of id and keeps the order of the rest.
func (v *ValidatorSet) Remove(id ValidatorID) error {
	index := slices.Index(v.ids, id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrValidatorNotFound, id)
	}
	v.ids = slices.Delete(v.ids, index, index+1)
	return nil
}

func (v ValidatorSet) IDs() []ValidatorID {
	return slices.Clone(v.ids)
}

func (v ValidatorSet) Len() int {
	return len(v.ids)
}

func (s *Service) boundedValidatorSet(ids []ValidatorID) (ValidatorSet, error) {
	return NewValidatorSet(ids, s.config.Validators.MaxValidators, s.config.Validators.RejectDuplicates)
}

// loadValidatorSet rebuilds the stored list as a bounded set. A stored list
// is trusted as is, so duplicates already persisted are kept.
func (s *Service) loadValidatorSet(ctx context.Context, tables Tables) (ValidatorSet, error) {
	stored, err := tables.Validators(ctx)
	if err != nil {
		return ValidatorSet{}, err
	}
	return ValidatorSet{
		ids:              stored,
		capacity:         s.config.Validators.MaxValidators,
		rejectDuplicates: s.config.Validators.RejectDuplicates,
	}, nil
}

func (s *Service) SetValidators(ctx context.Context, caller Caller, ids []ValidatorID) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":     callerField(caller),
		"validators": len(ids),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "validators.set", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	if err = s.gate.ensureRoot(caller); err != nil {
		err = s.mapError(err)
		return err
	}
	set, err := s.boundedValidatorSet(ids)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := tables.PutValidators(ctx, set.IDs()); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, ValidatorsSet{Validators: set.IDs()})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) AddValidator(ctx context.Context, caller Caller, id ValidatorID) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":    callerField(caller),
		"validator": string(id),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "validators.add", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	if err = s.gate.ensureRoot(caller); err != nil {
		err = s.mapError(err)
		return err
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		set, err := s.loadValidatorSet(ctx, tables)
		if err != nil {
			return err
		}
		if err := set.Push(id); err != nil {
			return err
		}
		if err := tables.PutValidators(ctx, set.IDs()); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, ValidatorAdded{Validator: id})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) RemoveValidator(ctx context.Context, caller Caller, id ValidatorID) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":    callerField(caller),
		"validator": string(id),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "validators.remove", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	if err = s.gate.ensureRoot(caller); err != nil {
		err = s.mapError(err)
		return err
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		set, err := s.loadValidatorSet(ctx, tables)
		if err != nil {
			return err
		}
		if err := set.Remove(id); err != nil {
			return err
		}
		if err := tables.PutValidators(ctx, set.IDs()); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, ValidatorRemoved{Validator: id})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

// Validators returns the current ordered validator list.
func (s *Service) Validators(ctx context.Context) ([]ValidatorID, error) {
	if err := s.ensureStore(); err != nil {
		return nil, err
	}
	ids, err := s.store.Validators(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return ids, nil
}
