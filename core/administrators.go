package core

import (
	"context"
	"time"
)

// SetAdministrators replaces the administrator table. An empty list leaves
// the table unset, which denies every identity.
func (s *Service) SetAdministrators(ctx context.Context, caller Caller, entries []AdministratorEntry) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"caller":  callerField(caller),
		"entries": len(entries),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "administrators.set", err, fields)
	}()

	if err = s.ensureStore(); err != nil {
		return err
	}
	if err = s.gate.ensureRoot(caller); err != nil {
		err = s.mapError(err)
		return err
	}

	table := NewAdministratorTable(entries)
	err = s.store.Atomic(ctx, func(ctx context.Context, tables Tables) error {
		if err := tables.PutAdministrators(ctx, table); err != nil {
			return err
		}
		return tables.AppendEvent(ctx, AdministratorsUpdated{Administrators: table.Entries()})
	})
	if err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) Administrators(ctx context.Context) (AdministratorTable, error) {
	if err := s.ensureStore(); err != nil {
		return AdministratorTable{}, err
	}
	table, err := s.store.Administrators(ctx)
	if err != nil {
		return AdministratorTable{}, s.mapError(err)
	}
	return table, nil
}
