package core

import (
	"context"
	"fmt"
)

type capabilityGate struct{}

// ensureRoot checks the superuser capability itself, never an identity.
func (capabilityGate) ensureRoot(caller Caller) error {
	if !caller.Root {
		return ErrNotRoot
	}
	return nil
}

// ensureRole checks (identity, role) membership in the administrator table
// as read through tables, so the check sees the same view as the mutation.
func (capabilityGate) ensureRole(ctx context.Context, tables Tables, caller Caller, role Role) error {
	if caller.Root || caller.Identity == "" {
		return ErrNotAdministrator
	}
	admins, err := tables.Administrators(ctx)
	if err != nil {
		return fmt.Errorf("core: load administrators: %w", err)
	}
	if !admins.HasRole(caller.Identity, role) {
		return ErrNotAdministrator
	}
	return nil
}
