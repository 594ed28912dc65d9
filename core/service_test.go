package core

import (
	"context"
	"testing"
)

func TestSetup_BootstrapLoadsGenesis(t *testing.T) {
	ctx := context.Background()
	svc, err := Setup(ctx, Config{}, Genesis{
		Validators:     []ValidatorID{"v1", "v2"},
		Administrators: testAdministrators(),
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	validators, err := svc.Validators(ctx)
	if err != nil {
		t.Fatalf("validators: %v", err)
	}
	if !equalValidators(validators, "v1", "v2") {
		t.Fatalf("expected genesis validators, got %v", validators)
	}
	table, err := svc.Administrators(ctx)
	if err != nil {
		t.Fatalf("administrators: %v", err)
	}
	if !table.HasRole(testCreator, RoleCreator) || !table.HasRole(testMinter, RoleMinter) {
		t.Fatalf("expected genesis administrators, got %#v", table.Entries())
	}
	if names := eventNames(t, svc.Dependencies().Store.(EventLog)); len(names) != 0 {
		t.Fatalf("expected bootstrap to emit no events, got %v", names)
	}
}

func TestSetup_BootstrapOverflowIsAnError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validators.MaxValidators = 2
	store := NewMemoryStore()

	_, err := Setup(context.Background(), cfg, Genesis{
		Validators: []ValidatorID{"v1", "v2", "v3"},
	}, WithStore(store))
	requireErrorIs(t, err, ErrTooManyValidators)

	validators, err := store.Validators(context.Background())
	if err != nil {
		t.Fatalf("validators: %v", err)
	}
	if len(validators) != 0 {
		t.Fatalf("expected no truncated genesis set, got %v", validators)
	}
}

func TestSetup_EmptyGenesisLeavesAdministratorsUnset(t *testing.T) {
	svc, err := Setup(context.Background(), Config{}, Genesis{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	table, err := svc.Administrators(context.Background())
	if err != nil {
		t.Fatalf("administrators: %v", err)
	}
	if table.IsSet() {
		t.Fatalf("expected unset administrators")
	}
}

func TestMemoryStore_EventsFilterAndSequence(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	root := RootCaller()

	for _, id := range []ValidatorID{"a", "b", "c"} {
		if err := svc.AddValidator(ctx, root, id); err != nil {
			t.Fatalf("add validator %s: %v", id, err)
		}
	}
	mustCreateCollection(t, svc, 1, "alpha")

	log := svc.Dependencies().Store.(EventLog)
	all, err := log.Events(ctx, EventFilter{})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}
	for index, record := range all {
		if record.Sequence != int64(index+1) {
			t.Fatalf("expected sequence %d, got %d", index+1, record.Sequence)
		}
		if record.RecordedAt.IsZero() {
			t.Fatalf("expected recorded_at to be set")
		}
	}

	page, err := log.Events(ctx, EventFilter{AfterSequence: 1, Name: EventValidatorAdded, Limit: 1})
	if err != nil {
		t.Fatalf("events page: %v", err)
	}
	if len(page) != 1 || page[0].Sequence != 2 {
		t.Fatalf("expected second added event, got %#v", page)
	}
}

func TestEvents_EncodeDecodeMinted(t *testing.T) {
	name, payload, err := EncodeEvent(Minted{
		Height:        9,
		BindIDs:       []BindID{"A"},
		CollectionIDs: []CollectionID{2},
		Counts:        []uint64{4},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if name != EventMinted {
		t.Fatalf("expected minted name, got %q", name)
	}
	decoded, err := DecodeEvent(name, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	minted, ok := decoded.(Minted)
	if !ok || minted.Height != 9 || minted.CollectionIDs[0] != 2 {
		t.Fatalf("unexpected decoded event %#v", decoded)
	}
	if _, err := DecodeEvent("ledger.unknown", payload); err == nil {
		t.Fatalf("expected unknown event name to fail")
	}
}

func TestService_EventsReadsStoreLog(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Config{})
	if err := svc.AddValidator(ctx, RootCaller(), "v1"); err != nil {
		t.Fatalf("add validator: %v", err)
	}
	records, err := svc.Events(ctx, EventFilter{Name: EventValidatorAdded})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one added event, got %d", len(records))
	}
	added, ok := records[0].Event.(ValidatorAdded)
	if !ok || added.Validator != "v1" {
		t.Fatalf("unexpected event %#v", records[0].Event)
	}
}
