package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ledger/core"
)

type stubMutatingService struct {
	setValidatorsFn       func(context.Context, core.Caller, []core.ValidatorID) error
	addValidatorFn        func(context.Context, core.Caller, core.ValidatorID) error
	removeValidatorFn     func(context.Context, core.Caller, core.ValidatorID) error
	validatorsFn          func(context.Context) ([]core.ValidatorID, error)
	setAdministratorsFn   func(context.Context, core.Caller, []core.AdministratorEntry) error
	createCollectionFn    func(context.Context, core.Caller, core.CollectionID, core.CollectionMetadata) error
	updateCollectionFn    func(context.Context, core.Caller, core.CollectionID, core.CollectionMetadata) error
	setCollectionStatusFn func(context.Context, core.Caller, core.CollectionID, bool) error
	collectionStatusFn    func(context.Context, core.CollectionID) (core.CollectionStatus, error)
	issueFn               func(context.Context, core.Caller, core.IssueRequest) error
}

func (s stubMutatingService) SetValidators(ctx context.Context, caller core.Caller, ids []core.ValidatorID) error {
	if s.setValidatorsFn == nil {
		return nil
	}
	return s.setValidatorsFn(ctx, caller, ids)
}

func (s stubMutatingService) AddValidator(ctx context.Context, caller core.Caller, id core.ValidatorID) error {
	if s.addValidatorFn == nil {
		return nil
	}
	return s.addValidatorFn(ctx, caller, id)
}

func (s stubMutatingService) RemoveValidator(ctx context.Context, caller core.Caller, id core.ValidatorID) error {
	if s.removeValidatorFn == nil {
		return nil
	}
	return s.removeValidatorFn(ctx, caller, id)
}

func (s stubMutatingService) Validators(ctx context.Context) ([]core.ValidatorID, error) {
	if s.validatorsFn == nil {
		return nil, nil
	}
	return s.validatorsFn(ctx)
}

func (s stubMutatingService) SetAdministrators(ctx context.Context, caller core.Caller, entries []core.AdministratorEntry) error {
	if s.setAdministratorsFn == nil {
		return nil
	}
	return s.setAdministratorsFn(ctx, caller, entries)
}

func (s stubMutatingService) CreateCollection(ctx context.Context, caller core.Caller, id core.CollectionID, metadata core.CollectionMetadata) error {
	if s.createCollectionFn == nil {
		return nil
	}
	return s.createCollectionFn(ctx, caller, id, metadata)
}

func (s stubMutatingService) UpdateCollection(ctx context.Context, caller core.Caller, id core.CollectionID, metadata core.CollectionMetadata) error {
	if s.updateCollectionFn == nil {
		return nil
	}
	return s.updateCollectionFn(ctx, caller, id, metadata)
}

func (s stubMutatingService) SetCollectionStatus(ctx context.Context, caller core.Caller, id core.CollectionID, locked bool) error {
	if s.setCollectionStatusFn == nil {
		return nil
	}
	return s.setCollectionStatusFn(ctx, caller, id, locked)
}

func (s stubMutatingService) CollectionStatus(ctx context.Context, id core.CollectionID) (core.CollectionStatus, error) {
	if s.collectionStatusFn == nil {
		return core.CollectionStatus{}, nil
	}
	return s.collectionStatusFn(ctx, id)
}

func (s stubMutatingService) Issue(ctx context.Context, caller core.Caller, req core.IssueRequest) error {
	if s.issueFn == nil {
		return nil
	}
	return s.issueFn(ctx, caller, req)
}

func TestAddValidatorCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	called := false
	svc := stubMutatingService{
		addValidatorFn: func(_ context.Context, caller core.Caller, id core.ValidatorID) error {
			called = true
			if !caller.Root || id != "v3" {
				t.Fatalf("unexpected add payload: %#v %q", caller, id)
			}
			return nil
		},
		validatorsFn: func(context.Context) ([]core.ValidatorID, error) {
			return []core.ValidatorID{"v1", "v3"}, nil
		},
	}

	cmd := NewAddValidatorCommand(svc)
	collector := gocmd.NewResult[[]core.ValidatorID]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, AddValidatorMessage{Caller: core.RootCaller(), ValidatorID: "v3"}); err != nil {
		t.Fatalf("execute add validator: %v", err)
	}
	if !called {
		t.Fatalf("expected add validator invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected validator set result")
	}
	if len(result) != 2 || result[1] != "v3" {
		t.Fatalf("unexpected validator set result: %v", result)
	}
}

func TestValidatorCommands_SkipReadWithoutCollector(t *testing.T) {
	svc := stubMutatingService{
		validatorsFn: func(context.Context) ([]core.ValidatorID, error) {
			t.Fatalf("expected no validator read without a result collector")
			return nil, nil
		},
	}
	if err := NewSetValidatorsCommand(svc).Execute(context.Background(), SetValidatorsMessage{
		Caller:     core.RootCaller(),
		Validators: []core.ValidatorID{"a"},
	}); err != nil {
		t.Fatalf("execute set validators: %v", err)
	}
	if err := NewRemoveValidatorCommand(svc).Execute(context.Background(), RemoveValidatorMessage{
		Caller:      core.RootCaller(),
		ValidatorID: "a",
	}); err != nil {
		t.Fatalf("execute remove validator: %v", err)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("collections", func(t *testing.T) {
		var created, updated bool
		svc := stubMutatingService{
			createCollectionFn: func(_ context.Context, caller core.Caller, id core.CollectionID, metadata core.CollectionMetadata) error {
				created = caller.Identity == "creator_1" && id == 4 && metadata.Name == "alpha"
				return nil
			},
			updateCollectionFn: func(_ context.Context, _ core.Caller, id core.CollectionID, metadata core.CollectionMetadata) error {
				updated = id == 4 && metadata.URI == "ipfs://alpha-2"
				return nil
			},
		}
		caller := core.SignedCaller("creator_1")
		if err := NewCreateCollectionCommand(svc).Execute(context.Background(), CreateCollectionMessage{
			Caller:       caller,
			CollectionID: 4,
			Metadata:     core.CollectionMetadata{Name: "alpha", URI: "ipfs://alpha"},
		}); err != nil {
			t.Fatalf("execute create collection: %v", err)
		}
		if err := NewUpdateCollectionCommand(svc).Execute(context.Background(), UpdateCollectionMessage{
			Caller:       caller,
			CollectionID: 4,
			Metadata:     core.CollectionMetadata{Name: "alpha", URI: "ipfs://alpha-2"},
		}); err != nil {
			t.Fatalf("execute update collection: %v", err)
		}
		if !created || !updated {
			t.Fatalf("expected create and update invocations, got created=%v updated=%v", created, updated)
		}
	})

	t.Run("status stores result", func(t *testing.T) {
		svc := stubMutatingService{
			setCollectionStatusFn: func(_ context.Context, _ core.Caller, id core.CollectionID, locked bool) error {
				if id != 9 || !locked {
					t.Fatalf("unexpected status payload: %d %v", id, locked)
				}
				return nil
			},
			collectionStatusFn: func(context.Context, core.CollectionID) (core.CollectionStatus, error) {
				return core.CollectionStatus{Locked: true}, nil
			},
		}
		collector := gocmd.NewResult[core.CollectionStatus]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewSetCollectionStatusCommand(svc).Execute(ctx, SetCollectionStatusMessage{
			Caller:       core.SignedCaller("creator_1"),
			CollectionID: 9,
			Locked:       true,
		}); err != nil {
			t.Fatalf("execute set status: %v", err)
		}
		status, ok := collector.Load()
		if !ok || !status.Locked {
			t.Fatalf("expected locked status result, got %#v ok=%v", status, ok)
		}
	})

	t.Run("issue propagates service error", func(t *testing.T) {
		failure := errors.New("locked")
		svc := stubMutatingService{
			issueFn: func(_ context.Context, _ core.Caller, req core.IssueRequest) error {
				if len(req.BindIDs) != 1 {
					t.Fatalf("unexpected issue request: %#v", req)
				}
				return failure
			},
		}
		err := NewIssueCommand(svc).Execute(context.Background(), IssueMessage{
			Caller: core.SignedCaller("minter_1"),
			Request: core.IssueRequest{
				BindIDs:       []core.BindID{"A"},
				CollectionIDs: []core.CollectionID{1},
				Counts:        []uint64{1},
			},
		})
		if !errors.Is(err, failure) {
			t.Fatalf("expected service error, got %v", err)
		}
	})

	t.Run("administrators", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			setAdministratorsFn: func(_ context.Context, caller core.Caller, entries []core.AdministratorEntry) error {
				called = caller.Root && len(entries) == 1
				return nil
			},
		}
		if err := NewSetAdministratorsCommand(svc).Execute(context.Background(), SetAdministratorsMessage{
			Caller:         core.RootCaller(),
			Administrators: []core.AdministratorEntry{{Identity: "minter_1", Role: core.RoleMinter}},
		}); err != nil {
			t.Fatalf("execute set administrators: %v", err)
		}
		if !called {
			t.Fatalf("expected set administrators invocation")
		}
	})
}

func TestIssueCommand_AgainstService(t *testing.T) {
	ctx := context.Background()
	svc, err := core.Setup(ctx, core.Config{}, core.Genesis{
		Administrators: []core.AdministratorEntry{
			{Identity: "creator_1", Role: core.RoleCreator},
			{Identity: "minter_1", Role: core.RoleMinter},
		},
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := NewCreateCollectionCommand(svc).Execute(ctx, CreateCollectionMessage{
		Caller:       core.SignedCaller("creator_1"),
		CollectionID: 1,
		Metadata:     core.CollectionMetadata{Name: "alpha"},
	}); err != nil {
		t.Fatalf("create collection: %v", err)
	}

	err = NewIssueCommand(svc).Execute(ctx, IssueMessage{
		Caller: core.SignedCaller("creator_1"),
		Request: core.IssueRequest{
			BindIDs:       []core.BindID{"A"},
			CollectionIDs: []core.CollectionID{1},
			Counts:        []uint64{1},
		},
	})
	if !errors.Is(err, core.ErrNotAdministrator) {
		t.Fatalf("expected creator to be rejected as minter, got %v", err)
	}

	if err := NewIssueCommand(svc).Execute(ctx, IssueMessage{
		Caller: core.SignedCaller("minter_1"),
		Request: core.IssueRequest{
			BindIDs:       []core.BindID{"A"},
			CollectionIDs: []core.CollectionID{1},
			Counts:        []uint64{3},
		},
	}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	count, err := svc.CollectionCount(ctx, 1)
	if err != nil {
		t.Fatalf("collection count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestCommands_AcceptEntriesTheServiceAccepts(t *testing.T) {
	ctx := context.Background()
	svc, err := core.Setup(ctx, core.Config{}, core.Genesis{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	setValidators := SetValidatorsMessage{Caller: core.RootCaller(), Validators: []core.ValidatorID{"v1", ""}}
	if err := setValidators.Validate(); err != nil {
		t.Fatalf("validate set validators: %v", err)
	}
	if err := NewSetValidatorsCommand(svc).Execute(ctx, setValidators); err != nil {
		t.Fatalf("execute set validators: %v", err)
	}
	validators, err := svc.Validators(ctx)
	if err != nil {
		t.Fatalf("validators: %v", err)
	}
	if len(validators) != 2 || validators[1] != "" {
		t.Fatalf("expected blank id to be stored like a direct call, got %v", validators)
	}

	setAdministrators := SetAdministratorsMessage{
		Caller:         core.RootCaller(),
		Administrators: []core.AdministratorEntry{{Identity: "operator", Role: core.Role(7)}},
	}
	if err := setAdministrators.Validate(); err != nil {
		t.Fatalf("validate set administrators: %v", err)
	}
	if err := NewSetAdministratorsCommand(svc).Execute(ctx, setAdministrators); err != nil {
		t.Fatalf("execute set administrators: %v", err)
	}
	table, err := svc.Administrators(ctx)
	if err != nil {
		t.Fatalf("administrators: %v", err)
	}
	if !table.HasRole("operator", core.Role(7)) || table.HasRole("operator", core.RoleCreator) {
		t.Fatalf("expected role byte 7 to be stored verbatim, got %#v", table.Entries())
	}
}
