package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-ledger/core"
)

type stubCounterReader struct {
	collectionCountFn func(context.Context, core.CollectionID) (uint64, error)
	bindCountFn       func(context.Context, core.BindID, core.CollectionID) (uint64, error)
}

func (s stubCounterReader) CollectionCount(ctx context.Context, id core.CollectionID) (uint64, error) {
	return s.collectionCountFn(ctx, id)
}

func (s stubCounterReader) BindCount(ctx context.Context, bindID core.BindID, id core.CollectionID) (uint64, error) {
	return s.bindCountFn(ctx, bindID, id)
}

type stubEventLog struct {
	records []core.EventRecord
	filter  core.EventFilter
}

func (s *stubEventLog) Events(_ context.Context, filter core.EventFilter) ([]core.EventRecord, error) {
	s.filter = filter
	return s.records, nil
}

func TestCounterQueries_Delegate(t *testing.T) {
	reader := stubCounterReader{
		collectionCountFn: func(_ context.Context, id core.CollectionID) (uint64, error) {
			if id != 2 {
				t.Fatalf("unexpected collection id %d", id)
			}
			return 11, nil
		},
		bindCountFn: func(_ context.Context, bindID core.BindID, id core.CollectionID) (uint64, error) {
			if bindID != "A" || id != 2 {
				t.Fatalf("unexpected bind lookup %q %d", bindID, id)
			}
			return 5, nil
		},
	}

	count, err := NewGetCollectionCountQuery(reader).Query(context.Background(), GetCollectionCountMessage{CollectionID: 2})
	if err != nil {
		t.Fatalf("collection count: %v", err)
	}
	if count != 11 {
		t.Fatalf("expected collection count 11, got %d", count)
	}
	bindCount, err := NewGetBindCountQuery(reader).Query(context.Background(), GetBindCountMessage{BindID: "A", CollectionID: 2})
	if err != nil {
		t.Fatalf("bind count: %v", err)
	}
	if bindCount != 5 {
		t.Fatalf("expected bind count 5, got %d", bindCount)
	}
}

func TestListEventsQuery_PassesFilter(t *testing.T) {
	log := &stubEventLog{records: []core.EventRecord{{Sequence: 3, Event: core.ValidatorAdded{Validator: "v"}}}}
	records, err := NewListEventsQuery(log).Query(context.Background(), ListEventsMessage{
		Filter: core.EventFilter{AfterSequence: 2, Name: core.EventValidatorAdded, Limit: 5},
	})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(records) != 1 || records[0].Sequence != 3 {
		t.Fatalf("unexpected records %#v", records)
	}
	if log.filter.AfterSequence != 2 || log.filter.Limit != 5 || log.filter.Name != core.EventValidatorAdded {
		t.Fatalf("unexpected filter %#v", log.filter)
	}
}

func TestQueries_AgainstService(t *testing.T) {
	ctx := context.Background()
	svc, err := core.Setup(ctx, core.Config{}, core.Genesis{
		Validators: []core.ValidatorID{"v1", "v2"},
		Administrators: []core.AdministratorEntry{
			{Identity: "creator_1", Role: core.RoleCreator},
		},
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	validators, err := NewListValidatorsQuery(svc).Query(ctx, ListValidatorsMessage{})
	if err != nil {
		t.Fatalf("list validators: %v", err)
	}
	if len(validators) != 2 || validators[0] != "v1" {
		t.Fatalf("unexpected validators %v", validators)
	}

	entries, err := NewGetAdministratorsQuery(svc).Query(ctx, GetAdministratorsMessage{})
	if err != nil {
		t.Fatalf("administrators: %v", err)
	}
	if len(entries) == 0 || entries[0].Identity != "creator_1" || entries[0].Role != core.RoleCreator {
		t.Fatalf("expected creator entry first, got %#v", entries)
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal administrators: %v", err)
	}
	if !strings.Contains(string(payload), `"identity":"creator_1"`) {
		t.Fatalf("expected serialized entries to carry identities, got %s", payload)
	}

	_, err = NewGetCollectionQuery(svc).Query(ctx, GetCollectionMessage{CollectionID: 8})
	if !errors.Is(err, core.ErrCollectionNotFound) {
		t.Fatalf("expected collection not found, got %v", err)
	}

	if err := svc.CreateCollection(ctx, core.SignedCaller("creator_1"), 8, core.CollectionMetadata{Name: "eight", URI: "ipfs://8"}); err != nil {
		t.Fatalf("create collection: %v", err)
	}
	metadata, err := NewGetCollectionQuery(svc).Query(ctx, GetCollectionMessage{CollectionID: 8})
	if err != nil {
		t.Fatalf("get collection: %v", err)
	}
	if metadata.Name != "eight" {
		t.Fatalf("unexpected metadata %#v", metadata)
	}
	status, err := NewGetCollectionStatusQuery(svc).Query(ctx, GetCollectionStatusMessage{CollectionID: 8})
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Locked || status.Limit != 0 {
		t.Fatalf("expected default status, got %#v", status)
	}

	records, err := NewListEventsQuery(svc).Query(ctx, ListEventsMessage{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(records) != 1 || records[0].Event.EventName() != core.EventCollectionCreated {
		t.Fatalf("unexpected events %#v", records)
	}
}

func TestGetAdministratorsQuery_UnsetTableYieldsNil(t *testing.T) {
	svc, err := core.Setup(context.Background(), core.Config{}, core.Genesis{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	entries, err := NewGetAdministratorsQuery(svc).Query(context.Background(), GetAdministratorsMessage{})
	if err != nil {
		t.Fatalf("administrators: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected nil entries for unset table, got %#v", entries)
	}
}
