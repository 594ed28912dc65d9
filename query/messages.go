package query

import (
	"strings"

	"github.com/goliatone/go-ledger/core"
)

const (
	TypeListValidators      = "ledger.query.validators.list"
	TypeGetAdministrators   = "ledger.query.administrators.get"
	TypeGetCollection       = "ledger.query.collection.get"
	TypeGetCollectionStatus = "ledger.query.collection.status"
	TypeGetCollectionCount  = "ledger.query.collection.count"
	TypeGetBindCount        = "ledger.query.bind.count"
	TypeListEvents          = "ledger.query.events.list"
)

type ListValidatorsMessage struct{}

func (ListValidatorsMessage) Type() string { return TypeListValidators }

func (ListValidatorsMessage) Validate() error { return nil }

type GetAdministratorsMessage struct{}

func (GetAdministratorsMessage) Type() string { return TypeGetAdministrators }

func (GetAdministratorsMessage) Validate() error { return nil }

type GetCollectionMessage struct {
	CollectionID core.CollectionID
}

func (GetCollectionMessage) Type() string { return TypeGetCollection }

func (GetCollectionMessage) Validate() error { return nil }

type GetCollectionStatusMessage struct {
	CollectionID core.CollectionID
}

func (GetCollectionStatusMessage) Type() string { return TypeGetCollectionStatus }

func (GetCollectionStatusMessage) Validate() error { return nil }

type GetCollectionCountMessage struct {
	CollectionID core.CollectionID
}

func (GetCollectionCountMessage) Type() string { return TypeGetCollectionCount }

func (GetCollectionCountMessage) Validate() error { return nil }

type GetBindCountMessage struct {
	BindID       core.BindID
	CollectionID core.CollectionID
}

func (GetBindCountMessage) Type() string { return TypeGetBindCount }

func (m GetBindCountMessage) Validate() error {
	if strings.TrimSpace(string(m.BindID)) == "" {
		return queryValidationError("bind_id", "bind id is required")
	}
	if len(m.BindID) > core.MaxBindIDLength {
		return queryValidationError("bind_id", "bind id exceeds the maximum length")
	}
	return nil
}

type ListEventsMessage struct {
	Filter core.EventFilter
}

func (ListEventsMessage) Type() string { return TypeListEvents }

func (m ListEventsMessage) Validate() error {
	if m.Filter.AfterSequence < 0 {
		return queryValidationError("after_sequence", "after_sequence must be >= 0")
	}
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	return nil
}
