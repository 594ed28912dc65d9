package core

import (
	"encoding/json"
	"fmt"
)

const (
	EventValidatorsSet           = "ledger.validators.set"
	EventValidatorAdded          = "ledger.validators.added"
	EventValidatorRemoved        = "ledger.validators.removed"
	EventAdministratorsUpdated   = "ledger.administrators.updated"
	EventCollectionCreated       = "ledger.collection.created"
	EventCollectionUpdated       = "ledger.collection.updated"
	EventCollectionStatusUpdated = "ledger.collection.status_updated"
	EventMinted                  = "ledger.issuance.minted"
)

// Event is a notification appended to the event log by a successful
// mutation. Each carries the full post-mutation payload.
type Event interface {
	EventName() string
}

type ValidatorsSet struct {
	Validators []ValidatorID `json:"validators"`
}

func (ValidatorsSet) EventName() string { return EventValidatorsSet }

type ValidatorAdded struct {
	Validator ValidatorID `json:"validator"`
}

func (ValidatorAdded) EventName() string { return EventValidatorAdded }

type ValidatorRemoved struct {
	Validator ValidatorID `json:"validator"`
}

func (ValidatorRemoved) EventName() string { return EventValidatorRemoved }

type AdministratorsUpdated struct {
	Administrators []AdministratorEntry `json:"administrators"`
}

func (AdministratorsUpdated) EventName() string { return EventAdministratorsUpdated }

type CollectionCreated struct {
	CollectionID CollectionID `json:"collection_id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
}

func (CollectionCreated) EventName() string { return EventCollectionCreated }

type CollectionUpdated struct {
	CollectionID CollectionID `json:"collection_id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
}

func (CollectionUpdated) EventName() string { return EventCollectionUpdated }

type CollectionStatusUpdated struct {
	CollectionID CollectionID `json:"collection_id"`
	Limit        uint64       `json:"limit"`
	Category     uint8        `json:"category"`
	Locked       bool         `json:"locked"`
}

func (CollectionStatusUpdated) EventName() string { return EventCollectionStatusUpdated }

type Minted struct {
	Height        uint64         `json:"height"`
	BindIDs       []BindID       `json:"bind_ids"`
	CollectionIDs []CollectionID `json:"collection_ids"`
	Counts        []uint64       `json:"counts"`
}

func (Minted) EventName() string { return EventMinted }

// EncodeEvent serializes an event payload for durable storage.
func EncodeEvent(event Event) (string, []byte, error) {
	if event == nil {
		return "", nil, fmt.Errorf("core: event is nil")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("core: encode event %s: %w", event.EventName(), err)
	}
	return event.EventName(), payload, nil
}

// DecodeEvent restores a typed event from its stored name and payload.
func DecodeEvent(name string, payload []byte) (Event, error) {
	var event Event
	switch name {
	case EventValidatorsSet:
		event = &ValidatorsSet{}
	case EventValidatorAdded:
		event = &ValidatorAdded{}
	case EventValidatorRemoved:
		event = &ValidatorRemoved{}
	case EventAdministratorsUpdated:
		event = &AdministratorsUpdated{}
	case EventCollectionCreated:
		event = &CollectionCreated{}
	case EventCollectionUpdated:
		event = &CollectionUpdated{}
	case EventCollectionStatusUpdated:
		event = &CollectionStatusUpdated{}
	case EventMinted:
		event = &Minted{}
	default:
		return nil, fmt.Errorf("core: unknown event %q", name)
	}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("core: decode event %s: %w", name, err)
	}
	return derefEvent(event), nil
}

func derefEvent(event Event) Event {
	switch typed := event.(type) {
	case *ValidatorsSet:
		return *typed
	case *ValidatorAdded:
		return *typed
	case *ValidatorRemoved:
		return *typed
	case *AdministratorsUpdated:
		return *typed
	case *CollectionCreated:
		return *typed
	case *CollectionUpdated:
		return *typed
	case *CollectionStatusUpdated:
		return *typed
	case *Minted:
		return *typed
	default:
		return event
	}
}
