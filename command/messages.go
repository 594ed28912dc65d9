package command

import (
	"strings"

	"github.com/goliatone/go-ledger/core"
)

const (
	TypeSetValidators       = "ledger.command.validators.set"
	TypeAddValidator        = "ledger.command.validators.add"
	TypeRemoveValidator     = "ledger.command.validators.remove"
	TypeSetAdministrators   = "ledger.command.administrators.set"
	TypeCreateCollection    = "ledger.command.collection.create"
	TypeUpdateCollection    = "ledger.command.collection.update"
	TypeSetCollectionStatus = "ledger.command.collection.set_status"
	TypeIssue               = "ledger.command.issuance.issue"
)

type SetValidatorsMessage struct {
	Caller     core.Caller
	Validators []core.ValidatorID
}

func (SetValidatorsMessage) Type() string { return TypeSetValidators }

func (m SetValidatorsMessage) Validate() error {
	return validateCaller(m.Caller)
}

type AddValidatorMessage struct {
	Caller      core.Caller
	ValidatorID core.ValidatorID
}

func (AddValidatorMessage) Type() string { return TypeAddValidator }

func (m AddValidatorMessage) Validate() error {
	return validateCaller(m.Caller)
}

type RemoveValidatorMessage struct {
	Caller      core.Caller
	ValidatorID core.ValidatorID
}

func (RemoveValidatorMessage) Type() string { return TypeRemoveValidator }

func (m RemoveValidatorMessage) Validate() error {
	return validateCaller(m.Caller)
}

type SetAdministratorsMessage struct {
	Caller         core.Caller
	Administrators []core.AdministratorEntry
}

func (SetAdministratorsMessage) Type() string { return TypeSetAdministrators }

func (m SetAdministratorsMessage) Validate() error {
	return validateCaller(m.Caller)
}

type CreateCollectionMessage struct {
	Caller       core.Caller
	CollectionID core.CollectionID
	Metadata     core.CollectionMetadata
}

func (CreateCollectionMessage) Type() string { return TypeCreateCollection }

func (m CreateCollectionMessage) Validate() error {
	return validateCaller(m.Caller)
}

type UpdateCollectionMessage struct {
	Caller       core.Caller
	CollectionID core.CollectionID
	Metadata     core.CollectionMetadata
}

func (UpdateCollectionMessage) Type() string { return TypeUpdateCollection }

func (m UpdateCollectionMessage) Validate() error {
	return validateCaller(m.Caller)
}

type SetCollectionStatusMessage struct {
	Caller       core.Caller
	CollectionID core.CollectionID
	Locked       bool
}

func (SetCollectionStatusMessage) Type() string { return TypeSetCollectionStatus }

func (m SetCollectionStatusMessage) Validate() error {
	return validateCaller(m.Caller)
}

// IssueMessage leaves batch shape checks to the service so they run after
// the minter check.
type IssueMessage struct {
	Caller  core.Caller
	Request core.IssueRequest
}

func (IssueMessage) Type() string { return TypeIssue }

func (m IssueMessage) Validate() error {
	return validateCaller(m.Caller)
}

func validateCaller(caller core.Caller) error {
	if caller.Root {
		return nil
	}
	if strings.TrimSpace(string(caller.Identity)) == "" {
		return commandValidationError("caller", "caller identity is required")
	}
	return nil
}
