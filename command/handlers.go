package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ledger/core"
)

type MutatingService interface {
	SetValidators(ctx context.Context, caller core.Caller, ids []core.ValidatorID) error
	AddValidator(ctx context.Context, caller core.Caller, id core.ValidatorID) error
	RemoveValidator(ctx context.Context, caller core.Caller, id core.ValidatorID) error
	Validators(ctx context.Context) ([]core.ValidatorID, error)
	SetAdministrators(ctx context.Context, caller core.Caller, entries []core.AdministratorEntry) error
	CreateCollection(ctx context.Context, caller core.Caller, id core.CollectionID, metadata core.CollectionMetadata) error
	UpdateCollection(ctx context.Context, caller core.Caller, id core.CollectionID, metadata core.CollectionMetadata) error
	SetCollectionStatus(ctx context.Context, caller core.Caller, id core.CollectionID, locked bool) error
	CollectionStatus(ctx context.Context, id core.CollectionID) (core.CollectionStatus, error)
	Issue(ctx context.Context, caller core.Caller, req core.IssueRequest) error
}

type SetValidatorsCommand struct {
	service MutatingService
}

func NewSetValidatorsCommand(service MutatingService) *SetValidatorsCommand {
	return &SetValidatorsCommand{service: service}
}

func (c *SetValidatorsCommand) Execute(ctx context.Context, msg SetValidatorsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: validator service is required")
	}
	if err := c.service.SetValidators(ctx, msg.Caller, msg.Validators); err != nil {
		return err
	}
	return storeValidators(ctx, c.service)
}

type AddValidatorCommand struct {
	service MutatingService
}

func NewAddValidatorCommand(service MutatingService) *AddValidatorCommand {
	return &AddValidatorCommand{service: service}
}

func (c *AddValidatorCommand) Execute(ctx context.Context, msg AddValidatorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: validator service is required")
	}
	if err := c.service.AddValidator(ctx, msg.Caller, msg.ValidatorID); err != nil {
		return err
	}
	return storeValidators(ctx, c.service)
}

type RemoveValidatorCommand struct {
	service MutatingService
}

func NewRemoveValidatorCommand(service MutatingService) *RemoveValidatorCommand {
	return &RemoveValidatorCommand{service: service}
}

func (c *RemoveValidatorCommand) Execute(ctx context.Context, msg RemoveValidatorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: validator service is required")
	}
	if err := c.service.RemoveValidator(ctx, msg.Caller, msg.ValidatorID); err != nil {
		return err
	}
	return storeValidators(ctx, c.service)
}

type SetAdministratorsCommand struct {
	service MutatingService
}

func NewSetAdministratorsCommand(service MutatingService) *SetAdministratorsCommand {
	return &SetAdministratorsCommand{service: service}
}

func (c *SetAdministratorsCommand) Execute(ctx context.Context, msg SetAdministratorsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: administrator service is required")
	}
	return c.service.SetAdministrators(ctx, msg.Caller, msg.Administrators)
}

type CreateCollectionCommand struct {
	service MutatingService
}

func NewCreateCollectionCommand(service MutatingService) *CreateCollectionCommand {
	return &CreateCollectionCommand{service: service}
}

func (c *CreateCollectionCommand) Execute(ctx context.Context, msg CreateCollectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: collection service is required")
	}
	return c.service.CreateCollection(ctx, msg.Caller, msg.CollectionID, msg.Metadata)
}

type UpdateCollectionCommand struct {
	service MutatingService
}

func NewUpdateCollectionCommand(service MutatingService) *UpdateCollectionCommand {
	return &UpdateCollectionCommand{service: service}
}

func (c *UpdateCollectionCommand) Execute(ctx context.Context, msg UpdateCollectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: collection service is required")
	}
	return c.service.UpdateCollection(ctx, msg.Caller, msg.CollectionID, msg.Metadata)
}

type SetCollectionStatusCommand struct {
	service MutatingService
}

func NewSetCollectionStatusCommand(service MutatingService) *SetCollectionStatusCommand {
	return &SetCollectionStatusCommand{service: service}
}

func (c *SetCollectionStatusCommand) Execute(ctx context.Context, msg SetCollectionStatusMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: collection service is required")
	}
	if err := c.service.SetCollectionStatus(ctx, msg.Caller, msg.CollectionID, msg.Locked); err != nil {
		return err
	}
	if gocmd.ResultFromContext[core.CollectionStatus](ctx) == nil {
		return nil
	}
	status, err := c.service.CollectionStatus(ctx, msg.CollectionID)
	if err != nil {
		return err
	}
	storeResult(ctx, status)
	return nil
}

type IssueCommand struct {
	service MutatingService
}

func NewIssueCommand(service MutatingService) *IssueCommand {
	return &IssueCommand{service: service}
}

func (c *IssueCommand) Execute(ctx context.Context, msg IssueMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: issuance service is required")
	}
	return c.service.Issue(ctx, msg.Caller, msg.Request)
}

// storeValidators publishes the validator set after a change when the
// caller attached a result collector.
func storeValidators(ctx context.Context, service MutatingService) error {
	if gocmd.ResultFromContext[[]core.ValidatorID](ctx) == nil {
		return nil
	}
	validators, err := service.Validators(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, validators)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
