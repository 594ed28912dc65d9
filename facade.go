package ledger

import (
	"fmt"

	ledgercommand "github.com/goliatone/go-ledger/command"
	"github.com/goliatone/go-ledger/core"
	ledgerquery "github.com/goliatone/go-ledger/query"
)

type CommandQueryService interface {
	ledgercommand.MutatingService
	ledgerquery.ValidatorReader
	ledgerquery.AdministratorReader
	ledgerquery.CollectionReader
	ledgerquery.CounterReader
}

type Commands struct {
	SetValidators       *ledgercommand.SetValidatorsCommand
	AddValidator        *ledgercommand.AddValidatorCommand
	RemoveValidator     *ledgercommand.RemoveValidatorCommand
	SetAdministrators   *ledgercommand.SetAdministratorsCommand
	CreateCollection    *ledgercommand.CreateCollectionCommand
	UpdateCollection    *ledgercommand.UpdateCollectionCommand
	SetCollectionStatus *ledgercommand.SetCollectionStatusCommand
	Issue               *ledgercommand.IssueCommand
}

type Queries struct {
	ListValidators      *ledgerquery.ListValidatorsQuery
	GetAdministrators   *ledgerquery.GetAdministratorsQuery
	GetCollection       *ledgerquery.GetCollectionQuery
	GetCollectionStatus *ledgerquery.GetCollectionStatusQuery
	GetCollectionCount  *ledgerquery.GetCollectionCountQuery
	GetBindCount        *ledgerquery.GetBindCountQuery
	// ListEvents is nil when no event log is available.
	ListEvents *ledgerquery.ListEventsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	eventLog core.EventLog
}

// WithEventLog overrides the log read by the ListEvents query.
func WithEventLog(log core.EventLog) FacadeOption {
	return func(options *facadeOptions) {
		options.eventLog = log
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("ledger: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	log := cfg.eventLog
	if log == nil {
		log = resolveEventLog(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SetValidators:       ledgercommand.NewSetValidatorsCommand(service),
		AddValidator:        ledgercommand.NewAddValidatorCommand(service),
		RemoveValidator:     ledgercommand.NewRemoveValidatorCommand(service),
		SetAdministrators:   ledgercommand.NewSetAdministratorsCommand(service),
		CreateCollection:    ledgercommand.NewCreateCollectionCommand(service),
		UpdateCollection:    ledgercommand.NewUpdateCollectionCommand(service),
		SetCollectionStatus: ledgercommand.NewSetCollectionStatusCommand(service),
		Issue:               ledgercommand.NewIssueCommand(service),
	}
	facade.queries = Queries{
		ListValidators:      ledgerquery.NewListValidatorsQuery(service),
		GetAdministrators:   ledgerquery.NewGetAdministratorsQuery(service),
		GetCollection:       ledgerquery.NewGetCollectionQuery(service),
		GetCollectionStatus: ledgerquery.NewGetCollectionStatusQuery(service),
		GetCollectionCount:  ledgerquery.NewGetCollectionCountQuery(service),
		GetBindCount:        ledgerquery.NewGetBindCountQuery(service),
	}
	if log != nil {
		facade.queries.ListEvents = ledgerquery.NewListEventsQuery(log)
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// resolveEventLog prefers the service itself, then the event log of its
// configured store.
func resolveEventLog(service CommandQueryService) core.EventLog {
	if log, ok := service.(core.EventLog); ok {
		return log
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	log, _ := provider.Dependencies().Store.(core.EventLog)
	return log
}
