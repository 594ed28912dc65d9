package gocommand

import (
	"context"
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	ledgercommand "github.com/goliatone/go-ledger/command"
	"github.com/goliatone/go-ledger/core"
	ledgerquery "github.com/goliatone/go-ledger/query"
)

// LedgerService is the surface needed to register every ledger command and
// query. *core.Service satisfies it.
type LedgerService interface {
	ledgercommand.MutatingService
	ledgerquery.ValidatorReader
	ledgerquery.AdministratorReader
	ledgerquery.CollectionReader
	ledgerquery.CounterReader
	Events(ctx context.Context, filter core.EventFilter) ([]core.EventRecord, error)
}

// Subscriptions holds the dispatcher subscriptions created by RegisterLedger.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterLedger registers and subscribes the ledger command and query
// handlers. On failure every subscription made so far is released.
func RegisterLedger(adapter *RegistryAdapter, service LedgerService, runnerOpts ...runner.Option) (Subscriptions, error) {
	if service == nil {
		return nil, fmt.Errorf("gocommand: ledger service is required")
	}
	var subscriptions Subscriptions
	steps := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewSetValidatorsCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewAddValidatorCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewRemoveValidatorCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewSetAdministratorsCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewCreateCollectionCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewUpdateCollectionCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewSetCollectionStatusCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe(adapter, ledgercommand.NewIssueCommand(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewListValidatorsQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewGetAdministratorsQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewGetCollectionQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewGetCollectionStatusQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewGetCollectionCountQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewGetBindCountQuery(service), runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery(adapter, ledgerquery.NewListEventsQuery(service), runnerOpts...)
		},
	}
	for _, step := range steps {
		subscription, err := step()
		if err != nil {
			subscriptions.Unsubscribe()
			return nil, err
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, nil
}

var _ LedgerService = (*core.Service)(nil)
