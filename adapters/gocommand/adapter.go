package gocommand

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

// QueueResolverKey is the resolver key used when ledger commands are
// mirrored into a go-job queue registry.
const QueueResolverKey = "ledger.queue"

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// RegistryAdapter owns the go-command registry the ledger handlers are
// registered in.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) ready() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return nil
}

// Register adds a command or query handler to the registry.
func (a *RegistryAdapter) Register(handler any) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.RegisterCommand(handler)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors every registered command handler into
// queueRegistry under QueueResolverKey. Query handlers stay dispatcher only.
func (a *RegistryAdapter) AddQueueResolver(queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(QueueResolverKey, commandsOnly(jobqueuecommand.QueueResolver(queueRegistry)))
}

func commandsOnly(resolver command.Resolver) command.Resolver {
	return func(handler any, meta command.CommandMeta, registry *command.Registry) error {
		if !isCommandHandler(handler) {
			return nil
		}
		return resolver(handler, meta, registry)
	}
}

// isCommandHandler reports whether handler has Execute(ctx, msg) error.
func isCommandHandler(handler any) bool {
	if handler == nil {
		return false
	}
	method := reflect.ValueOf(handler).MethodByName("Execute")
	if !method.IsValid() {
		return false
	}
	signature := method.Type()
	return signature.NumIn() == 2 &&
		signature.NumOut() == 1 &&
		signature.In(0).Implements(contextType) &&
		signature.Out(0) == errorType
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a.ready() != nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	return registerSubscription(adapter, cmd, commanddispatcher.SubscribeCommand(cmd, runnerOpts...))
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	return registerSubscription(adapter, qry, commanddispatcher.SubscribeQuery(qry, runnerOpts...))
}

func registerSubscription(
	adapter *RegistryAdapter,
	handler any,
	subscription commanddispatcher.Subscription,
) (commanddispatcher.Subscription, error) {
	if err := adapter.Register(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}
