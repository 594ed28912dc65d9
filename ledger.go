package ledger

import (
	"context"

	"github.com/goliatone/go-ledger/core"
)

type Config = core.Config
type ValidatorsConfig = core.ValidatorsConfig
type IssuanceConfig = core.IssuanceConfig
type SessionConfig = core.SessionConfig
type Option = core.Option

type Service = core.Service
type ServiceDependencies = core.ServiceDependencies
type Store = core.Store
type Tables = core.Tables
type EventLog = core.EventLog
type HeightSource = core.HeightSource
type HeightFunc = core.HeightFunc
type ManualHeight = core.ManualHeight

type ValidatorID = core.ValidatorID
type Identity = core.Identity
type CollectionID = core.CollectionID
type BindID = core.BindID
type Role = core.Role
type Caller = core.Caller
type CollectionMetadata = core.CollectionMetadata
type CollectionStatus = core.CollectionStatus
type AdministratorEntry = core.AdministratorEntry
type AdministratorTable = core.AdministratorTable
type IssueRequest = core.IssueRequest
type Genesis = core.Genesis
type SessionIndex = core.SessionIndex

type EventFilter = core.EventFilter
type EventRecord = core.EventRecord

const (
	RoleCreator = core.RoleCreator
	RoleMinter  = core.RoleMinter
)

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithStore           = core.WithStore
	WithHeightSource    = core.WithHeightSource

	RootCaller   = core.RootCaller
	SignedCaller = core.SignedCaller
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

// Setup builds a service and loads genesis into its store.
func Setup(ctx context.Context, cfg Config, genesis Genesis, opts ...Option) (*Service, error) {
	return core.Setup(ctx, cfg, genesis, opts...)
}
