package core

import (
	"context"
	"sync/atomic"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// Tables is the get/put surface over the named ledger tables. Reads of
// absent keys return zero values, except Collection which reports presence.
type Tables interface {
	Validators(ctx context.Context) ([]ValidatorID, error)
	PutValidators(ctx context.Context, validators []ValidatorID) error

	Administrators(ctx context.Context) (AdministratorTable, error)
	PutAdministrators(ctx context.Context, table AdministratorTable) error

	Collection(ctx context.Context, id CollectionID) (CollectionMetadata, bool, error)
	PutCollection(ctx context.Context, id CollectionID, metadata CollectionMetadata) error

	CollectionStatus(ctx context.Context, id CollectionID) (CollectionStatus, error)
	PutCollectionStatus(ctx context.Context, id CollectionID, status CollectionStatus) error

	CollectionCount(ctx context.Context, id CollectionID) (uint64, error)
	PutCollectionCount(ctx context.Context, id CollectionID, count uint64) error

	BindCount(ctx context.Context, bindID BindID, id CollectionID) (uint64, error)
	PutBindCount(ctx context.Context, bindID BindID, id CollectionID, count uint64) error

	AppendEvent(ctx context.Context, event Event) error
}

// Store owns the ledger tables. Atomic runs fn against a consistent view and
// commits every write it made only when fn returns nil; calls are serialized.
type Store interface {
	Tables
	Atomic(ctx context.Context, fn func(ctx context.Context, tables Tables) error) error
}

type EventFilter struct {
	AfterSequence int64
	Name          string
	Limit         int
}

type EventRecord struct {
	Sequence   int64
	Event      Event
	RecordedAt time.Time
}

// EventLog reads back the append-only notification stream.
type EventLog interface {
	Events(ctx context.Context, filter EventFilter) ([]EventRecord, error)
}

// HeightSource provides the global sequence marker (block height) of the
// host at the time of a call.
type HeightSource interface {
	CurrentHeight(ctx context.Context) (uint64, error)
}

type HeightFunc func(ctx context.Context) (uint64, error)

func (f HeightFunc) CurrentHeight(ctx context.Context) (uint64, error) {
	if f == nil {
		return 0, nil
	}
	return f(ctx)
}

// ManualHeight is a host-driven height marker.
type ManualHeight struct {
	value atomic.Uint64
}

func NewManualHeight(initial uint64) *ManualHeight {
	h := &ManualHeight{}
	h.value.Store(initial)
	return h
}

func (h *ManualHeight) Set(height uint64) {
	h.value.Store(height)
}

func (h *ManualHeight) Advance() uint64 {
	return h.value.Add(1)
}

func (h *ManualHeight) CurrentHeight(context.Context) (uint64, error) {
	return h.value.Load(), nil
}
