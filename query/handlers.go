package query

import (
	"context"

	"github.com/goliatone/go-ledger/core"
)

type ValidatorReader interface {
	Validators(ctx context.Context) ([]core.ValidatorID, error)
}

type AdministratorReader interface {
	Administrators(ctx context.Context) (core.AdministratorTable, error)
}

type CollectionReader interface {
	Collection(ctx context.Context, id core.CollectionID) (core.CollectionMetadata, error)
	CollectionStatus(ctx context.Context, id core.CollectionID) (core.CollectionStatus, error)
}

type CounterReader interface {
	CollectionCount(ctx context.Context, id core.CollectionID) (uint64, error)
	BindCount(ctx context.Context, bindID core.BindID, id core.CollectionID) (uint64, error)
}

type ListValidatorsQuery struct {
	reader ValidatorReader
}

func NewListValidatorsQuery(reader ValidatorReader) *ListValidatorsQuery {
	return &ListValidatorsQuery{reader: reader}
}

func (q *ListValidatorsQuery) Query(ctx context.Context, _ ListValidatorsMessage) ([]core.ValidatorID, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: validator reader is required")
	}
	return q.reader.Validators(ctx)
}

type GetAdministratorsQuery struct {
	reader AdministratorReader
}

func NewGetAdministratorsQuery(reader AdministratorReader) *GetAdministratorsQuery {
	return &GetAdministratorsQuery{reader: reader}
}

// Query returns the administrator entries in stored order. An unset table,
// which denies every identity, yields nil.
func (q *GetAdministratorsQuery) Query(ctx context.Context, _ GetAdministratorsMessage) ([]core.AdministratorEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: administrator reader is required")
	}
	table, err := q.reader.Administrators(ctx)
	if err != nil {
		return nil, err
	}
	return table.Entries(), nil
}

type GetCollectionQuery struct {
	reader CollectionReader
}

func NewGetCollectionQuery(reader CollectionReader) *GetCollectionQuery {
	return &GetCollectionQuery{reader: reader}
}

func (q *GetCollectionQuery) Query(ctx context.Context, msg GetCollectionMessage) (core.CollectionMetadata, error) {
	if q == nil || q.reader == nil {
		return core.CollectionMetadata{}, queryDependencyError("query: collection reader is required")
	}
	return q.reader.Collection(ctx, msg.CollectionID)
}

type GetCollectionStatusQuery struct {
	reader CollectionReader
}

func NewGetCollectionStatusQuery(reader CollectionReader) *GetCollectionStatusQuery {
	return &GetCollectionStatusQuery{reader: reader}
}

func (q *GetCollectionStatusQuery) Query(ctx context.Context, msg GetCollectionStatusMessage) (core.CollectionStatus, error) {
	if q == nil || q.reader == nil {
		return core.CollectionStatus{}, queryDependencyError("query: collection reader is required")
	}
	return q.reader.CollectionStatus(ctx, msg.CollectionID)
}

type GetCollectionCountQuery struct {
	reader CounterReader
}

func NewGetCollectionCountQuery(reader CounterReader) *GetCollectionCountQuery {
	return &GetCollectionCountQuery{reader: reader}
}

func (q *GetCollectionCountQuery) Query(ctx context.Context, msg GetCollectionCountMessage) (uint64, error) {
	if q == nil || q.reader == nil {
		return 0, queryDependencyError("query: counter reader is required")
	}
	return q.reader.CollectionCount(ctx, msg.CollectionID)
}

type GetBindCountQuery struct {
	reader CounterReader
}

func NewGetBindCountQuery(reader CounterReader) *GetBindCountQuery {
	return &GetBindCountQuery{reader: reader}
}

func (q *GetBindCountQuery) Query(ctx context.Context, msg GetBindCountMessage) (uint64, error) {
	if q == nil || q.reader == nil {
		return 0, queryDependencyError("query: counter reader is required")
	}
	return q.reader.BindCount(ctx, msg.BindID, msg.CollectionID)
}

type ListEventsQuery struct {
	log core.EventLog
}

// NewListEventsQuery accepts a core.Service or any store that keeps the log.
func NewListEventsQuery(log core.EventLog) *ListEventsQuery {
	return &ListEventsQuery{log: log}
}

func (q *ListEventsQuery) Query(ctx context.Context, msg ListEventsMessage) ([]core.EventRecord, error) {
	if q == nil || q.log == nil {
		return nil, queryDependencyError("query: event log is required")
	}
	return q.log.Events(ctx, msg.Filter)
}
