package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ledger/core"
)

var (
	_ gocmd.Querier[ListValidatorsMessage, []core.ValidatorID]           = (*ListValidatorsQuery)(nil)
	_ gocmd.Querier[GetAdministratorsMessage, []core.AdministratorEntry] = (*GetAdministratorsQuery)(nil)
	_ gocmd.Querier[GetCollectionMessage, core.CollectionMetadata]       = (*GetCollectionQuery)(nil)
	_ gocmd.Querier[GetCollectionStatusMessage, core.CollectionStatus]   = (*GetCollectionStatusQuery)(nil)
	_ gocmd.Querier[GetCollectionCountMessage, uint64]                   = (*GetCollectionCountQuery)(nil)
	_ gocmd.Querier[GetBindCountMessage, uint64]                         = (*GetBindCountQuery)(nil)
	_ gocmd.Querier[ListEventsMessage, []core.EventRecord]               = (*ListEventsQuery)(nil)

	_ ValidatorReader     = (*core.Service)(nil)
	_ AdministratorReader = (*core.Service)(nil)
	_ CollectionReader    = (*core.Service)(nil)
	_ CounterReader       = (*core.Service)(nil)
	_ core.EventLog       = (*core.Service)(nil)
)
