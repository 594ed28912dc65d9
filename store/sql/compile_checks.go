package sqlstore

import "github.com/goliatone/go-ledger/core"

var (
	_ core.Store    = (*Store)(nil)
	_ core.EventLog = (*Store)(nil)
	_ core.Store    = (*CachedStore)(nil)
	_ core.EventLog = (*CachedStore)(nil)
)
