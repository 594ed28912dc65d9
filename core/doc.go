// Package core contains the ledger domain: the bounded validator set with its
// session handoff, the administrator table, the collection registry with lock
// status, and batch issuance counters. Storage and transport adapters depend
// on this package; core must not depend on them.
package core
