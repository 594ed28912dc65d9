package core

import (
	"slices"
	"strconv"
)

const (
	MaxCollectionDataLength = 100
	MaxBindIDLength         = 100
)

type ValidatorID string

type Identity string

type CollectionID uint64

type BindID string

type Role uint8

const (
	RoleCreator Role = 0
	RoleMinter  Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleMinter:
		return "minter"
	default:
		return "role_" + strconv.Itoa(int(r))
	}
}

// Caller is the already authenticated origin of a call. Root is the
// distinguished superuser capability and carries no identity.
type Caller struct {
	Identity Identity
	Root     bool
}

func RootCaller() Caller {
	return Caller{Root: true}
}

func SignedCaller(identity Identity) Caller {
	return Caller{Identity: identity}
}

type CollectionMetadata struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type CollectionStatus struct {
	Limit    uint64 `json:"limit"`
	Category uint8  `json:"category"`
	Locked   bool   `json:"locked"`
}

type AdministratorEntry struct {
	Identity Identity `json:"identity"`
	Role     Role     `json:"role"`
}

// AdministratorTable is either unset, denying every identity, or a
// non-empty list of entries indexed by identity.
type AdministratorTable struct {
	entries []AdministratorEntry
	roles   map[Identity]map[Role]struct{}
}

// NewAdministratorTable builds a table from entries. An empty list yields
// the unset table, not an empty set one.
func NewAdministratorTable(entries []AdministratorEntry) AdministratorTable {
	if len(entries) == 0 {
		return AdministratorTable{}
	}
	table := AdministratorTable{
		entries: slices.Clone(entries),
		roles:   make(map[Identity]map[Role]struct{}, len(entries)),
	}
	for _, entry := range entries {
		roles, ok := table.roles[entry.Identity]
		if !ok {
			roles = make(map[Role]struct{}, 1)
			table.roles[entry.Identity] = roles
		}
		roles[entry.Role] = struct{}{}
	}
	return table
}

func (t AdministratorTable) IsSet() bool {
	return t.roles != nil
}

func (t AdministratorTable) HasRole(identity Identity, role Role) bool {
	if !t.IsSet() {
		return false
	}
	_, ok := t.roles[identity][role]
	return ok
}

func (t AdministratorTable) Entries() []AdministratorEntry {
	return slices.Clone(t.entries)
}

type IssueRequest struct {
	BindIDs       []BindID       `json:"bind_ids"`
	CollectionIDs []CollectionID `json:"collection_ids"`
	Counts        []uint64       `json:"counts"`
}

type Genesis struct {
	Validators     []ValidatorID        `json:"validators"`
	Administrators []AdministratorEntry `json:"administrators"`
}

type SessionIndex uint32
