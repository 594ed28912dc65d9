package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-ledger/core"
)

var (
	_ gocmd.Commander[SetValidatorsMessage]       = (*SetValidatorsCommand)(nil)
	_ gocmd.Commander[AddValidatorMessage]        = (*AddValidatorCommand)(nil)
	_ gocmd.Commander[RemoveValidatorMessage]     = (*RemoveValidatorCommand)(nil)
	_ gocmd.Commander[SetAdministratorsMessage]   = (*SetAdministratorsCommand)(nil)
	_ gocmd.Commander[CreateCollectionMessage]    = (*CreateCollectionCommand)(nil)
	_ gocmd.Commander[UpdateCollectionMessage]    = (*UpdateCollectionCommand)(nil)
	_ gocmd.Commander[SetCollectionStatusMessage] = (*SetCollectionStatusCommand)(nil)
	_ gocmd.Commander[IssueMessage]               = (*IssueCommand)(nil)

	_ MutatingService = (*core.Service)(nil)
)
