package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	LedgerErrorNotRoot                 = "LEDGER_NOT_ROOT"
	LedgerErrorNotAdministrator        = "LEDGER_NOT_ADMINISTRATOR"
	LedgerErrorTooManyValidators       = "LEDGER_TOO_MANY_VALIDATORS"
	LedgerErrorBatchSizeExceeded       = "LEDGER_BATCH_SIZE_EXCEEDED"
	LedgerErrorValidatorNotFound       = "LEDGER_VALIDATOR_NOT_FOUND"
	LedgerErrorDuplicateValidator      = "LEDGER_DUPLICATE_VALIDATOR"
	LedgerErrorCollectionNotFound      = "LEDGER_COLLECTION_NOT_FOUND"
	LedgerErrorCollectionAlreadyExists = "LEDGER_COLLECTION_ALREADY_EXISTS"
	LedgerErrorLengthMismatch          = "LEDGER_LENGTH_MISMATCH"
	LedgerErrorCollectionDataTooLong   = "LEDGER_COLLECTION_DATA_TOO_LONG"
	LedgerErrorBindIDTooLong           = "LEDGER_BIND_ID_TOO_LONG"
	LedgerErrorCollectionLocked        = "LEDGER_COLLECTION_LOCKED"
	LedgerErrorOverflow                = "LEDGER_OVERFLOW"
	LedgerErrorSessionOutOfOrder       = "LEDGER_SESSION_OUT_OF_ORDER"
	LedgerErrorBadInput                = "LEDGER_BAD_INPUT"
	LedgerErrorInternal                = "LEDGER_INTERNAL_ERROR"
)

// Authorization errors.
var (
	ErrNotRoot          = errors.New("core: caller is not root")
	ErrNotAdministrator = errors.New("core: caller is not an administrator for this role")
)

// Capacity errors.
var (
	ErrTooManyValidators = errors.New("core: validator set capacity exceeded")
	ErrBatchSizeExceeded = errors.New("core: batch size exceeded")
)

// Consistency errors.
var (
	ErrValidatorNotFound       = errors.New("core: validator not found")
	ErrDuplicateValidator      = errors.New("core: duplicate validator")
	ErrCollectionNotFound      = errors.New("core: collection not found")
	ErrCollectionAlreadyExists = errors.New("core: collection already exists")
	ErrLengthMismatch          = errors.New("core: input list length mismatch")
	ErrCollectionDataTooLong   = errors.New("core: collection data too long")
	ErrBindIDTooLong           = errors.New("core: bind id too long")
)

// State errors.
var (
	ErrCollectionLocked  = errors.New("core: collection is locked")
	ErrOverflow          = errors.New("core: counter overflow")
	ErrSessionOutOfOrder = errors.New("core: session handoff out of order")
)

// Error families group the sentinels the way callers usually react to them.
const (
	ErrorFamilyAuthorization = "authorization"
	ErrorFamilyCapacity      = "capacity"
	ErrorFamilyConsistency   = "consistency"
	ErrorFamilyState         = "state"
	ErrorFamilyOther         = "other"
)

type errorClass struct {
	sentinel error
	category goerrors.Category
	textCode string
	family   string
}

var ledgerErrorClasses = []errorClass{
	{ErrNotRoot, goerrors.CategoryAuthz, LedgerErrorNotRoot, ErrorFamilyAuthorization},
	{ErrNotAdministrator, goerrors.CategoryAuthz, LedgerErrorNotAdministrator, ErrorFamilyAuthorization},
	{ErrTooManyValidators, goerrors.CategoryBadInput, LedgerErrorTooManyValidators, ErrorFamilyCapacity},
	{ErrBatchSizeExceeded, goerrors.CategoryBadInput, LedgerErrorBatchSizeExceeded, ErrorFamilyCapacity},
	{ErrValidatorNotFound, goerrors.CategoryNotFound, LedgerErrorValidatorNotFound, ErrorFamilyConsistency},
	{ErrDuplicateValidator, goerrors.CategoryConflict, LedgerErrorDuplicateValidator, ErrorFamilyConsistency},
	{ErrCollectionNotFound, goerrors.CategoryNotFound, LedgerErrorCollectionNotFound, ErrorFamilyConsistency},
	{ErrCollectionAlreadyExists, goerrors.CategoryConflict, LedgerErrorCollectionAlreadyExists, ErrorFamilyConsistency},
	{ErrLengthMismatch, goerrors.CategoryValidation, LedgerErrorLengthMismatch, ErrorFamilyConsistency},
	{ErrCollectionDataTooLong, goerrors.CategoryValidation, LedgerErrorCollectionDataTooLong, ErrorFamilyConsistency},
	{ErrBindIDTooLong, goerrors.CategoryValidation, LedgerErrorBindIDTooLong, ErrorFamilyConsistency},
	{ErrCollectionLocked, goerrors.CategoryConflict, LedgerErrorCollectionLocked, ErrorFamilyState},
	{ErrOverflow, goerrors.CategoryOperation, LedgerErrorOverflow, ErrorFamilyState},
	{ErrSessionOutOfOrder, goerrors.CategoryConflict, LedgerErrorSessionOutOfOrder, ErrorFamilyState},
}

// ErrorFamily names the family of a ledger sentinel found in err's chain,
// or ErrorFamilyOther. A nil error has no family.
func ErrorFamily(err error) string {
	if err == nil {
		return ""
	}
	for _, class := range ledgerErrorClasses {
		if errors.Is(err, class.sentinel) {
			return class.family
		}
	}
	return ErrorFamilyOther
}

// MapError converts ledger errors into a go-errors envelope with a stable
// text code. Unknown errors fall back to the go-errors default mappers.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureLedgerErrorEnvelope(richErr)
	}

	for _, class := range ledgerErrorClasses {
		if errors.Is(err, class.sentinel) {
			return ensureLedgerErrorEnvelope(
				goerrors.Wrap(err, class.category, err.Error()).
					WithTextCode(class.textCode),
			)
		}
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureLedgerErrorEnvelope(mapped)
}

func ensureLedgerErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = ledgerHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultLedgerTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultLedgerTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return LedgerErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return LedgerErrorNotAdministrator
	default:
		return LedgerErrorInternal
	}
}

func ledgerHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
