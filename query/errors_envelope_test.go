package query

import (
	"context"
	"net/http"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-ledger/core"
)

func TestGetBindCountMessage_ValidateReturnsRichError(t *testing.T) {
	err := (GetBindCountMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.LedgerErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.LedgerErrorBadInput, rich.TextCode)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected %d code, got %d", http.StatusBadRequest, rich.Code)
	}
	validation := rich.AllValidationErrors()
	if len(validation) == 0 {
		t.Fatalf("expected validation errors in envelope")
	}
	if validation[0].Field != "bind_id" {
		t.Fatalf("expected bind_id validation field, got %q", validation[0].Field)
	}

	long := GetBindCountMessage{BindID: core.BindID(strings.Repeat("b", core.MaxBindIDLength+1))}
	if err := long.Validate(); err == nil {
		t.Fatalf("expected bind id length error")
	}
}

func TestListEventsMessage_ValidateRejectsNegativeBounds(t *testing.T) {
	if err := (ListEventsMessage{Filter: core.EventFilter{AfterSequence: -1}}).Validate(); err == nil {
		t.Fatalf("expected negative after_sequence error")
	}
	if err := (ListEventsMessage{Filter: core.EventFilter{Limit: -1}}).Validate(); err == nil {
		t.Fatalf("expected negative limit error")
	}
	if err := (ListEventsMessage{}).Validate(); err != nil {
		t.Fatalf("expected zero filter to be valid, got %v", err)
	}
}

func TestListValidatorsQuery_NilReaderReturnsRichError(t *testing.T) {
	var q *ListValidatorsQuery
	_, err := q.Query(context.Background(), ListValidatorsMessage{})
	if err == nil {
		t.Fatalf("expected dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.LedgerErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.LedgerErrorInternal, rich.TextCode)
	}
}
