// Package form turns raw entry-form input into a transaction ready for the
// store.
//
// The store only rejects negative amounts and unknown types. Everything a
// user can get wrong while typing (missing fields, unparseable amounts,
// malformed dates) is caught here first.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"budgetplanner/internal/core"
)

// Field names, shared with url.Values and error reporting.
const (
	FieldDate     = "date"
	FieldName     = "name"
	FieldAmount   = "amount"
	FieldType     = "type"
	FieldCategory = "category"
	FieldNote     = "note"
)

var ErrRequired = errors.New("required")

// Input is the raw text of the entry form.
type Input struct {
	Date     string
	Name     string
	Amount   string
	Type     string
	Category string
	Note     string
}

// New returns an empty form dated today with the expense type selected.
func New() Input {
	return Input{Date: core.Today(), Type: core.Expense.String()}
}

// FromValues reads the form fields from v. Missing date and type fall back
// to the defaults of New.
func FromValues(v url.Values) Input {
	in := New()
	if d := sanitize(v.Get(FieldDate)); d != "" {
		in.Date = d
	}
	if t := sanitize(v.Get(FieldType)); t != "" {
		in.Type = t
	}
	in.Name = sanitize(v.Get(FieldName))
	in.Amount = sanitize(v.Get(FieldAmount))
	in.Category = sanitize(v.Get(FieldCategory))
	in.Note = sanitize(v.Get(FieldNote))
	return in
}

// sanitize trims and strips control characters other than tab and newlines.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// FieldError is a problem with one form field.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error { return e.Err }

// Errors collects every field problem found in one pass.
type Errors []FieldError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "invalid form: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual field errors to errors.Is and errors.As.
func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Field returns the error reported for field, if any.
func (es Errors) Field(field string) error {
	for _, e := range es {
		if e.Field == field {
			return e.Err
		}
	}
	return nil
}

// Parse validates the input. Date, name and amount are required; the name
// is trimmed and the amount accepts a dot or a comma as decimal separator.
// The category is passed through as typed.
func (in Input) Parse() (core.NewTransaction, error) {
	var errs Errors
	n := core.NewTransaction{
		Date:     strings.TrimSpace(in.Date),
		Name:     strings.TrimSpace(in.Name),
		Category: in.Category,
		Note:     in.Note,
	}

	if n.Date == "" {
		errs = append(errs, FieldError{FieldDate, ErrRequired})
	} else if _, ok := core.ParseDate(n.Date); !ok {
		errs = append(errs, FieldError{FieldDate, fmt.Errorf("%w: %q", core.ErrInvalidDate, n.Date)})
	}

	if n.Name == "" {
		errs = append(errs, FieldError{FieldName, ErrRequired})
	} else if len(n.Name) > 200 {
		errs = append(errs, FieldError{FieldName, errors.New("too long (max 200 characters)")})
	}

	if strings.TrimSpace(in.Amount) == "" {
		errs = append(errs, FieldError{FieldAmount, ErrRequired})
	} else if m, err := core.ParseMoney(in.Amount); err != nil {
		errs = append(errs, FieldError{FieldAmount, err})
	} else {
		n.Amount = m
	}

	typ := in.Type
	if strings.TrimSpace(typ) == "" {
		typ = core.Expense.String()
	}
	if t, err := core.ParseTransactionType(typ); err != nil {
		errs = append(errs, FieldError{FieldType, err})
	} else {
		n.Type = t
	}

	if len(errs) > 0 {
		return core.NewTransaction{}, errs
	}
	return n, nil
}
