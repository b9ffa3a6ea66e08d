package form

import (
	"errors"
	"fmt"
	"net/url"

	"budgetplanner/internal/core"
)

// ErrNothingToUpdate is returned by PatchFromValues when v names no field.
var ErrNothingToUpdate = errors.New("nothing to update")

// PatchFromValues builds a partial update from the fields present in v.
// Absent fields are left untouched; a present but empty category or note
// clears it. Every invalid field is reported at once as Errors.
func PatchFromValues(v url.Values) (core.Patch, error) {
	var (
		patch   core.Patch
		errs    Errors
		touched bool
	)
	for _, field := range []string{FieldDate, FieldName, FieldAmount, FieldType, FieldCategory, FieldNote} {
		if _, ok := v[field]; !ok {
			continue
		}
		touched = true
		raw := sanitize(v.Get(field))

		switch field {
		case FieldDate:
			if _, ok := core.ParseDate(raw); !ok {
				errs = append(errs, FieldError{field, fmt.Errorf("%w: %q", core.ErrInvalidDate, raw)})
				continue
			}
			patch = patch.SetDate(raw)
		case FieldName:
			if raw == "" {
				errs = append(errs, FieldError{field, ErrRequired})
				continue
			}
			if len(raw) > 200 {
				errs = append(errs, FieldError{field, errors.New("too long (max 200 characters)")})
				continue
			}
			patch = patch.SetName(raw)
		case FieldAmount:
			m, err := core.ParseMoney(raw)
			if err != nil {
				errs = append(errs, FieldError{field, err})
				continue
			}
			patch = patch.SetAmount(m)
		case FieldType:
			t, err := core.ParseTransactionType(raw)
			if err != nil {
				errs = append(errs, FieldError{field, err})
				continue
			}
			patch = patch.SetType(t)
		case FieldCategory:
			patch = patch.SetCategory(raw)
		case FieldNote:
			patch = patch.SetNote(raw)
		}
	}

	if len(errs) > 0 {
		return core.Patch{}, errs
	}
	if !touched {
		return core.Patch{}, ErrNothingToUpdate
	}
	return patch, nil
}
