package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	FilterBoth    TypeFilter = "both"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

// Uncategorized is the display name for transactions without a category.
const Uncategorized = "Uncategorized"

// DefaultCategories are offered by the entry form.
var DefaultCategories = []string{"Food", "Transport", "Salary", "Shopping", "Bills", "Other"}

type (
	// TransactionType decides which bucket an amount contributes to.
	TransactionType string

	// TypeFilter selects income, expense or both in filtered views.
	TypeFilter string

	// Transaction is the only persisted entity.
	Transaction struct {
		ID       string          `json:"id"`
		Date     string          `json:"date"`
		Name     string          `json:"name"`
		Amount   Money           `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
		Note     string          `json:"note,omitempty"`
	}

	// NewTransaction is a transaction before the store assigns its ID.
	NewTransaction struct {
		Date     string
		Name     string
		Amount   Money
		Type     TransactionType
		Category string
		Note     string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// ParseTransactionType maps "income"/"expense" (any case) to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// UnmarshalText rejects unknown types so corrupt state never reaches the store.
func (t *TransactionType) UnmarshalText(b []byte) error {
	parsed, err := ParseTransactionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TransactionType) MarshalText() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return []byte(t), nil
}

// ParseTypeFilter maps "both"/"income"/"expense" (any case) to a TypeFilter.
func ParseTypeFilter(s string) (TypeFilter, error) {
	f := TypeFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterBoth, FilterIncome, FilterExpense:
		return f, nil
	default:
		return "", fmt.Errorf("%w: filter %q", ErrInvalidType, s)
	}
}

// Matches reports whether a transaction of type t passes the filter.
func (f TypeFilter) Matches(t TransactionType) bool {
	switch f {
	case FilterIncome:
		return t == Income
	case FilterExpense:
		return t == Expense
	default:
		return true
	}
}

func (f TypeFilter) String() string {
	return string(f)
}

// DisplayCategory returns the grouping key for a stored category.
func DisplayCategory(category string) string {
	if strings.TrimSpace(category) == "" {
		return Uncategorized
	}
	return category
}

// WithID returns the stored form of n.
func (n NewTransaction) WithID(id string) Transaction {
	return Transaction{
		ID:       id,
		Date:     n.Date,
		Name:     n.Name,
		Amount:   n.Amount,
		Type:     n.Type,
		Category: n.Category,
		Note:     n.Note,
	}
}

// Validate performs the full entry checks the form applies before calling the store.
func (n NewTransaction) Validate() error {
	if _, ok := ParseDate(n.Date); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, n.Date)
	}
	if strings.TrimSpace(n.Name) == "" {
		return ErrEmptyName
	}
	if len(n.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := n.Amount.Validate(); err != nil {
		return err
	}
	return n.Type.Validate()
}

func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

// DisplayCategory returns the category used for grouping and display.
func (t Transaction) DisplayCategory() string {
	return DisplayCategory(t.Category)
}
