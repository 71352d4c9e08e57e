package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// Entry is an income transaction. The wire value matches logs written by
	// the mobile client.
	Entry TransactionType = "positive"
	// Exit is an expense transaction.
	Exit TransactionType = "negative"
)

const maxNameLength = 200

type (
	TransactionType string

	Transaction struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
		Date     time.Time       `json:"date"`
	}

	// TransactionForm is the user submission for a new transaction, before
	// an id and a date have been assigned.
	TransactionForm struct {
		Name     string          `json:"name"`
		Amount   string          `json:"amount"`
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
	}
)

var (
	ErrEmptyName       = errors.New("name is required")
	ErrNameTooLong     = errors.New("name too long (max 200 characters)")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrMissingType     = errors.New("transaction type is required")
	ErrMissingCategory = errors.New("category is required")
	ErrUnknownCategory = errors.New("unknown category")
)

// IsValid reports whether t is one of the two polarities.
func (t TransactionType) IsValid() bool {
	switch t {
	case Entry, Exit:
		return true
	default:
		return false
	}
}

// Validate checks every required field and returns the first problem as a
// *ValidationError.
func (f TransactionForm) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return &ValidationError{Field: "name", Err: ErrNameTooLong}
	}
	if _, err := ParseAmount(f.Amount); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !f.Type.IsValid() {
		return &ValidationError{Field: "type", Err: ErrMissingType}
	}
	if strings.TrimSpace(f.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrMissingCategory}
	}
	return nil
}

// NewTransaction validates the form and builds the persisted record with the
// given id and creation date.
func NewTransaction(f TransactionForm, id string, now time.Time) (Transaction, error) {
	if err := f.Validate(); err != nil {
		return Transaction{}, err
	}
	amount, _ := ParseAmount(f.Amount)
	return Transaction{
		ID:       id,
		Name:     strings.TrimSpace(f.Name),
		Amount:   amount,
		Category: strings.TrimSpace(f.Category),
		Type:     f.Type,
		Date:     now,
	}, nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("empty transaction id")
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrMissingType
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}
