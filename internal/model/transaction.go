package model

import (
	"strings"
	"time"
)

// TransactionKind is restricted to exactly two values.
type TransactionKind string

const (
	KindExpense TransactionKind = "Expense"
	KindIncome  TransactionKind = "Income"

	DefaultCategory = "Other"
)

// Transaction is a single ledger entry: an expense or an income.
// Entries are append-only; there are no mutation operations.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id,omitempty"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionInput carries the fields needed to build a ledger entry.
type TransactionInput struct {
	Description string
	Amount      float64
	Kind        string
	Category    string
}

// NewTransaction validates the input and builds a ledger entry. The kind is
// case-normalized ("expense", "INCOME", ...) to its capitalized form; any
// other value is rejected.
func NewTransaction(in TransactionInput) (*Transaction, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if in.Amount == 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must not be zero"}
	}

	kind, err := normalizeTransactionKind(in.Kind)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	return &Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Kind:        kind,
		Category:    category,
	}, nil
}

func normalizeTransactionKind(raw string) (TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "expense":
		return KindExpense, nil
	case "income":
		return KindIncome, nil
	default:
		return "", &ValidationError{Field: "kind", Reason: "must be Expense or Income"}
	}
}
