package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction is an immutable record of one committed balance change.
// Amount is always the magnitude; the sign is implied by Kind.
type Transaction struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"account_id"`
	Kind         TransactionKind `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"timestamp"`
}
