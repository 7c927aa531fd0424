package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named balance holder. Balance only changes through the ledger.
type Account struct {
	ID        int64           `json:"id"`
	OwnerName string          `json:"owner_name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
