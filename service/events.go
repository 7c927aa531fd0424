package service

import (
	"context"
	"time"

	"ledger-api/model"

	"github.com/shopspring/decimal"
)

// EventPublisher sends committed ledger events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
}

// TransactionEvent is published after a balance change commits.
type TransactionEvent struct {
	TransactionID int64                 `json:"transaction_id"`
	AccountID     int64                 `json:"account_id"`
	Kind          model.TransactionKind `json:"kind"`
	Amount        decimal.Decimal       `json:"amount"`
	BalanceAfter  decimal.Decimal       `json:"balance_after"`
	CreatedAt     time.Time             `json:"created_at"`
}

func routingKeyFor(kind model.TransactionKind) string {
	return "transaction." + string(kind)
}
