package handler

import (
	"context"
	"ledger-api/model"

	"github.com/shopspring/decimal"
)

// IAccountService is the part of service.AccountService the adapters call.
type IAccountService interface {
	CreateAccount(ctx context.Context, ownerName string, initialBalance decimal.Decimal) (*model.Account, error)
	GetAccount(ctx context.Context, accountID int64) (*model.Account, error)
}

// ILedgerService is the part of service.LedgerService the adapters call.
type ILedgerService interface {
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*model.Account, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*model.Account, error)
}

// ITransactionService is the part of service.TransactionService the adapters call.
type ITransactionService interface {
	ListTransactionsForAccount(ctx context.Context, accountID int64) ([]*model.Transaction, error)
}
