package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-api/model"
	"ledger-api/repository"
)

// TransactionService serves the read-only transaction history.
type TransactionService struct {
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
}

func NewTransactionService(accountRepo repository.IAccountRepository, transactionRepo repository.ITransactionRepository) *TransactionService {
	return &TransactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// ListTransactionsForAccount returns the account's transactions in commit order.
// An account without transactions yields an empty slice; an unknown account yields ErrAccountNotFound.
func (s *TransactionService) ListTransactionsForAccount(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("could not get account: %w", err)
	}

	transactions, err := s.transactionRepo.GetTransactionsByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("could not list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []*model.Transaction{}
	}
	return transactions, nil
}
