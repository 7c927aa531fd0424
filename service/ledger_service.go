package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-api/logger"
	"ledger-api/model"
	"ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LedgerService applies balance changes. Each change updates the account and appends its
// transaction in one database transaction, serialized per account by the row lock taken
// with SELECT ... FOR UPDATE. The lock lives in Postgres, so it holds across instances.
type LedgerService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
	publisher       EventPublisher
}

type LedgerOption func(*LedgerService)

// WithLedgerCache invalidates cached accounts after each commit.
func WithLedgerCache(cache ICacheClient) LedgerOption {
	return func(s *LedgerService) { s.cache = cache }
}

// WithEventPublisher publishes a TransactionEvent after each commit.
func WithEventPublisher(p EventPublisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

func NewLedgerService(db *sql.DB, accountRepo repository.IAccountRepository, transactionRepo repository.ITransactionRepository, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deposit adds a positive amount to the account. The amount is validated before
// the row lock is taken.
func (s *LedgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*model.Account, error) {
	if !amount.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}
	if err := validateDelta(amount, model.KindDeposit); err != nil {
		return nil, err
	}
	return s.Apply(ctx, accountID, amount, model.KindDeposit)
}

// Withdraw removes a positive amount from the account.
func (s *LedgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*model.Account, error) {
	if !amount.IsPositive() {
		return nil, validationError("amount must be greater than zero")
	}
	if err := validateDelta(amount.Neg(), model.KindWithdrawal); err != nil {
		return nil, err
	}
	return s.Apply(ctx, accountID, amount.Neg(), model.KindWithdrawal)
}

// Apply changes the balance by the signed delta and records it as kind.
// Checks run in order, each failing without any write: the account must exist,
// the delta must be non-zero, in range and match kind, a withdrawal must not
// overdraw, and the new balance must stay below MaxAmount.
// It returns the post-commit account snapshot.
func (s *LedgerService) Apply(ctx context.Context, accountID int64, delta decimal.Decimal, kind model.TransactionKind) (*model.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accountRepo.GetAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("could not lock account: %w", err)
	}

	if err := validateDelta(delta, kind); err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"delta":      delta.String(),
		"kind":       kind,
	})

	newBalance := account.Balance.Add(delta)
	if delta.IsNegative() && newBalance.IsNegative() {
		log.Info("Rejected withdrawal: insufficient funds")
		return nil, ErrInsufficientFunds
	}
	if newBalance.GreaterThanOrEqual(MaxAmount) {
		return nil, validationError("balance must stay below %s", MaxAmount.String())
	}

	account.Balance = newBalance
	if err := s.accountRepo.UpdateAccountBalance(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("could not update balance: %w", err)
	}

	transaction := &model.Transaction{
		AccountID:    account.ID,
		Kind:         kind,
		Amount:       delta.Abs(),
		BalanceAfter: newBalance,
	}
	if err := s.transactionRepo.CreateTransaction(ctx, tx, transaction); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.WithField("transaction_id", transaction.ID).Info("Balance change committed")
	s.afterCommit(ctx, transaction)
	return account, nil
}

func validateDelta(delta decimal.Decimal, kind model.TransactionKind) error {
	if delta.IsZero() {
		return validationError("amount must not be zero")
	}
	if err := validateAmount("amount", delta); err != nil {
		return err
	}
	switch kind {
	case model.KindDeposit:
		if delta.IsNegative() {
			return validationError("a deposit must increase the balance")
		}
	case model.KindWithdrawal:
		if delta.IsPositive() {
			return validationError("a withdrawal must decrease the balance")
		}
	default:
		return validationError("unknown transaction kind %q", kind)
	}
	return nil
}

// afterCommit runs side effects that must never undo or fail a committed change.
func (s *LedgerService) afterCommit(ctx context.Context, t *model.Transaction) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, accountCacheKey(t.AccountID)).Err(); err != nil {
			logger.Log.WithError(err).WithField("account_id", t.AccountID).Warn("Failed to invalidate account cache")
		}
	}

	if s.publisher != nil {
		event := TransactionEvent{
			TransactionID: t.ID,
			AccountID:     t.AccountID,
			Kind:          t.Kind,
			Amount:        t.Amount,
			BalanceAfter:  t.BalanceAfter,
			CreatedAt:     t.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, routingKeyFor(t.Kind), event); err != nil {
			logger.Log.WithError(err).WithField("transaction_id", t.ID).Error("Failed to publish transaction event")
		}
	}
}
