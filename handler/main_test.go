package handler

import (
	"context"
	"ledger-api/logger"
	"ledger-api/model"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const testSecret = "s3cret"

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// staticGate accepts exactly one secret.
type staticGate string

func (g staticGate) Authorize(presented string) bool {
	return presented != "" && presented == string(g)
}

type MockAccountService struct{ mock.Mock }

func (m *MockAccountService) CreateAccount(ctx context.Context, ownerName string, initialBalance decimal.Decimal) (*model.Account, error) {
	args := m.Called(ctx, ownerName, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountID int64) (*model.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

type MockLedgerService struct{ mock.Mock }

func (m *MockLedgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*model.Account, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockLedgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*model.Account, error) {
	args := m.Called(ctx, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

type MockTransactionService struct{ mock.Mock }

func (m *MockTransactionService) ListTransactionsForAccount(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

// decEq matches a decimal argument by value rather than by representation.
func decEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec(want)) })
}
