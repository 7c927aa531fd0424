// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ledger-api/logger"
	"ledger-api/model"
	"ledger-api/repository"

	"github.com/shopspring/decimal"
)

// AccountService owns account creation and lookup.
type AccountService struct {
	repo     repository.IAccountRepository
	cache    ICacheClient
	cacheTTL time.Duration
	ownerKey OwnerKeyFunc
}

type AccountServiceOption func(*AccountService)

// DefaultCacheTTL applies when WithAccountCache is given a non-positive TTL.
// Entries always expire: a read that races a commit can re-cache the older snapshot.
const DefaultCacheTTL = 30 * time.Second

// WithAccountCache enables cache-aside reads for GetAccount.
func WithAccountCache(cache ICacheClient, ttl time.Duration) AccountServiceOption {
	return func(s *AccountService) {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithOwnerKey sets the owner-name uniqueness policy. The default is ExactOwnerKey.
func WithOwnerKey(fn OwnerKeyFunc) AccountServiceOption {
	return func(s *AccountService) {
		if fn != nil {
			s.ownerKey = fn
		}
	}
}

func NewAccountService(repo repository.IAccountRepository, opts ...AccountServiceOption) *AccountService {
	s := &AccountService{repo: repo, ownerKey: ExactOwnerKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount opens an account for ownerName with a non-negative initial balance.
func (s *AccountService) CreateAccount(ctx context.Context, ownerName string, initialBalance decimal.Decimal) (*model.Account, error) {
	if err := validateOwnerName(ownerName); err != nil {
		return nil, err
	}
	if initialBalance.IsNegative() {
		return nil, validationError("initial_balance must not be negative")
	}
	if err := validateAmount("initial_balance", initialBalance); err != nil {
		return nil, err
	}

	account := &model.Account{
		OwnerName: ownerName,
		Balance:   initialBalance,
	}
	if err := s.repo.CreateAccount(ctx, account, s.ownerKey(ownerName)); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrDuplicateOwner
		}
		return nil, fmt.Errorf("could not create account: %w", err)
	}
	return account, nil
}

// GetAccount returns a committed snapshot of the account.
func (s *AccountService) GetAccount(ctx context.Context, accountID int64) (*model.Account, error) {
	key := accountCacheKey(accountID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var account model.Account
			if err := json.Unmarshal(cached, &account); err == nil {
				return &account, nil
			}
		}
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("could not get account: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(account); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				logger.Log.WithError(err).WithField("account_id", accountID).Warn("Failed to cache account")
			}
		}
	}
	return account, nil
}
