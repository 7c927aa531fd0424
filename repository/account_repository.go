package repository

import (
	"context"
	"database/sql"
	"ledger-api/logger"
	"ledger-api/model"

	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account, ownerKey string) error
	GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error)
	GetAccountForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*model.Account, error)
	UpdateAccountBalance(ctx context.Context, tx *sql.Tx, account *model.Account) error
}

type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// CreateAccount inserts a new account. ownerKey is the normalized name the UNIQUE constraint is on.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *model.Account, ownerKey string) error {
	log := logger.Log.WithFields(logrus.Fields{
		"owner_key": ownerKey,
		"balance":   account.Balance.String(),
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (owner_name, owner_key, balance) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query, account.OwnerName, ownerKey, account.Balance).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Info("Account owner already exists")
			return ErrUniqueViolation
		}
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountByID returns sql.ErrNoRows when the account does not exist.
func (r *AccountRepository) GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Debug("Executing query to get account by ID")

	account := &model.Account{}
	query := `SELECT id, owner_name, balance, created_at, updated_at FROM accounts WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, accountID).
		Scan(&account.ID, &account.OwnerName, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by ID query")
		}
		return nil, err
	}
	return account, nil
}

// GetAccountForUpdate reads the account and holds its row lock until tx ends.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Debug("Executing query to get account for update")

	account := &model.Account{}
	query := `SELECT id, owner_name, balance, created_at, updated_at FROM accounts WHERE id = $1 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, accountID).
		Scan(&account.ID, &account.OwnerName, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Account not found for update")
		} else {
			log.WithError(err).Error("Failed to execute get account for update query")
		}
		return nil, err
	}
	return account, nil
}

// UpdateAccountBalance persists account.Balance and refreshes account.UpdatedAt.
func (r *AccountRepository) UpdateAccountBalance(ctx context.Context, tx *sql.Tx, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"new_balance": account.Balance.String(),
	})
	log.Debug("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	if err := tx.QueryRowContext(ctx, query, account.Balance, account.ID).Scan(&account.UpdatedAt); err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return err
	}
	return nil
}

var _ IAccountRepository = (*AccountRepository)(nil)

