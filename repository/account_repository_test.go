package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"ledger-api/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountColumns = []string{"id", "owner_name", "balance", "created_at", "updated_at"}

func TestAccountRepository_CreateAccount(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)
	ctx := context.Background()
	now := time.Now()
	insert := regexp.QuoteMeta(`INSERT INTO accounts (owner_name, owner_key, balance) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`)

	t.Run("success", func(t *testing.T) {
		dbMock.ExpectQuery(insert).
			WithArgs("alice", "alice", decimalArg{dec("100")}).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

		account := &model.Account{OwnerName: "alice", Balance: dec("100")}
		err := repo.CreateAccount(ctx, account, "alice")

		assert.NoError(t, err)
		assert.Equal(t, int64(7), account.ID)
		assert.Equal(t, now, account.CreatedAt)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("duplicate owner", func(t *testing.T) {
		dbMock.ExpectQuery(insert).
			WithArgs("alice", "alice", decimalArg{dec("10")}).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		err := repo.CreateAccount(ctx, &model.Account{OwnerName: "alice", Balance: dec("10")}, "alice")

		assert.ErrorIs(t, err, ErrUniqueViolation)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("other database error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		dbMock.ExpectQuery(insert).WillReturnError(dbErr)

		err := repo.CreateAccount(ctx, &model.Account{OwnerName: "bob", Balance: dec("0")}, "bob")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrUniqueViolation)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetAccountByID(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)
	query := regexp.QuoteMeta(`SELECT id, owner_name, balance, created_at, updated_at FROM accounts WHERE id = $1`)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		dbMock.ExpectQuery(query).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(1, "alice", "150.0000", now, now))

		account, err := repo.GetAccountByID(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, "alice", account.OwnerName)
		assert.True(t, account.Balance.Equal(dec("150")))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		dbMock.ExpectQuery(query).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)

		account, err := repo.GetAccountByID(context.Background(), 2)

		assert.Nil(t, account)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockAndUpdate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAccountRepository(db)
	ctx := context.Background()
	now := time.Now()
	later := now.Add(time.Second)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_name, balance, created_at, updated_at FROM accounts WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(3, "carol", "20", now, now))
	dbMock.ExpectQuery(regexp.QuoteMeta(`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`)).
		WithArgs(decimalArg{dec("25.5")}, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))
	dbMock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	account, err := repo.GetAccountForUpdate(ctx, tx, 3)
	require.NoError(t, err)
	account.Balance = account.Balance.Add(dec("5.5"))
	require.NoError(t, repo.UpdateAccountBalance(ctx, tx, account))
	require.NoError(t, tx.Commit())

	assert.Equal(t, later, account.UpdatedAt)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
