package handler

import (
	"errors"
	"fmt"
	"ledger-api/model"
	"ledger-api/service"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func doRequest(fn http.HandlerFunc, method, target, accountID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if accountID != "" {
		req.SetPathValue("accountId", accountID)
	}
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))
		accounts.On("CreateAccount", mock.Anything, "Alice", decEq("100")).
			Return(&model.Account{ID: 1, OwnerName: "Alice", Balance: dec("100")}, nil).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.CreateAccount), http.MethodPost, "/accounts", "",
			`{"owner_name":"Alice","initial_balance":100}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"owner_name":"Alice"`)
		accounts.AssertExpectations(t)
	})

	t.Run("Missing owner name", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))

		rr := doRequest(ErrorHandlingMiddleware(h.CreateAccount), http.MethodPost, "/accounts", "",
			`{"initial_balance":10}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		accounts.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Duplicate owner", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))
		accounts.On("CreateAccount", mock.Anything, "Alice", decEq("0")).Return(nil, service.ErrDuplicateOwner).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.CreateAccount), http.MethodPost, "/accounts", "",
			`{"owner_name":"Alice"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Negative balance", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))
		err := fmt.Errorf("%w: initial_balance must not be negative", service.ErrValidation)
		accounts.On("CreateAccount", mock.Anything, "Bob", decEq("-5")).Return(nil, err).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.CreateAccount), http.MethodPost, "/accounts", "",
			`{"owner_name":"Bob","initial_balance":"-5"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAccountHandler_GetAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))
		accounts.On("GetAccount", mock.Anything, int64(7)).
			Return(&model.Account{ID: 7, OwnerName: "Alice", Balance: dec("12.5")}, nil).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.GetAccount), http.MethodGet, "/accounts/7", "7", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"balance":"12.5"`)
	})

	t.Run("Not found", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))
		accounts.On("GetAccount", mock.Anything, int64(99)).Return(nil, service.ErrAccountNotFound).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.GetAccount), http.MethodGet, "/accounts/99", "99", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"code":404,"message":"Account not found"}`, rr.Body.String())
	})

	t.Run("Invalid id", func(t *testing.T) {
		h := NewAccountHandler(new(MockAccountService), new(MockLedgerService))

		rr := doRequest(ErrorHandlingMiddleware(h.GetAccount), http.MethodGet, "/accounts/abc", "abc", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Store failure is generic", func(t *testing.T) {
		accounts := new(MockAccountService)
		h := NewAccountHandler(accounts, new(MockLedgerService))
		accounts.On("GetAccount", mock.Anything, int64(1)).
			Return(nil, errors.New("pq: connection refused")).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.GetAccount), http.MethodGet, "/accounts/1", "1", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pq:")
	})
}

func TestAccountHandler_Deposit(t *testing.T) {
	ledger := new(MockLedgerService)
	h := NewAccountHandler(new(MockAccountService), ledger)
	ledger.On("Deposit", mock.Anything, int64(1), decEq("50")).
		Return(&model.Account{ID: 1, OwnerName: "Alice", Balance: dec("150")}, nil).Once()

	rr := doRequest(ErrorHandlingMiddleware(h.Deposit), http.MethodPost, "/accounts/1/deposit", "1", `{"amount":50}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"balance":"150"`)
	ledger.AssertExpectations(t)
}

func TestAccountHandler_Withdraw(t *testing.T) {
	t.Run("Insufficient funds", func(t *testing.T) {
		ledger := new(MockLedgerService)
		h := NewAccountHandler(new(MockAccountService), ledger)
		ledger.On("Withdraw", mock.Anything, int64(1), decEq("500")).Return(nil, service.ErrInsufficientFunds).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.Withdraw), http.MethodPost, "/accounts/1/withdraw", "1", `{"amount":"500"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.JSONEq(t, `{"code":422,"message":"Insufficient funds"}`, rr.Body.String())
	})

	t.Run("Malformed body", func(t *testing.T) {
		ledger := new(MockLedgerService)
		h := NewAccountHandler(new(MockAccountService), ledger)

		rr := doRequest(ErrorHandlingMiddleware(h.Withdraw), http.MethodPost, "/accounts/1/withdraw", "1", `{"amount":"NaN"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		ledger.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_ListTransactionsForAccount(t *testing.T) {
	t.Run("Empty history", func(t *testing.T) {
		transactions := new(MockTransactionService)
		h := NewTransactionHandler(transactions)
		transactions.On("ListTransactionsForAccount", mock.Anything, int64(3)).Return([]*model.Transaction{}, nil).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.ListTransactionsForAccount), http.MethodGet, "/accounts/3/transactions", "3", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("Unknown account", func(t *testing.T) {
		transactions := new(MockTransactionService)
		h := NewTransactionHandler(transactions)
		transactions.On("ListTransactionsForAccount", mock.Anything, int64(9)).Return(nil, service.ErrAccountNotFound).Once()

		rr := doRequest(ErrorHandlingMiddleware(h.ListTransactionsForAccount), http.MethodGet, "/accounts/9/transactions", "9", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
