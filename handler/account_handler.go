package handler

import (
	"ledger-api/common"
	"ledger-api/logger"
	"ledger-api/model"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	accounts IAccountService
	ledger   ILedgerService
}

func NewAccountHandler(accounts IAccountService, ledger ILedgerService) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger}
}

// parseAccountID reads the {accountId} path segment.
func parseAccountID(r *http.Request) (int64, *common.AppError) {
	id, err := strconv.ParseInt(r.PathValue("accountId"), 10, 64)
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", err)
	}
	return id, nil
}

// CreateAccount godoc
// @Summary      Open an account
// @Description  Creates an account for a unique owner name with a non-negative initial balance.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        account body model.CreateAccountRequest true "Owner and initial balance"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Invalid name or balance"
// @Failure      401  {object}  common.AppError "unauthorized"
// @Failure      409  {object}  common.AppError "Owner name already taken"
// @Failure      500  {object}  common.AppError
// @Router       /accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateAccountRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	logger.Log.Info("Create account request received")

	account, err := h.accounts.CreateAccount(r.Context(), req.OwnerName, req.InitialBalance)
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, account)
	return nil
}

// GetAccount godoc
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     ApiKeyAuth
// @Param        accountId path int true "Account ID"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /accounts/{accountId} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := parseAccountID(r)
	if appErr != nil {
		return appErr
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusOK, account)
	return nil
}

// Deposit godoc
// @Summary      Deposit into an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        accountId       path   int                         true   "Account ID"
// @Param        Idempotency-Key header string                      false  "Replays the first response for a repeated key"
// @Param        body            body   model.UpdateBalanceRequest  true   "Positive amount"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /accounts/{accountId}/deposit [post]
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.changeBalance(w, r, model.KindDeposit)
}

// Withdraw godoc
// @Summary      Withdraw from an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        accountId       path   int                         true   "Account ID"
// @Param        Idempotency-Key header string                      false  "Replays the first response for a repeated key"
// @Param        body            body   model.UpdateBalanceRequest  true   "Positive amount"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Failure      422  {object}  common.AppError "Insufficient funds"
// @Failure      500  {object}  common.AppError
// @Router       /accounts/{accountId}/withdraw [post]
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.changeBalance(w, r, model.KindWithdrawal)
}

func (h *AccountHandler) changeBalance(w http.ResponseWriter, r *http.Request, kind model.TransactionKind) *common.AppError {
	accountID, appErr := parseAccountID(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateBalanceRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"kind":       kind,
	}).Info("Balance change request received")

	var (
		account *model.Account
		err     error
	)
	if kind == model.KindDeposit {
		account, err = h.ledger.Deposit(r.Context(), accountID, req.Amount)
	} else {
		account, err = h.ledger.Withdraw(r.Context(), accountID, req.Amount)
	}
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusOK, account)
	return nil
}
