package handler

import (
	"ledger-api/common"
	"net/http"
)

// TransactionHandler serves the read-only transaction history.
type TransactionHandler struct {
	service ITransactionService
}

func NewTransactionHandler(s ITransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// ListTransactionsForAccount godoc
// @Summary      List account transaction history
// @Description  Returns every transaction of the account, oldest first. An account without transactions yields an empty array.
// @Tags         transactions
// @Produce      json
// @Security     ApiKeyAuth
// @Param        accountId path int true "The ID of the account to retrieve transactions for"
// @Success      200  {array}   model.Transaction
// @Failure      400  {object}  common.AppError "Invalid account ID in URL path"
// @Failure      401  {object}  common.AppError "unauthorized"
// @Failure      404  {object}  common.AppError "Account with the specified ID not found"
// @Failure      500  {object}  common.AppError "Internal server error while retrieving transactions"
// @Router       /accounts/{accountId}/transactions [get]
func (h *TransactionHandler) ListTransactionsForAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	accountID, appErr := parseAccountID(r)
	if appErr != nil {
		return appErr
	}

	transactions, err := h.service.ListTransactionsForAccount(r.Context(), accountID)
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusOK, transactions)
	return nil
}
