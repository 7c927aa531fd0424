package handler

import (
	"errors"
	"ledger-api/common"
	"ledger-api/service"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// serviceError maps a service failure to its HTTP form. Only sentinel text is sent;
// anything unrecognized becomes a generic 500 and the cause is logged by Send.
func serviceError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return common.NewAppError(http.StatusNotFound, "Account not found", err)
	case errors.Is(err, service.ErrInsufficientFunds):
		return common.NewAppError(http.StatusUnprocessableEntity, "Insufficient funds", err)
	case errors.Is(err, service.ErrDuplicateOwner):
		return common.NewAppError(http.StatusConflict, service.ErrDuplicateOwner.Error(), err)
	case errors.Is(err, service.ErrValidation):
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	default:
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}
