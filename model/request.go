// file: model/request.go

package model

import "github.com/shopspring/decimal"

// CreateAccountRequest defines the payload for opening an account.
// The balance bounds are enforced by the account service, which is the source of truth.
type CreateAccountRequest struct {
	OwnerName      string          `json:"owner_name" validate:"required,min=1,max=50"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// UpdateBalanceRequest is the body of deposit and withdraw calls.
type UpdateBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
