package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"ledger-api/common"
	"ledger-api/logger"
	"ledger-api/model"
	"ledger-api/service"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	ToolStatusSuccess = "success"
	ToolStatusError   = "error"
)

// Tool result messages are fixed text. Anything derived from account data goes in Data.
const (
	msgAccountCreated    = "Account created."
	msgBalanceRetrieved  = "Balance retrieved."
	msgTransactionDone   = "Transaction processed."
	msgHistoryRetrieved  = "Transaction history retrieved."
	msgNoHistory         = "No transaction history found."
	msgUnauthorized      = "unauthorized"
	msgInvalidCall       = "Invalid tool call."
	msgInvalidArguments  = "Invalid arguments."
	msgUnknownTool       = "Unknown tool."
	msgAccountNotFound   = "Account not found."
	msgInsufficientFunds = "Transaction failed: insufficient funds."
	msgDuplicateOwner    = "An account with this owner name already exists."
	msgInternal          = "The request could not be completed."
)

// ToolResult is the structured reply of every tool call.
type ToolResult struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ToolCallRequest invokes one tool. APIKey is an alternative to the X-API-Key header.
type ToolCallRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	APIKey    string          `json:"api_key,omitempty"`
}

// ToolDescriptor advertises a tool and the JSON schema of its arguments.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type createAccountArgs struct {
	Name           string          `json:"name" validate:"required,max=50"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

type accountArgs struct {
	AccountID int64 `json:"account_id" validate:"required"`
}

type processTransactionArgs struct {
	AccountID       int64           `json:"account_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type" validate:"required"`
}

// BalanceView is the data of a check_balance result.
type BalanceView struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type toolFunc func(ctx context.Context, args json.RawMessage) (string, interface{}, error)

// ToolHandler exposes the ledger as agent tools. It shares the AuthGate with the REST routes.
type ToolHandler struct {
	gate         Authorizer
	accounts     IAccountService
	ledger       ILedgerService
	transactions ITransactionService
	tools        map[string]toolFunc
}

func NewToolHandler(gate Authorizer, accounts IAccountService, ledger ILedgerService, transactions ITransactionService) *ToolHandler {
	h := &ToolHandler{
		gate:         gate,
		accounts:     accounts,
		ledger:       ledger,
		transactions: transactions,
	}
	h.tools = map[string]toolFunc{
		"create_new_account":  h.createNewAccount,
		"check_balance":       h.checkBalance,
		"process_transaction": h.processTransaction,
		"view_history":        h.viewHistory,
	}
	return h
}

func objectSchema(required []string, props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var toolDescriptors = []ToolDescriptor{
	{
		Name:        "create_new_account",
		Description: "Creates a new bank account for a user.",
		InputSchema: objectSchema([]string{"name"}, map[string]interface{}{
			"name":            map[string]string{"type": "string"},
			"initial_deposit": map[string]string{"type": "number"},
		}),
	},
	{
		Name:        "check_balance",
		Description: "Retrieves the current balance for a specific account ID.",
		InputSchema: objectSchema([]string{"account_id"}, map[string]interface{}{
			"account_id": map[string]string{"type": "integer"},
		}),
	},
	{
		Name:        "process_transaction",
		Description: "Handles deposits or withdrawals. Use 'deposit' or 'withdrawal' as transaction_type.",
		InputSchema: objectSchema([]string{"account_id", "amount", "transaction_type"}, map[string]interface{}{
			"account_id":       map[string]string{"type": "integer"},
			"amount":           map[string]string{"type": "number"},
			"transaction_type": map[string]interface{}{"type": "string", "enum": []string{"deposit", "withdrawal"}},
		}),
	},
	{
		Name:        "view_history",
		Description: "Returns the transactions of the account, oldest first.",
		InputSchema: objectSchema([]string{"account_id"}, map[string]interface{}{
			"account_id": map[string]string{"type": "integer"},
		}),
	},
}

// ListTools godoc
// @Summary      List agent tools
// @Tags         tools
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  handler.ToolResult
// @Failure      401  {object}  handler.ToolResult
// @Router       /mcp/tools [get]
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	if !h.gate.Authorize(r.Header.Get(APIKeyHeader)) {
		writeToolResult(w, http.StatusUnauthorized, ToolResult{Status: ToolStatusError, Message: msgUnauthorized})
		return
	}
	writeToolResult(w, http.StatusOK, ToolResult{Status: ToolStatusSuccess, Message: "Tools listed.", Data: toolDescriptors})
}

// CallTool godoc
// @Summary      Call an agent tool
// @Description  The shared secret is read from X-API-Key or from the api_key field of the body.
// @Tags         tools
// @Accept       json
// @Produce      json
// @Param        call body handler.ToolCallRequest true "Tool name and arguments"
// @Success      200  {object}  handler.ToolResult "status is success or error"
// @Failure      400  {object}  handler.ToolResult
// @Failure      401  {object}  handler.ToolResult
// @Router       /mcp/tools/call [post]
func (h *ToolHandler) CallTool(w http.ResponseWriter, r *http.Request) {
	var req ToolCallRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxBodyBytes)).Decode(&req); err != nil {
		writeToolResult(w, http.StatusBadRequest, ToolResult{Status: ToolStatusError, Message: msgInvalidCall})
		return
	}

	secret := r.Header.Get(APIKeyHeader)
	if secret == "" {
		secret = req.APIKey
	}
	if !h.gate.Authorize(secret) {
		logger.Log.WithField("tool", req.Name).Warn("Rejected unauthorized tool call")
		writeToolResult(w, http.StatusUnauthorized, ToolResult{Status: ToolStatusError, Message: msgUnauthorized})
		return
	}

	tool, ok := h.tools[req.Name]
	if !ok {
		writeToolResult(w, http.StatusOK, ToolResult{Status: ToolStatusError, Message: msgUnknownTool})
		return
	}

	log := logger.Log.WithFields(logrus.Fields{
		"request_id": RequestIDFromContext(r.Context()),
		"tool":       req.Name,
	})
	log.Info("Tool call received")

	message, data, err := tool(r.Context(), req.Arguments)
	if err != nil {
		writeToolResult(w, http.StatusOK, toolError(log, err))
		return
	}
	writeToolResult(w, http.StatusOK, ToolResult{Status: ToolStatusSuccess, Message: message, Data: data})
}

func (h *ToolHandler) createNewAccount(ctx context.Context, raw json.RawMessage) (string, interface{}, error) {
	var args createAccountArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	account, err := h.accounts.CreateAccount(ctx, args.Name, args.InitialDeposit)
	if err != nil {
		return "", nil, err
	}
	return msgAccountCreated, account, nil
}

func (h *ToolHandler) checkBalance(ctx context.Context, raw json.RawMessage) (string, interface{}, error) {
	var args accountArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	account, err := h.accounts.GetAccount(ctx, args.AccountID)
	if err != nil {
		return "", nil, err
	}
	return msgBalanceRetrieved, BalanceView{AccountID: account.ID, Balance: account.Balance}, nil
}

func (h *ToolHandler) processTransaction(ctx context.Context, raw json.RawMessage) (string, interface{}, error) {
	var args processTransactionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}

	kind := model.TransactionKind(strings.ToLower(strings.TrimSpace(args.TransactionType)))
	if !kind.Valid() {
		return "", nil, service.ErrValidation
	}

	var (
		account *model.Account
		err     error
	)
	if kind == model.KindDeposit {
		account, err = h.ledger.Deposit(ctx, args.AccountID, args.Amount)
	} else {
		account, err = h.ledger.Withdraw(ctx, args.AccountID, args.Amount)
	}
	if err != nil {
		return "", nil, err
	}
	return msgTransactionDone, account, nil
}

func (h *ToolHandler) viewHistory(ctx context.Context, raw json.RawMessage) (string, interface{}, error) {
	var args accountArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", nil, err
	}
	transactions, err := h.transactions.ListTransactionsForAccount(ctx, args.AccountID)
	if err != nil {
		return "", nil, err
	}
	if len(transactions) == 0 {
		return msgNoHistory, transactions, nil
	}
	return msgHistoryRetrieved, transactions, nil
}

// decodeArgs reports every malformed or invalid argument set as service.ErrValidation.
func decodeArgs(raw json.RawMessage, args interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(args); err != nil {
		return service.ErrValidation
	}
	if err := common.ValidateStruct(args); err != nil {
		return service.ErrValidation
	}
	return nil
}

func toolError(log *logrus.Entry, err error) ToolResult {
	result := ToolResult{Status: ToolStatusError}
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		result.Message = msgAccountNotFound
	case errors.Is(err, service.ErrInsufficientFunds):
		result.Message = msgInsufficientFunds
	case errors.Is(err, service.ErrDuplicateOwner):
		result.Message = msgDuplicateOwner
	case errors.Is(err, service.ErrValidation):
		result.Message = msgInvalidArguments
	default:
		log.WithError(err).Error("Tool call failed")
		result.Message = msgInternal
	}
	return result
}

func writeToolResult(w http.ResponseWriter, status int, result ToolResult) {
	common.WriteJSON(w, status, result)
}
