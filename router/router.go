package router

import (
	"ledger-api/handler"
	"ledger-api/repository"
	"net/http"

	_ "ledger-api/docs"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter registers every route. Only the status check and the API docs are public;
// the REST routes pass the X-API-Key check and the tool routes authorize themselves
// against the same gate. A nil idempotency store disables Idempotency-Key replay.
func NewRouter(
	gate handler.Authorizer,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
	toolHandler *handler.ToolHandler,
	idempotencyStore repository.IIdempotencyRepository,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handler.HealthCheck)
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	protected := handler.AuthMiddleware(gate)
	mutating := func(h http.Handler) http.Handler {
		if idempotencyStore == nil {
			return protected(h)
		}
		return protected(handler.Idempotency(idempotencyStore)(h))
	}

	mux.Handle("POST /accounts", mutating(handler.ErrorHandlingMiddleware(accountHandler.CreateAccount)))
	mux.Handle("GET /accounts/{accountId}", protected(handler.ErrorHandlingMiddleware(accountHandler.GetAccount)))
	mux.Handle("POST /accounts/{accountId}/deposit", mutating(handler.ErrorHandlingMiddleware(accountHandler.Deposit)))
	mux.Handle("POST /accounts/{accountId}/withdraw", mutating(handler.ErrorHandlingMiddleware(accountHandler.Withdraw)))
	mux.Handle("GET /accounts/{accountId}/transactions", protected(handler.ErrorHandlingMiddleware(transactionHandler.ListTransactionsForAccount)))

	mux.HandleFunc("GET /mcp/tools", toolHandler.ListTools)
	mux.HandleFunc("POST /mcp/tools/call", toolHandler.CallTool)

	return handler.RequestLogger(handler.Recoverer(mux))
}
