package handler

import (
	"ledger-api/common"
	"ledger-api/logger"
	"net/http"
)

// APIKeyHeader carries the shared secret on every gated request.
const APIKeyHeader = "X-API-Key"

// Authorizer is satisfied by *service.AuthGate.
type Authorizer interface {
	Authorize(presented string) bool
}

// AuthMiddleware rejects requests whose X-API-Key does not match the shared secret.
// The response never says why the key was rejected.
func AuthMiddleware(gate Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gate.Authorize(r.Header.Get(APIKeyHeader)) {
				logger.Log.WithField("path", r.URL.Path).Warn("Rejected unauthorized request")
				common.NewAppError(http.StatusUnauthorized, "unauthorized", nil).Send(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
