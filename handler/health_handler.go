package handler

import (
	"ledger-api/common"
	"net/http"
)

// HealthCheck godoc
// @Summary      Show the status of server
// @Description  Liveness check. The only route that needs no API key.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
