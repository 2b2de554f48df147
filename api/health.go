package api

import (
	"net/http"

	"go.uber.org/zap"
)

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Warn("health check: database unreachable", zap.Error(err))
		a.Response(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	a.Response(w, http.StatusOK, "OK")
}
