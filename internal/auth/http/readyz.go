package http

import (
	"net/http"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/httpx"
	"github.com/recipic-shop/recipic/pkg/jwtx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database connection and the signing key set. Returns 503 with per-check detail when either is degraded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authapi.HealthResponse
//	@Failure		503	{object}	authapi.HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authapi.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authapi.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
