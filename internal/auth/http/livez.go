package http

import (
	"net/http"
	"time"

	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 while the process is up, with uptime and build version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authapi.HealthResponse
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authapi.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
