package http

import (
	"net/http"

	"github.com/m-mizutani/towebp/pkg/domain/model"
	"github.com/m-mizutani/towebp/pkg/domain/types"
)

// healthHandler handles health check requests
func healthHandler(encoder string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, &model.HealthStatus{
			Status:  "healthy",
			Service: "towebp",
			Version: types.Version,
			Encoder: encoder,
		})
	}
}
