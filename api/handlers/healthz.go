package handlers

import (
	"net/http"

	"github.com/isirwatch/backend/api/responses"
	"github.com/isirwatch/backend/pkg/config"
	"github.com/isirwatch/backend/pkg/logger"
)

func Healthz(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logg.WithFields(r.Context(), map[string]any{
			"env":  cfg.App.Env,
			"path": r.URL.Path,
		})
		logg.Debug(ctx, "health.check")

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
