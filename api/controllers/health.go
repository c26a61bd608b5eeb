package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/medfinder-backend/api/responses"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
)

const (
	envHeader          = "X-MedFinder-Env"
	readinessTimeout   = 2 * time.Second
	checkStatusOK      = "ok"
	checkStatusSkipped = "disabled"
)

// Pinger is any dependency the readiness probe can ping.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. A nil redis
// pinger is reported as disabled rather than failing the probe.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger Pinger, redisPinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": checkStatusOK, "redis": checkStatusSkipped}
		var g errgroup.Group
		g.Go(func() error {
			if dbPinger == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "database not configured")
			}
			if err := dbPinger.Ping(ctx); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
			}
			return nil
		})
		if redisPinger != nil {
			checks["redis"] = checkStatusOK
			g.Go(func() error {
				if err := redisPinger.Ping(ctx); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable")
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
