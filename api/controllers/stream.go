package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/medfinder-backend/api/responses"
	"github.com/angelmondragon/medfinder-backend/internal/realtime"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/logger"
)

const defaultStreamKeepAlive = 25 * time.Second

type streamHub interface {
	Subscribe(buffer int) (<-chan realtime.Envelope, func())
}

// StockStream serves the server-sent event feed of stock and reservation changes.
// Each envelope is written as `event: <type>` with the JSON envelope as data.
func StockStream(hub streamHub, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultStreamKeepAlive
	}

	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		events, cancel := hub.Subscribe(cfg.ClientBuffer)
		defer cancel()

		header := w.Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		header.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		if logg != nil {
			logg.Debug(r.Context(), "stream.connected")
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				if logg != nil {
					logg.Debug(r.Context(), "stream.disconnected")
				}
				return
			case env, ok := <-events:
				if !ok {
					return
				}
				payload, err := json.Marshal(env)
				if err != nil {
					if logg != nil {
						logg.Error(r.Context(), "stream.encode_failed", err)
					}
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Type, payload); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
