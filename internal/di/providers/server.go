package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/api"
	"github.com/cardinalitypuzzles/cardboard-server/internal/auth"
	"github.com/cardinalitypuzzles/cardboard-server/internal/config"
	"github.com/cardinalitypuzzles/cardboard-server/internal/logger"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
	"github.com/cardinalitypuzzles/cardboard-server/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	huntService := do.MustInvoke[*service.HuntService](i)
	puzzleService := do.MustInvoke[*service.PuzzleService](i)
	answerService := do.MustInvoke[*service.AnswerService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	authorizer := do.MustInvoke[auth.Authorizer](i)
	validator := do.MustInvoke[*validation.Validator](i)

	handler := api.NewServer(
		api.Services{
			Hunt:   huntService,
			Puzzle: puzzleService,
			Answer: answerService,
			Search: searchService,
		},
		authorizer,
		validator,
		api.Options{CORSOrigins: cfg.Server.CORSOrigins},
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
