package providers

import (
	"github.com/samber/do/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/auth"
	"github.com/cardinalitypuzzles/cardboard-server/internal/config"
	"github.com/cardinalitypuzzles/cardboard-server/internal/logger"
	"github.com/cardinalitypuzzles/cardboard-server/internal/notify"
	"github.com/cardinalitypuzzles/cardboard-server/internal/ratelimit"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
	"github.com/cardinalitypuzzles/cardboard-server/internal/validation"
)

// ProvideNotifySink provides the outbound notification sink. Events are
// written to the log until a chat integration is plugged in.
func ProvideNotifySink(i do.Injector) (*notify.SlogSink, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return notify.NewSlogSink(log.Logger), nil
}

// ProvideGuessRateLimiter provides the per-puzzle guess rate limiter.
func ProvideGuessRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Hunt.GuessRPS, cfg.Hunt.GuessBurst), nil
}

// ProvideAuthorizer provides the access checker backed by static tokens.
func ProvideAuthorizer(i do.Injector) (auth.Authorizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.MemberToken == "" && cfg.Auth.AdminToken == "" {
		log.Warn("No API tokens configured, all requests are treated as admin")
	}

	return auth.NewStaticAuthorizer(cfg.Auth.MemberToken, cfg.Auth.AdminToken), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideHuntService provides the hunt service.
func ProvideHuntService(i do.Injector) (*service.HuntService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHuntService(storeHandle.Store, searchService, log.Logger), nil
}

// ProvidePuzzleService provides the puzzle service.
func ProvidePuzzleService(i do.Injector) (*service.PuzzleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sink := do.MustInvoke[*notify.SlogSink](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPuzzleService(storeHandle.Store, searchService, sink, sink, limiter, log.Logger), nil
}

// ProvideAnswerService provides the answer service.
func ProvideAnswerService(i do.Injector) (*service.AnswerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sink := do.MustInvoke[*notify.SlogSink](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnswerService(storeHandle.Store, searchService, sink, sink, limiter, log.Logger), nil
}
