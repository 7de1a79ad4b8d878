// Package di provides dependency injection configuration for the Cardboard server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/config"
	"github.com/cardinalitypuzzles/cardboard-server/internal/di/providers"
	"github.com/cardinalitypuzzles/cardboard-server/internal/logger"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Cross-cutting services
	do.Provide(injector, providers.ProvideNotifySink)
	do.Provide(injector, providers.ProvideGuessRateLimiter)
	do.Provide(injector, providers.ProvideAuthorizer)
	do.Provide(injector, providers.ProvideValidator)

	// Business services
	do.Provide(injector, providers.ProvideHuntService)
	do.Provide(injector, providers.ProvidePuzzleService)
	do.Provide(injector, providers.ProvideAnswerService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.HuntService](injector)
	_ = do.MustInvoke[*service.PuzzleService](injector)
	_ = do.MustInvoke[*service.AnswerService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index from the store if it came up empty.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
