package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/config"
	"github.com/cardinalitypuzzles/cardboard-server/internal/logger"
	"github.com/cardinalitypuzzles/cardboard-server/internal/search"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index from the store.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	hunts, err := storeHandle.ListHunts(ctx)
	if err != nil || len(hunts) == 0 {
		return
	}

	log.Info("Search index is empty but hunts exist, triggering initial reindex",
		"hunt_count", len(hunts),
	)

	go func() {
		reindexCtx := context.Background()
		for _, h := range hunts {
			if err := searchService.ReindexHunt(reindexCtx, h.ID); err != nil {
				log.Error("Initial search reindex failed", "hunt_id", h.ID, "error", err)
			}
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
