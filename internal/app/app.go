package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"pagebuilder/internal/components"
	"pagebuilder/internal/config"
	"pagebuilder/internal/registry"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// App owns the process-wide collaborators: storage, the component registry
// and the services built on them. The CLI commands and the MCP server are
// thin layers over it.
type App struct {
	cfg *config.Config
	log *zap.SugaredLogger

	db        *storage.DB
	pages     *storage.PageStore
	revisions *storage.RevisionStore
	approvals *storage.ApprovalStore

	registry *registry.Registry
	watcher  *registry.Watcher

	emitter     service.EventEmitter
	pageSvc     *service.PageService
	pruner      *service.Pruner
	pageWatcher *pageWatcher
}

// New opens the database and builds the registry and services. A nil
// emitter logs events.
func New(cfg *config.Config, emitter service.EventEmitter) (*App, error) {
	if emitter == nil {
		emitter = service.LogEmitter{}
	}
	log := zap.S()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		pages:     storage.NewPageStore(db),
		revisions: storage.NewRevisionStore(db, cfg.Revisions.Max),
		approvals: storage.NewApprovalStore(db),
		registry:  registry.New(),
		emitter:   emitter,
	}
	a.pageSvc = service.NewPageService(a.pages, a.revisions, emitter)
	a.pruner = service.NewPruner(a.pageSvc, cfg.Revisions.PruneSchedule, cfg.Revisions.Max)

	components.RegisterAll(a.registry)
	if cfg.ComponentsDir != "" {
		if _, err := a.registry.LoadDir(cfg.ComponentsDir); err != nil {
			log.Warnw("app: some component definitions failed to load", "dir", cfg.ComponentsDir, "error", err)
		}
	}
	return a, nil
}

// Start launches background work: revision pruning, the components
// directory watcher and the page watcher. It is only needed by long-running
// commands.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Revisions.Max > 0 {
		if err := a.pruner.Start(ctx); err != nil {
			return err
		}
	}
	if a.cfg.WatchComponents && a.cfg.ComponentsDir != "" {
		if err := a.watchComponents(); err != nil {
			return err
		}
	}
	a.pageWatcher = newPageWatcher(ctx, a.pages, a.approvals, a.emitter)
	a.pageWatcher.Start()
	return nil
}

func (a *App) watchComponents() error {
	if err := os.MkdirAll(a.cfg.ComponentsDir, 0o755); err != nil {
		return fmt.Errorf("create components dir: %w", err)
	}
	w, err := registry.Watch(a.registry, a.cfg.ComponentsDir, func(id, path string, err error) {
		if err != nil {
			a.log.Warnw("app: component reload failed", "path", path, "error", err)
			return
		}
		a.log.Infow("app: component reloaded", "id", id, "path", path)
		a.emitter.Emit(context.Background(), "components:changed", map[string]string{"id": id})
	})
	if err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// Close stops background work and closes the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.pageWatcher != nil {
		a.pageWatcher.Stop()
	}
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	a.pruner.Stop(ctx)
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}

func (a *App) Config() *config.Config            { return a.cfg }
func (a *App) Pages() *service.PageService       { return a.pageSvc }
func (a *App) Registry() *registry.Registry      { return a.registry }
func (a *App) Approvals() *storage.ApprovalStore { return a.approvals }
func (a *App) Pruner() *service.Pruner           { return a.pruner }
