package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	mcpserver "pagebuilder/internal/mcp"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// pageWatcher polls the database for changes made by other processes (an
// MCP server editing pages, the CLI resolving approvals) and re-emits them
// as events.
type pageWatcher struct {
	ctx       context.Context
	pages     *storage.PageStore
	approvals *storage.ApprovalStore
	emitter   service.EventEmitter
	interval  time.Duration
	log       *zap.SugaredLogger

	mu           sync.Mutex
	lastPageList string // pages fingerprint (count:max updated_at)
	// Track emitted approval IDs to avoid re-emission
	emittedApprovals map[string]bool
	stopCh           chan struct{}
	stopOnce         sync.Once
}

func newPageWatcher(ctx context.Context, pages *storage.PageStore, approvals *storage.ApprovalStore, emitter service.EventEmitter) *pageWatcher {
	return &pageWatcher{
		ctx:              ctx,
		pages:            pages,
		approvals:        approvals,
		emitter:          emitter,
		interval:         2 * time.Second,
		log:              zap.S(),
		emittedApprovals: map[string]bool{},
		stopCh:           make(chan struct{}),
	}
}

// Start begins the polling loop.
func (w *pageWatcher) Start() {
	go w.pollLoop()
}

// Stop terminates the polling loop. It is safe to call more than once.
func (w *pageWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *pageWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *pageWatcher) check() {
	// ── Page list ───────────────────────────────────────
	fp, err := w.pages.Fingerprint()
	if err != nil {
		w.log.Debugw("page watcher: fingerprint failed", "error", err)
		return
	}
	w.mu.Lock()
	changed := w.lastPageList != "" && w.lastPageList != fp
	w.lastPageList = fp
	w.mu.Unlock()
	if changed {
		w.emitter.Emit(w.ctx, service.EventPagesChanged, map[string]string{"fingerprint": fp})
	}

	// ── Pending approvals (cross-process) ───────────────
	pending, err := w.approvals.ListPending()
	if err != nil {
		return
	}
	live := make(map[string]bool, len(pending))
	for _, a := range pending {
		live[a.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[a.ID]
		w.emittedApprovals[a.ID] = true
		w.mu.Unlock()
		if alreadySent {
			continue
		}
		w.emitter.Emit(w.ctx, mcpserver.EventApprovalRequired, mcpserver.PendingAction{
			ID:          a.ID,
			Tool:        a.Tool,
			Description: a.Description,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
			Metadata:    a.Metadata,
		})
	}

	// Forget approvals that were resolved or removed.
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}
