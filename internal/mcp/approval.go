package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"

	DefaultApprovalTimeout = 120 * time.Second
)

// ErrRejected is returned when a human rejects a destructive action.
var ErrRejected = errors.New("action rejected by user")

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"`
}

// ApprovalQueue gates destructive tool calls behind a human decision.
// In-process callers resolve requests with Approve/Reject. With a store set,
// requests are written to the mcp_approvals table and polled, so a separate
// CLI process can resolve them.
type ApprovalQueue struct {
	mu           sync.Mutex
	pending      map[string]chan bool
	emitter      service.EventEmitter
	store        *storage.ApprovalStore
	timeout      time.Duration
	pollInterval time.Duration
	autoApprove  bool
	log          *zap.SugaredLogger
}

func NewApprovalQueue(emitter service.EventEmitter) *ApprovalQueue {
	if emitter == nil {
		emitter = service.NoopEmitter{}
	}
	return &ApprovalQueue{
		pending:      make(map[string]chan bool),
		emitter:      emitter,
		timeout:      DefaultApprovalTimeout,
		pollInterval: 500 * time.Millisecond,
		log:          zap.S(),
	}
}

// SetStore enables database-backed approval.
func (q *ApprovalQueue) SetStore(store *storage.ApprovalStore) { q.store = store }

// SetTimeout bounds how long Request waits. Non-positive values keep the
// current timeout.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	if d > 0 {
		q.timeout = d
	}
}

// SetAutoApprove makes every request succeed immediately.
func (q *ApprovalQueue) SetAutoApprove(on bool) { q.autoApprove = on }

// Request blocks until the action is approved, rejected, timed out or ctx
// is cancelled. Only approval returns nil.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) error {
	if q.autoApprove {
		q.log.Debugw("approval: auto-approved", "tool", tool, "description", description)
		return nil
	}
	if metadata == "" {
		metadata = "{}"
	}
	id := uuid.NewString()
	q.log.Infow("approval: waiting", "id", id, "tool", tool, "description", description)
	if q.store != nil {
		return q.requestViaStore(ctx, id, tool, description, metadata)
	}
	return q.requestViaChannel(ctx, id, tool, description, metadata)
}

func (q *ApprovalQueue) requestViaStore(ctx context.Context, id, tool, description, metadata string) error {
	err := q.store.Create(&storage.Approval{ID: id, Tool: tool, Description: description, Metadata: metadata})
	if err != nil {
		return err
	}
	defer q.store.Delete(id)

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.Status(id)
			if err != nil {
				continue
			}
			switch status {
			case storage.ApprovalApproved:
				return nil
			case storage.ApprovalRejected:
				return fmt.Errorf("%w: %s", ErrRejected, tool)
			}
		case <-deadline.C:
			return fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, id, tool, description, metadata string) error {
	ch := make(chan bool, 1)
	q.mu.Lock()
	q.pending[id] = ch
	q.mu.Unlock()
	defer q.cleanup(id)

	q.emitter.Emit(ctx, EventApprovalRequired, PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	})

	select {
	case approved := <-ch:
		if !approved {
			return fmt.Errorf("%w: %s", ErrRejected, tool)
		}
		return nil
	case <-time.After(q.timeout):
		q.emitter.Emit(ctx, EventApprovalDismissed, map[string]string{"id": id})
		return fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Approve resolves an in-process request. It reports whether id was pending.
func (q *ApprovalQueue) Approve(id string) bool { return q.resolve(id, true) }

// Reject resolves an in-process request. It reports whether id was pending.
func (q *ApprovalQueue) Reject(id string) bool { return q.resolve(id, false) }

func (q *ApprovalQueue) resolve(id string, approved bool) bool {
	q.mu.Lock()
	ch, ok := q.pending[id]
	delete(q.pending, id)
	q.mu.Unlock()
	if ok {
		ch <- approved
	}
	return ok
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
