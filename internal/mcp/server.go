package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/layout"
	"pagebuilder/internal/registry"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// EventSchemaChanged tells listeners an agent edited a page.
const EventSchemaChanged = "mcp:schema-changed"

// Server is the MCP server for the page builder. It exposes tools,
// resources and prompts so agents can build pages.
type Server struct {
	mcp          *server.MCPServer
	emitter      service.EventEmitter
	approval     *ApprovalQueue
	pages        *service.PageService
	registry     *registry.Registry
	ids          layout.IDSource
	historyLimit int
	log          *zap.SugaredLogger

	mu           sync.Mutex
	activePageID string
}

// Deps holds everything the app layer passes to the server.
type Deps struct {
	Emitter  service.EventEmitter
	Pages    *service.PageService
	Registry *registry.Registry

	// Approvals, when set, moves approval requests into the database so the
	// CLI can resolve them from another process.
	Approvals       *storage.ApprovalStore
	AutoApprove     bool
	ApprovalTimeout time.Duration
	HistoryLimit    int

	// IDs generates node ids; nil means random ids.
	IDs layout.IDSource
}

func New(deps Deps) *Server {
	if deps.Emitter == nil {
		deps.Emitter = service.NoopEmitter{}
	}
	approval := NewApprovalQueue(deps.Emitter)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	approval.SetTimeout(deps.ApprovalTimeout)
	approval.SetAutoApprove(deps.AutoApprove)

	s := &Server{
		emitter:      deps.Emitter,
		approval:     approval,
		pages:        deps.Pages,
		registry:     deps.Registry,
		ids:          deps.IDs,
		historyLimit: deps.HistoryLimit,
		log:          zap.S(),
	}

	s.mcp = server.NewMCPServer(
		"pagebuilder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerLayoutTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.log.Infow("mcp: serving stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) Approve(actionID string) bool { return s.approval.Approve(actionID) }
func (s *Server) Reject(actionID string) bool  { return s.approval.Reject(actionID) }

// ── Helpers ────────────────────────────────────────────────

func (s *Server) setActivePage(id string) {
	s.mu.Lock()
	s.activePageID = id
	s.mu.Unlock()
}

func (s *Server) activePage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePageID
}

// resolvePage loads the page named by the pageId argument (id or slug),
// falling back to the active page.
func (s *Server) resolvePage(args map[string]any) (*domain.Page, error) {
	ref := argString(args, "pageId")
	if ref == "" {
		ref = s.activePage()
	}
	if ref == "" {
		return nil, errors.New("no pageId provided and no active page set (use set_active_page first)")
	}
	return s.pages.Lookup(ref)
}

// edit opens the page in an editor session, applies fn and saves the result
// as a revision labelled label. fn returns a short description of what it
// did. An intent that leaves the schema unchanged is reported as an error.
func (s *Server) edit(ctx context.Context, args map[string]any, label string, fn func(e *editor.Editor) (any, error)) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(args)
	if err != nil {
		return nil, err
	}
	ed := editor.New(page.Schema, editor.Options{
		Context:      ctx,
		Registry:     s.registry,
		IDs:          s.ids,
		HistoryLimit: s.historyLimit,
		Logger:       s.log,
	})
	out, err := fn(ed)
	if err != nil {
		return nil, err
	}
	if !ed.CanUndo() {
		return nil, fmt.Errorf("%s: nothing changed, check that the path exists", label)
	}
	rev, _, err := s.pages.SaveSchema(ctx, page.ID, label, ed.Schema())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	s.log.Infow("mcp: page edited", "page", page.ID, "label", label, "revision", rev.ID)
	s.emitter.Emit(ctx, EventSchemaChanged, map[string]string{"pageId": page.ID, "revisionId": rev.ID})
	return jsonResult(map[string]any{"pageId": page.ID, "revisionId": rev.ID, "result": out})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(b bool) *bool { return &b }

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

// argInt reads a numeric argument. JSON numbers arrive as float64.
func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func argFloat(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// argPath parses a node path argument such as "column:sec-1/row-1/col-1".
func argPath(args map[string]any, key string) (domain.Path, error) {
	raw := argString(args, key)
	if raw == "" {
		return domain.Path{}, fmt.Errorf("%s is required", key)
	}
	p, ok := domain.ParsePath(raw)
	if !ok {
		return domain.Path{}, fmt.Errorf("%s: malformed path %q (expected e.g. \"section:sec-1\" or \"column:sec-1/row-1/col-1\")", key, raw)
	}
	return p, nil
}

// argValue decodes a JSON-encoded value argument. Text that is not JSON is
// taken as a plain string.
func argValue(args map[string]any, key string) (any, error) {
	raw, present := args[key]
	if !present {
		return nil, fmt.Errorf("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s, nil
	}
	return v, nil
}
