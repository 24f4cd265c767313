package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/components"
	"pagebuilder/internal/layout"
	"pagebuilder/internal/registry"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

type harness struct {
	srv     *Server
	emitter *service.MockEmitter
	db      *storage.DB
}

func newHarness(t *testing.T, deps Deps) *harness {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := registry.New()
	components.RegisterAll(reg)
	em := &service.MockEmitter{}

	deps.Emitter = em
	deps.Pages = service.NewPageService(storage.NewPageStore(db), storage.NewRevisionStore(db, 0), em)
	deps.Registry = reg
	deps.IDs = layout.NewCounterSource()
	return &harness{srv: New(deps), emitter: em, db: db}
}

func call(t *testing.T, h toolHandler, args map[string]any) (string, error) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		return "", err
	}
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, nil
}

func mustCall(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	out, err := call(t, h, args)
	require.NoError(t, err)
	return out
}

// editResult decodes the result field of a mutating tool's response.
func editResult(t *testing.T, out string) any {
	t.Helper()
	var res struct {
		PageID     string `json:"pageId"`
		RevisionID string `json:"revisionId"`
		Result     any    `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RevisionID)
	return res.Result
}

// buildPage creates a page with one section, a two-column row and a heading
// in the first column.
func (h *harness) buildPage(t *testing.T) {
	t.Helper()
	mustCall(t, h.srv.handleCreatePage, map[string]any{"title": "Launch"})
	assert.Equal(t, "section:section-1", editResult(t, mustCall(t, h.srv.handleAddSection, map[string]any{})))
	assert.Equal(t, "row:section-1/row-1", editResult(t, mustCall(t, h.srv.handleAddRow, map[string]any{
		"sectionId": "section-1", "template": "1-1",
	})))
	res := editResult(t, mustCall(t, h.srv.handleAddComponent, map[string]any{
		"column": "column:section-1/row-1/column-1",
		"type":   "heading",
		"props":  `{"text":"Welcome aboard","level":1}`,
	}))
	assert.Equal(t, "component:section-1/row-1/column-1/component-1", res.(map[string]any)["path"])
}

func TestTools_BuildPage(t *testing.T) {
	h := newHarness(t, Deps{})
	h.buildPage(t)

	schema := mustCall(t, h.srv.handleGetSchema, map[string]any{})
	assert.Contains(t, schema, `"Welcome aboard"`)
	assert.Contains(t, schema, `"column-2"`)

	html := mustCall(t, h.srv.handleRenderPage, map[string]any{})
	assert.Contains(t, html, "Welcome aboard")
	assert.NotContains(t, html, "data-pb-path")

	editorHTML := mustCall(t, h.srv.handleRenderPage, map[string]any{"mode": "editor", "document": true})
	assert.Contains(t, editorHTML, "data-pb-path")
	assert.Contains(t, editorHTML, "<title>Launch</title>")

	assert.NotEmpty(t, h.emitter.Named(EventSchemaChanged))
}

func TestTools_SettingsAndProps(t *testing.T) {
	h := newHarness(t, Deps{})
	h.buildPage(t)

	mustCall(t, h.srv.handleUpdateSetting, map[string]any{
		"path": "section:section-1", "key": "backgroundColor", "value": "#fafafa",
	})
	mustCall(t, h.srv.handleUpdateProp, map[string]any{
		"path": "component:section-1/row-1/column-1/component-1", "key": "level", "value": "2",
	})
	schema := mustCall(t, h.srv.handleGetSchema, map[string]any{})
	assert.Contains(t, schema, `"backgroundColor": "#fafafa"`)
	assert.Contains(t, schema, `"level": 2`)

	mustCall(t, h.srv.handleUpdateSetting, map[string]any{
		"path": "section:section-1", "key": "backgroundColor", "remove": true,
	})
	assert.NotContains(t, mustCall(t, h.srv.handleGetSchema, map[string]any{}), "backgroundColor")

	_, err := call(t, h.srv.handleUpdateProp, map[string]any{
		"path": "section:section-1", "key": "text", "value": "x",
	})
	assert.ErrorContains(t, err, "nothing changed", "props live on components only")
}

func TestTools_MoveReorderResize(t *testing.T) {
	h := newHarness(t, Deps{})
	h.buildPage(t)

	res := editResult(t, mustCall(t, h.srv.handleMoveComponent, map[string]any{
		"component": "component:section-1/row-1/column-1/component-1",
		"column":    "column:section-1/row-1/column-2",
	}))
	assert.Equal(t, "component:section-1/row-1/column-2/component-1", res)

	mustCall(t, h.srv.handleReorder, map[string]any{"parent": "row:section-1/row-1", "from": 0.0, "to": 1.0})
	mustCall(t, h.srv.handleResizeColumn, map[string]any{"column": "column:section-1/row-1/column-1", "size": 20.0})
	schema := mustCall(t, h.srv.handleGetSchema, map[string]any{})
	assert.Contains(t, schema, `"size": 12`, "size is clamped to the grid")

	_, err := call(t, h.srv.handleResizeColumn, map[string]any{"column": "column:section-1/row-1/nope", "size": 3.0})
	assert.ErrorContains(t, err, "nothing changed")
	_, err = call(t, h.srv.handleReorder, map[string]any{"parent": "garbage", "from": 0.0, "to": 1.0})
	assert.ErrorContains(t, err, "malformed path")
}

func TestTools_DeleteAutoApproved(t *testing.T) {
	h := newHarness(t, Deps{AutoApprove: true})
	h.buildPage(t)

	mustCall(t, h.srv.handleDeleteNode, map[string]any{"path": "row:section-1/row-1"})
	schema := mustCall(t, h.srv.handleGetSchema, map[string]any{})
	assert.NotContains(t, schema, "row-1")

	_, err := call(t, h.srv.handleDeleteNode, map[string]any{"path": "row:section-1/row-1"})
	assert.ErrorContains(t, err, "not found")

	mustCall(t, h.srv.handleUndo, map[string]any{})
	assert.Contains(t, mustCall(t, h.srv.handleGetSchema, map[string]any{}), "row-1")
	mustCall(t, h.srv.handleRedo, map[string]any{})
	assert.NotContains(t, mustCall(t, h.srv.handleGetSchema, map[string]any{}), "row-1")
}

func TestTools_DeleteRejected(t *testing.T) {
	h := newHarness(t, Deps{ApprovalTimeout: 2 * time.Second})
	h.buildPage(t)

	go func() {
		for range 100 {
			if ev := h.emitter.Named(EventApprovalRequired); len(ev) > 0 {
				h.srv.Reject(ev[0].Data.(PendingAction).ID)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	_, err := call(t, h.srv.handleDeleteNode, map[string]any{"path": "section:section-1"})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, mustCall(t, h.srv.handleGetSchema, map[string]any{}), "section-1")
}

func TestTools_NoActivePage(t *testing.T) {
	h := newHarness(t, Deps{})
	_, err := call(t, h.srv.handleGetSchema, map[string]any{})
	assert.ErrorContains(t, err, "no active page")
	_, err = call(t, h.srv.handleSetActivePage, map[string]any{"pageId": "missing"})
	assert.ErrorIs(t, err, service.ErrPageNotFound)
}

func TestTools_ListComponents(t *testing.T) {
	h := newHarness(t, Deps{})
	out := mustCall(t, h.srv.handleListComponents, map[string]any{"category": "media"})
	assert.Contains(t, out, `"image"`)
	assert.NotContains(t, out, `"heading"`)
}

func TestTools_AddComponentWarnsOnUnknownType(t *testing.T) {
	h := newHarness(t, Deps{})
	h.buildPage(t)
	res := editResult(t, mustCall(t, h.srv.handleAddComponent, map[string]any{
		"column": "column:section-1/row-1/column-2",
		"type":   "carousel",
	}))
	assert.Contains(t, res.(map[string]any)["warning"], "not registered")

	_, err := call(t, h.srv.handleAddComponent, map[string]any{
		"column": "column:section-1/row-1/column-2", "type": "text", "props": "[1,2]",
	})
	assert.ErrorContains(t, err, "JSON object")
}

func TestResources(t *testing.T) {
	h := newHarness(t, Deps{})
	h.buildPage(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = pagesURI
	contents, err := h.srv.handlePagesResource(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"slug": "launch"`)

	req.Params.URI = "pagebuilder://page/launch/schema"
	contents, err = h.srv.handlePageSchemaResource(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "Welcome aboard")

	req.Params.URI = "pagebuilder://page/launch"
	_, err = h.srv.handlePageSchemaResource(context.Background(), req)
	assert.Error(t, err)
}

func TestPageIDFromURI(t *testing.T) {
	tests := map[string]string{
		"pagebuilder://page/abc-123/schema": "abc-123",
		"pagebuilder://page/abc/123/schema": "",
		"pagebuilder://pages":               "",
		"notes://page/abc/schema":           "",
	}
	for uri, want := range tests {
		assert.Equal(t, want, pageIDFromURI(uri), uri)
	}
}

func TestParseRowTemplate(t *testing.T) {
	sizes, err := parseRowTemplate("1-2")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 8}, sizes)

	sizes, err = parseRowTemplate("3, 9")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 9}, sizes)

	sizes, err = parseRowTemplate("")
	require.NoError(t, err)
	assert.Nil(t, sizes)

	_, err = parseRowTemplate("wide")
	assert.Error(t, err)
}

func TestArgValue(t *testing.T) {
	args := map[string]any{"n": "12", "s": "hello", "obj": `{"a":1}`, "raw": true}
	v, err := argValue(args, "n")
	require.NoError(t, err)
	assert.Equal(t, 12.0, v)
	v, _ = argValue(args, "s")
	assert.Equal(t, "hello", v)
	v, _ = argValue(args, "obj")
	assert.Equal(t, map[string]any{"a": 1.0}, v)
	v, _ = argValue(args, "raw")
	assert.Equal(t, true, v)
	_, err = argValue(args, "missing")
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────
// Approval queue
// ─────────────────────────────────────────────────────────────

func TestApprovalQueue_Channel(t *testing.T) {
	em := &service.MockEmitter{}
	q := NewApprovalQueue(em)
	q.SetTimeout(2 * time.Second)

	go func() {
		for range 100 {
			if ev := em.Named(EventApprovalRequired); len(ev) > 0 {
				q.Approve(ev[0].Data.(PendingAction).ID)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
	require.NoError(t, q.Request(context.Background(), "delete_node", "delete", ""))
	assert.False(t, q.Approve("unknown"))
}

func TestApprovalQueue_Timeout(t *testing.T) {
	em := &service.MockEmitter{}
	q := NewApprovalQueue(em)
	q.SetTimeout(30 * time.Millisecond)
	err := q.Request(context.Background(), "delete_node", "delete", "")
	assert.ErrorContains(t, err, "timed out")
	assert.Len(t, em.Named(EventApprovalDismissed), 1)
}

func TestApprovalQueue_Store(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "approvals.db"))
	require.NoError(t, err)
	defer db.Close()
	store := storage.NewApprovalStore(db)

	q := NewApprovalQueue(nil)
	q.SetStore(store)
	q.SetTimeout(2 * time.Second)
	q.pollInterval = 10 * time.Millisecond

	go func() {
		for range 100 {
			pending, _ := store.ListPending()
			if len(pending) > 0 {
				store.Resolve(pending[0].ID, false)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
	err = q.Request(context.Background(), "delete_node", "delete section", `{"path":"section:a"}`)
	assert.ErrorIs(t, err, ErrRejected)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending, "resolved approvals are removed")
}

func TestApprovalQueue_AutoApproveAndCancel(t *testing.T) {
	q := NewApprovalQueue(nil)
	q.SetAutoApprove(true)
	assert.NoError(t, q.Request(context.Background(), "delete_node", "x", ""))

	q.SetAutoApprove(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Request(ctx, "delete_node", "x", ""), context.Canceled)
}
