package app

import (
	"context"

	mcpserver "pagebuilder/internal/mcp"
)

// ServeMCP runs the agent tool server on stdin/stdout until the client
// disconnects. Approvals go through the database so `pagebuilder approve`
// can resolve them from another terminal.
func (a *App) ServeMCP(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	srv := mcpserver.New(mcpserver.Deps{
		Emitter:         a.emitter,
		Pages:           a.pageSvc,
		Registry:        a.registry,
		Approvals:       a.approvals,
		AutoApprove:     a.cfg.MCP.AutoApprove,
		ApprovalTimeout: a.cfg.ApprovalTimeout(),
		HistoryLimit:    a.cfg.History.Limit,
	})
	a.log.Infow("app: starting standalone MCP server", "db", a.db.Path())
	return srv.ServeStdio()
}
