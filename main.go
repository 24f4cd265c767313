// pagebuilder stores, edits and renders section/row/column page layouts.
//
// Usage:
//
//	pagebuilder [--config FILE] <command> [flags]
//
// The mcp command serves the agent tool surface on stdin/stdout; the other
// commands are one-shot operations on the page database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"pagebuilder/internal/app"
	"pagebuilder/internal/config"
	"pagebuilder/internal/render"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app.App, args []string) error
}

var commands = map[string]command{
	"mcp":        {"serve the agent tool server on stdin/stdout", runMCP},
	"render":     {"render a page to HTML", runRender},
	"export":     {"print a page schema as JSON", runExport},
	"import":     {"create a page from a schema JSON file", runImport},
	"components": {"list registered components", runComponents},
	"history":    {"list a page's revisions", runHistory},
	"prune":      {"trim revision history now", runPrune},
	"approvals":  {"list agent actions waiting for approval", runApprovals},
	"approve":    {"approve a pending agent action", runResolve(true)},
	"reject":     {"reject a pending agent action", runResolve(false)},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	var configPath string
	flagSet := pflag.NewFlagSet("pagebuilder", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&configPath, "config", "", "config file (default $"+config.EnvVar+")")
	flagSet.Usage = func() { printHelp(flagSet) }

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return errors.New("no command given")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			zap.S().Warnw("close failed", "error", err)
		}
	}()
	return cmd.run(ctx, a, args[1:])
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: pagebuilder [--config FILE] <command> [flags]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range []string{"mcp", "render", "export", "import", "components", "history", "prune", "approvals", "approve", "reject"} {
		fmt.Fprintf(w, "  %s\t%s\n", name, commands[name].summary)
	}
	w.Flush()
	fmt.Fprintln(os.Stderr, "\nflags:")
	fmt.Fprint(os.Stderr, flagSet.FlagUsages())
}

// parseFlags parses a subcommand's flags. A nil error with done set means
// help was printed.
func parseFlags(fs *pflag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func runMCP(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("mcp", pflag.ContinueOnError)
	autoApprove := fs.Bool("auto-approve", a.Config().MCP.AutoApprove, "skip approval for destructive tools")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	a.Config().MCP.AutoApprove = *autoApprove
	return a.ServeMCP(ctx)
}

func runRender(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	page := fs.StringP("page", "p", "", "page id or slug (required)")
	modeName := fs.String("mode", "frontend", "frontend or editor")
	out := fs.StringP("out", "o", "", "write to FILE instead of stdout")
	document := fs.Bool("document", true, "wrap in a standalone HTML document")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *page == "" {
		return errors.New("render: --page is required")
	}
	mode, err := render.ParseMode(*modeName)
	if err != nil {
		return err
	}
	html, err := a.RenderPage(*page, mode, *document)
	if err != nil {
		return err
	}
	return writeOutput(*out, html+"\n")
}

func runExport(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	page := fs.StringP("page", "p", "", "page id or slug (required)")
	out := fs.StringP("out", "o", "", "write to FILE instead of stdout")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *page == "" {
		return errors.New("export: --page is required")
	}
	data, err := a.ExportPage(*page)
	if err != nil {
		return err
	}
	return writeOutput(*out, string(data)+"\n")
}

func runImport(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	title := fs.StringP("title", "t", "", "page title (required)")
	slug := fs.String("slug", "", "page slug (default: derived from the title)")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *title == "" || fs.NArg() != 1 {
		return errors.New("usage: pagebuilder import --title TITLE FILE")
	}
	page, err := a.ImportPage(ctx, *title, *slug, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\n", page.ID, page.Slug)
	return nil
}

func runComponents(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("components", pflag.ContinueOnError)
	category := fs.StringP("category", "c", "", "only list this category")
	asJSON := fs.Bool("json", false, "print definitions as JSON")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	defs := a.Components(*category)
	if *asJSON {
		return printJSON(defs)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSOURCE")
	for _, d := range defs {
		source := d.Source
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Category, source)
	}
	return w.Flush()
}

func runHistory(ctx context.Context, a *app.App, args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	page := fs.StringP("page", "p", "", "page id or slug (required)")
	diff := fs.Bool("diff", false, "print the diff from the parent of the current revision")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *page == "" {
		return errors.New("history: --page is required")
	}
	p, err := a.Pages().Lookup(*page)
	if err != nil {
		return err
	}
	tree, err := a.Pages().History(p.ID)
	if err != nil {
		return err
	}
	if tree == nil {
		fmt.Println("no revisions")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	var parentOfCurrent string
	for _, r := range tree.Revisions {
		marker := " "
		if r.ID == tree.CurrentID {
			marker = "*"
			if r.ParentID != nil {
				parentOfCurrent = *r.ParentID
			}
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", marker, r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Label)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if *diff && parentOfCurrent != "" {
		d, err := a.Pages().Diff(parentOfCurrent, tree.CurrentID)
		if err != nil {
			return err
		}
		fmt.Print(d)
	}
	return nil
}

func runPrune(ctx context.Context, a *app.App, args []string) error {
	n, err := a.Pruner().RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d revisions\n", n)
	return nil
}

func runApprovals(ctx context.Context, a *app.App, args []string) error {
	pending, err := a.PendingApprovals()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("no pending approvals")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Tool, p.Description)
	}
	return w.Flush()
}

func runResolve(approved bool) func(context.Context, *app.App, []string) error {
	return func(ctx context.Context, a *app.App, args []string) error {
		if len(args) != 1 {
			verb := "reject"
			if approved {
				verb = "approve"
			}
			return fmt.Errorf("usage: pagebuilder %s ID", verb)
		}
		return a.ResolveApproval(strings.TrimSpace(args[0]), approved)
	}
}

func writeOutput(path, s string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, s)
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
