// Command xsd-navigator loads an XML Schema document and its import/include
// family and exposes the navigable component tree on the command line.
//
// Subcommands:
//   - tree    : print the component tree (with occurrence decorations)
//   - resolve : resolve a structural locator to file:line
//   - diff    : show how the tree changed since the last cached run
//   - watch   : reprint the tree whenever the schema family changes on disk
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"xsd-navigator/internal/config"
	"xsd-navigator/internal/diff"
	"xsd-navigator/internal/explorer"
	"xsd-navigator/internal/snapshot"
	"xsd-navigator/internal/watch"
	"xsd-navigator/internal/workspace"
)

var (
	flagConfig     string
	flagDepth      int
	flagNoDecorate bool
	flagStyled     bool
	flagWorkspace  []string
	flagCacheDir   string
	flagLogLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "xsd-navigator",
		Short:         "navigable component trees for XML Schema documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringSliceVar(&flagWorkspace, "workspace", nil, "workspace roots for import search (overrides config)")
	root.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "base directory for tree snapshots (overrides config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	treeCmd := &cobra.Command{
		Use:   "tree <schema.xsd>",
		Short: "print the component tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runTree,
	}
	treeCmd.Flags().IntVar(&flagDepth, "depth", 3, "expansion depth (-1 = unbounded)")
	treeCmd.Flags().BoolVar(&flagNoDecorate, "no-decorations", false, "omit occurrence badges and nillable hints")
	treeCmd.Flags().BoolVar(&flagStyled, "color", false, "stylized terminal output")

	resolveCmd := &cobra.Command{
		Use:   "resolve <schema.xsd> <locator>",
		Short: "resolve a structural locator to file:line",
		Args:  cobra.ExactArgs(2),
		RunE:  runResolve,
	}

	diffCmd := &cobra.Command{
		Use:   "diff <schema.xsd>",
		Short: "diff the tree against the last cached run, then update the cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiff,
	}
	diffCmd.Flags().IntVar(&flagDepth, "depth", 3, "expansion depth (-1 = unbounded)")

	watchCmd := &cobra.Command{
		Use:   "watch <schema.xsd>",
		Short: "reprint the tree on every change to the schema family",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().IntVar(&flagDepth, "depth", 3, "expansion depth (-1 = unbounded)")
	watchCmd.Flags().BoolVar(&flagNoDecorate, "no-decorations", false, "omit occurrence badges and nillable hints")

	root.AddCommand(treeCmd, resolveCmd, diffCmd, watchCmd)

	if err := root.Execute(); err != nil {
		log.Error("failed", "err", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the provider plus a first snapshot
// for the given schema path.
func setup(schemaPath string) (*explorer.Provider, *explorer.Snapshot, config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, cfg, err
	}
	if len(flagWorkspace) > 0 {
		cfg.WorkspaceRoots = flagWorkspace
	}
	if flagCacheDir != "" {
		cfg.CacheDir = flagCacheDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: parseLevel(cfg.LogLevel)})

	ws := workspace.NewOS(cfg.WorkspaceRoots,
		workspace.WithExclude(cfg.ExcludeGlobs...),
		workspace.WithMaxResults(cfg.MaxSearchResults),
		workspace.WithLogger(logger),
	)
	provider := explorer.NewProvider(ws, logger)

	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, nil, cfg, err
	}
	snap, err := provider.Recompute(explorer.Source{Path: abs})
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("load %s: %w", schemaPath, err)
	}
	return provider, snap, cfg, nil
}

func runTree(cmd *cobra.Command, args []string) error {
	_, snap, _, err := setup(args[0])
	if err != nil {
		return err
	}
	fmt.Print(explorer.Render(snap, explorer.RenderOptions{
		MaxDepth:    flagDepth,
		Decorations: !flagNoDecorate,
		Styled:      flagStyled,
	}))
	for _, issue := range snap.Report.Issues() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", issue)
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	_, snap, _, err := setup(args[0])
	if err != nil {
		return err
	}
	loc, err := snap.Navigate(args[1])
	if err != nil {
		return err
	}
	fmt.Printf("%s:%d\n", loc.Path, loc.Line)
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	_, snap, cfg, err := setup(args[0])
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(args[0])
	dir := snapshot.CacheDir(cfg.CacheDir, abs)

	prev, err := snapshot.Load(dir)
	if err != nil {
		return err
	}
	current := explorer.Render(snap, explorer.RenderOptions{MaxDepth: flagDepth, Decorations: true})

	body, oversize := snapshot.DiffTrees(prev, current, diff.Options{Context: 3})
	if oversize {
		fmt.Fprintln(os.Stderr, "warning: diff omitted (oversize)")
	}
	if body == "" {
		fmt.Println("no tree changes")
	} else {
		fmt.Print(body)
	}

	return snapshot.Save(dir, &snapshot.Snapshot{
		Root:          abs,
		Created:       time.Now().UTC().Format(time.RFC3339),
		FormatVersion: "1",
		Documents:     docEntries(snap),
		Tree:          current,
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	provider, snap, cfg, err := setup(args[0])
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(args[0])

	printTree := func(s *explorer.Snapshot) {
		fmt.Print(explorer.Render(s, explorer.RenderOptions{
			MaxDepth:    flagDepth,
			Decorations: !flagNoDecorate,
		}))
	}
	provider.Subscribe(printTree)
	printTree(snap)

	paths := []string{abs}
	for _, b := range snap.Set.Bindings {
		paths = append(paths, b.Location)
	}
	w, err := watch.New(paths, time.Duration(cfg.DebounceMillis)*time.Millisecond, log.Default())
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = w.Run(ctx, func() {
		if _, rerr := provider.Recompute(explorer.Source{Path: abs}); rerr != nil {
			log.Warn("recompute failed", "err", rerr)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func docEntries(snap *explorer.Snapshot) []snapshot.DocEntry {
	var out []snapshot.DocEntry
	for _, d := range snap.Set.Documents() {
		e := snapshot.DocEntry{Path: d.Path}
		if !d.ModTime.IsZero() {
			e.ModTime = d.ModTime.UTC().Format(time.RFC3339)
		}
		out = append(out, e)
	}
	return out
}

// parseLevel maps a config string onto a log level, defaulting to info.
func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
