// Command fsieve is the CLI shell (C15) over the engine facade (C14).
// It carries no invariants of its own — it exists to exercise New,
// IndexDirectory, UpdateIndex, Search, StartWatching/StopWatching,
// GetStats, VerifyIndex, ClearIndex, Vacuum, and AddExclusionPattern
// end to end. Grounded on the teacher's cmd/lci/main.go App/Command
// construction and urfave/cli/v2 usage.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/filesieve/filesieve/internal/engine"
	"github.com/filesieve/filesieve/internal/model"
	"github.com/filesieve/filesieve/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "fsieve",
		Usage:   "fast, filterable file search and indexing",
		Version: version.FullInfo(),
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "build a fresh index for a directory",
				ArgsUsage: "<root>",
				Action:    indexCommand,
			},
			{
				Name:      "update",
				Usage:     "incrementally sync the index with a directory",
				ArgsUsage: "<root>",
				Action:    updateCommand,
			},
			{
				Name:      "search",
				Usage:     "run a query line against the index",
				ArgsUsage: "<query-line>",
				Action:    searchCommand,
			},
			{
				Name:      "watch",
				Usage:     "watch a directory and keep the index in sync until interrupted",
				ArgsUsage: "<root>",
				Action:    watchCommand,
			},
			{
				Name:   "stats",
				Usage:  "print aggregate index statistics",
				Action: statsCommand,
			},
			{
				Name:      "verify",
				Usage:     "classify indexed rows under a directory as valid/outdated/missing",
				ArgsUsage: "<root>",
				Action:    verifyCommand,
			},
			{
				Name:   "vacuum",
				Usage:  "reclaim on-disk space in the persistent store",
				Action: vacuumCommand,
			},
			{
				Name:  "exclude",
				Usage: "manage exclusion rules",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "add a glob exclusion pattern",
						ArgsUsage: "<pattern>",
						Action:    excludeAddCommand,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("fsieve: %v", err)
		os.Exit(1)
	}
}

func openEngine(root string) (*engine.Engine, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return engine.New(abs)
}

func requireArg(c *cli.Context, what string) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("missing %s argument", what)
	}
	return c.Args().First(), nil
}

func indexCommand(c *cli.Context) error {
	root, err := requireArg(c, "<root>")
	if err != nil {
		return err
	}

	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	count, err := e.IndexDirectory(c.Context, root, consoleProgress{})
	if err != nil {
		return err
	}
	color.Green("indexed %d files", count)
	return nil
}

func updateCommand(c *cli.Context) error {
	root, err := requireArg(c, "<root>")
	if err != nil {
		return err
	}

	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.UpdateIndex(c.Context, root)
	if err != nil {
		return err
	}
	color.Green("added %d, updated %d, removed %d", stats.Added, stats.Updated, stats.Removed)
	return nil
}

func searchCommand(c *cli.Context) error {
	line, err := requireArg(c, "<query-line>")
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}
	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	results, err := e.Search(c.Context, line)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s  %s\n", color.CyanString("%.3f", r.Score), r.File.Path)
	}
	color.Green("%d result(s)", len(results))
	return nil
}

func watchCommand(c *cli.Context) error {
	root, err := requireArg(c, "<root>")
	if err != nil {
		return err
	}

	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.IndexDirectory(c.Context, root, consoleProgress{}); err != nil {
		return err
	}
	if err := e.StartWatching(root); err != nil {
		return err
	}
	color.Green("watching %s (ctrl-c to stop)", root)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	return e.StopWatching()
}

func statsCommand(c *cli.Context) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.GetStats(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("files:       %d\n", stats.TotalFiles)
	fmt.Printf("directories: %d\n", stats.TotalDirectories)
	fmt.Printf("total size:  %d bytes\n", stats.TotalSizeBytes)
	fmt.Printf("on disk:     %d bytes\n", stats.SizeOnDiskBytes)
	fmt.Printf("extensions:  %d\n", stats.DistinctExtensions)
	return nil
}

func verifyCommand(c *cli.Context) error {
	root, err := requireArg(c, "<root>")
	if err != nil {
		return err
	}

	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.VerifyIndex(c.Context, root)
	if err != nil {
		return err
	}
	fmt.Printf("indexed: %d  valid: %d  outdated: %d  missing: %d  health: %.1f%%\n",
		stats.TotalIndexed, stats.Valid, stats.Outdated, stats.Missing, stats.Health())
	return nil
}

func vacuumCommand(c *cli.Context) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Vacuum(c.Context); err != nil {
		return err
	}
	color.Green("vacuum complete")
	return nil
}

func excludeAddCommand(c *cli.Context) error {
	pattern, err := requireArg(c, "<pattern>")
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}
	e, err := openEngine(root)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.AddExclusionPattern(c.Context, pattern); err != nil {
		return err
	}
	color.Green("excluded %s", pattern)
	return nil
}

type consoleProgress struct{}

func (consoleProgress) Report(p model.Progress) {
	fmt.Printf("\r%s (%d/%d, %.0f%%)   ", p.Message, p.Current, p.Total, p.Percentage)
	if p.Current >= p.Total {
		fmt.Println()
	}
}
