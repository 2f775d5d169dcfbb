package cmd

import (
	"fmt"
	"os"

	"github.com/patchdev/upsearch/config"
	"github.com/patchdev/upsearch/internal/output"
	"github.com/urfave/cli/v2"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "upsearch",
		Usage:   "Locate upstream import points in Git histories",
		Version: "1.0.0",
		Commands: []*cli.Command{
			FindCmd(),
			ListCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Target branch to search",
		},
		&cli.StringFlag{
			Name:    "pattern",
			Aliases: []string{"p"},
			Usage:   "Upstream reference pattern (e.g. upstream/*)",
		},
		&cli.StringSliceFlag{
			Name:  "remote",
			Usage: "Restrict the search to this remote (can be specified multiple times)",
		},
		&cli.BoolFlag{
			Name:  "search-tags",
			Usage: "Include tags in the upstream search",
		},
		&cli.StringFlag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   "Search for a commit message matching this pattern instead of a merge base",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Repository access backend (gogit, cli)",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.Format {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults, applying flag
// overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if branch := c.String("branch"); branch != "" {
		cfg.Search.Branch = branch
	}
	if pattern := c.String("pattern"); pattern != "" {
		cfg.Search.Pattern = pattern
	}
	if remotes := c.StringSlice("remote"); len(remotes) > 0 {
		cfg.Search.Remotes = remotes
	}
	if c.Bool("search-tags") {
		cfg.Search.SearchTags = true
	}
	if backend := c.String("backend"); backend != "" {
		cfg.Backend.Kind = config.BackendKind(backend)
	}

	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
