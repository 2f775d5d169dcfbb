package cmd

import (
	"time"

	"github.com/patchdev/upsearch/internal/git"
	"github.com/patchdev/upsearch/internal/output"
	"github.com/patchdev/upsearch/internal/search"
	"github.com/urfave/cli/v2"
)

// ListCmd returns the list command.
func ListCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.BoolFlag{
			Name:  "include-all",
			Usage: "Include commits from every merge occurrence of the starting point",
		},
		&cli.BoolFlag{
			Name:  "merges",
			Usage: "List merge commits only",
		},
		&cli.BoolFlag{
			Name:  "no-merges",
			Usage: "Skip merge commits",
		},
		&cli.BoolFlag{
			Name:  "reverse",
			Usage: "List commits oldest first",
		},
		&cli.BoolFlag{
			Name:  "sha1-only",
			Usage: "Print bare commit ids",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of commits to show (0 = all)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List commits between the starting point and the branch tip",
		Flags:   flags,
		Action:  listAction,
	}
}

func listAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	if c.Bool("merges") {
		ctx.Searcher.AddFilter(search.NewMergeCommitFilter())
	}
	if c.Bool("no-merges") {
		ctx.Searcher.AddFilter(search.NewNoMergeCommitFilter())
	}
	if c.Bool("reverse") {
		// Last stage: reversing drains the chain.
		ctx.Searcher.AddFilter(search.NewReverseCommitFilter())
	}

	var commits []*git.Commit
	if upstream, ok := ctx.Searcher.(*search.UpstreamMergeBaseSearcher); ok && c.Bool("include-all") {
		commits, err = upstream.ListAll(c.Context)
	} else {
		commits, err = ctx.Searcher.List(c.Context)
	}
	if err != nil {
		return err
	}

	var origin *git.Commit
	if s, ok := ctx.Searcher.(interface{ Commit() *git.Commit }); ok {
		origin = s.Commit()
	}

	report := &output.Report{
		RepoPath:    ctx.RepoPath,
		Branch:      ctx.Branch,
		Origin:      origin,
		Commits:     commits,
		GeneratedAt: time.Now(),
	}

	opts := OutputOptions(c, ctx.Config)
	return output.NewReportWriter(opts.Format).Write(report, opts)
}
