package cmd

import (
	"fmt"

	"github.com/patchdev/upsearch/config"
	"github.com/patchdev/upsearch/internal/git"
	"github.com/patchdev/upsearch/internal/output"
	"github.com/patchdev/upsearch/internal/search"
	"github.com/urfave/cli/v2"
)

// CommandContext holds common state for command execution: loaded
// configuration, the opened backend and the searcher strategy picked from the
// flags.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	Branch   string
	Backend  git.Backend
	Searcher search.Searcher
}

// NewCommandContext creates a context from CLI flags. It loads configuration,
// opens the repository backend and constructs the searcher: a message
// searcher when --message is given, the upstream merge-base searcher
// otherwise.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	backend, err := openBackend(cfg.Backend.Kind, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	branch := cfg.Search.Branch
	var searcher search.Searcher
	if pattern := c.String("message"); pattern != "" {
		searcher = search.NewCommitMessageSearcher(backend, branch, pattern)
	} else {
		searcher = search.NewUpstreamMergeBaseSearcher(backend, branch, search.UpstreamOptions{
			Pattern:    cfg.Search.Pattern,
			SearchTags: cfg.Search.SearchTags,
			Remotes:    cfg.Search.Remotes,
		})
	}

	return &CommandContext{
		Config:   cfg,
		RepoPath: repoPath,
		Branch:   branch,
		Backend:  backend,
		Searcher: searcher,
	}, nil
}

func openBackend(kind config.BackendKind, repoPath string) (git.Backend, error) {
	switch kind {
	case config.BackendCLI:
		return git.NewCLIBackend(repoPath), nil
	case config.BackendGoGit, "":
		return git.OpenGoGit(repoPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// OutputOptions creates output options from CLI flags and config defaults.
func OutputOptions(c *cli.Context, cfg *config.Config) output.Options {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	top := c.Int("top")
	if top == 0 {
		top = cfg.Output.Top
	}
	return output.Options{
		Format:     getOutputFormat(format),
		Top:        top,
		OutputPath: c.String("output"),
		IDOnly:     c.Bool("sha1-only"),
	}
}
