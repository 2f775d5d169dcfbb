package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"os/exec"
	"strings"
	"time"
)

// Commit fields are separated by the unit separator byte so messages with
// tabs or quotes parse reliably: hash, parents, author name, author email,
// committer date, full message body. %B spans multiple lines, so log records
// are NUL-terminated via -z rather than newline-terminated.
const logFormat = "%H%x1f%P%x1f%aN%x1f%aE%x1f%cI%x1f%B"

// CLIBackend implements Backend by shelling out to the git executable. Unlike
// GoGitBackend it streams ListRange straight off the subprocess pipe, which
// keeps very large ranges out of memory when the consumer stops early.
type CLIBackend struct {
	repoPath string
}

// NewCLIBackend creates a backend for the repository at path.
func NewCLIBackend(repoPath string) *CLIBackend {
	return &CLIBackend{repoPath: repoPath}
}

// ResolveRefs lists full reference names matching the patterns via
// git for-each-ref, which anchors glob patterns per path segment.
func (b *CLIBackend) ResolveRefs(ctx context.Context, patterns []string) ([]string, error) {
	args := append([]string{"for-each-ref", "--format=%(refname)"}, patterns...)
	out, err := b.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// TipsOf resolves reference names to tip commit ids. --min-parents=1 drops
// root commits; rev-list already deduplicates.
func (b *CLIBackend) TipsOf(ctx context.Context, refNames []string) ([]string, error) {
	if len(refNames) == 0 {
		return nil, nil
	}
	args := append([]string{"rev-list", "--min-parents=1", "--no-walk"}, refNames...)
	out, err := b.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ParentsOf returns the direct parent ids of a commit.
func (b *CLIBackend) ParentsOf(ctx context.Context, id string) ([]string, error) {
	out, err := b.run(ctx, "rev-list", "--parents", "--max-count=1", id)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return nil, fmt.Errorf("lookup commit %s: empty rev-list output", id)
	}
	return fields[1:], nil
}

// PruneReachable lists commits reachable from the candidates but not from the
// exclusion set. Argument order matters: rev-list applies --not to everything
// that follows it.
func (b *CLIBackend) PruneReachable(ctx context.Context, candidates, excludeReachableFrom []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	args := append([]string{"rev-list"}, candidates...)
	if len(excludeReachableFrom) > 0 {
		args = append(args, "--not")
		args = append(args, excludeReachableFrom...)
	}
	out, err := b.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// MergeBase computes the merge base of the branch tip and the given commit.
// git merge-base exits 1 when the histories are unrelated; that maps to
// ok=false, not an error.
func (b *CLIBackend) MergeBase(ctx context.Context, branch, id string) (string, bool, error) {
	out, err := b.run(ctx, "merge-base", branch, id)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	base := strings.TrimSpace(out)
	if base == "" {
		return "", false, nil
	}
	return base, true, nil
}

// MostRecentTopologically orders the given commits topologically without
// walking and returns the newest.
func (b *CLIBackend) MostRecentTopologically(ctx context.Context, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("no commits to order")
	}
	args := append([]string{"rev-list", "--topo-order", "--max-count=1", "--no-walk"}, ids...)
	out, err := b.run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FindCommitByMessage returns the most recent commit on branch whose message
// matches the extended-regexp pattern.
func (b *CLIBackend) FindCommitByMessage(ctx context.Context, branch, pattern string) (*Commit, bool, error) {
	out, err := b.run(ctx, "log", "-z", "--max-count=1", "--extended-regexp",
		"--grep="+pattern, "--format="+logFormat, branch)
	if err != nil {
		return nil, false, err
	}
	record, _, _ := strings.Cut(out, "\x00")
	if strings.TrimSpace(record) == "" {
		return nil, false, nil
	}
	commit, err := parseLogRecord(record)
	if err != nil {
		return nil, false, err
	}
	return commit, true, nil
}

// CommitByID loads a single commit.
func (b *CLIBackend) CommitByID(ctx context.Context, id string) (*Commit, error) {
	out, err := b.run(ctx, "log", "-z", "--max-count=1", "--format="+logFormat, id)
	if err != nil {
		return nil, err
	}
	record, _, _ := strings.Cut(out, "\x00")
	return parseLogRecord(record)
}

// ListRange streams fromID..branch restricted to the direct ancestry path,
// newest first in topological order. The subprocess is killed as soon as the
// consumer stops pulling.
func (b *CLIBackend) ListRange(ctx context.Context, fromID, branch string) (iter.Seq[*Commit], func() error) {
	var streamErr error
	seq := func(yield func(*Commit) bool) {
		cmd := exec.CommandContext(ctx, "git", "-C", b.repoPath, "log",
			"-z", "--topo-order", "--ancestry-path", "--format="+logFormat,
			fromID+".."+branch)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			streamErr = fmt.Errorf("git log: %w", err)
			return
		}
		if err := cmd.Start(); err != nil {
			streamErr = fmt.Errorf("git log: %w (%w)", err, ErrUnavailable)
			return
		}

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanRecords)
		for scanner.Scan() {
			record := scanner.Text()
			if strings.TrimSpace(record) == "" {
				continue
			}
			commit, err := parseLogRecord(record)
			if err != nil {
				streamErr = err
				break
			}
			if !yield(commit) {
				// Consumer stopped early; discard the rest of the range.
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
				return
			}
		}
		if streamErr == nil {
			streamErr = scanner.Err()
		}
		if err := cmd.Wait(); err != nil && streamErr == nil {
			streamErr = fmt.Errorf("git log: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
	}
	return seq, func() error { return streamErr }
}

// run executes a git subcommand in the repository and returns its stdout.
func (b *CLIBackend) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", b.repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git %s: %w (%w)", args[0], err, ErrUnavailable)
	}
	return stdout.String(), nil
}

// scanRecords splits NUL-terminated git log output into records.
func scanRecords(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseLogRecord(record string) (*Commit, error) {
	fields := strings.SplitN(record, "\x1f", 6)
	if len(fields) < 6 {
		return nil, fmt.Errorf("unexpected git log format: %q", record)
	}
	when, err := time.Parse(time.RFC3339, fields[4])
	if err != nil {
		return nil, fmt.Errorf("parse committer date: %w", err)
	}
	return &Commit{
		ID:      fields[0],
		Parents: strings.Fields(fields[1]),
		Author:  AuthorInfo{Name: fields[2], Email: fields[3]},
		When:    when,
		Message: strings.TrimRight(fields[5], "\n"),
	}, nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
