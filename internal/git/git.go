// Package git discovers branch names and runs the git commands easybranch
// needs around the picker: listing, fetching and checking out.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	eblog "github.com/runger/easybranch/internal/log"
)

// ErrNotARepository is returned when the directory is not inside a git
// work tree.
var ErrNotARepository = errors.New("not a git repository")

// CommandError describes a git command that exited unsuccessfully.
type CommandError struct {
	Args   []string
	Status int
	Stderr string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Args, " "), msg)
}

// Options configures a Lister.
type Options struct {
	Dir             string   // Repository path
	FetchCommand    string   // e.g. "git fetch"
	CheckoutCommand string   // e.g. "git checkout"; the branch is appended
	RemotePrefixes  []string // e.g. "origin/"
	Logger          *slog.Logger
}

// Lister lists and manipulates the branches of one repository.
type Lister struct {
	opts Options
	log  *slog.Logger
}

// NewLister creates a Lister for opts.Dir.
func NewLister(opts Options) *Lister {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	logger := opts.Logger
	if logger == nil {
		logger = eblog.Discard()
	}
	return &Lister{opts: opts, log: logger}
}

// Current returns the checked out branch, or "" on a detached HEAD.
func (l *Lister) Current(ctx context.Context) (string, error) {
	out, err := l.git(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Branches returns local and remote branch names ordered by committer
// date, oldest first. Remote prefixes are stripped and duplicates removed
// keeping the first occurrence; HEAD, bare remote names and the current
// branch are left out. A non-empty search keeps only names containing it,
// ignoring case.
func (l *Lister) Branches(ctx context.Context, search string) ([]string, error) {
	current, err := l.Current(ctx)
	if err != nil {
		return nil, err
	}
	out, err := l.git(ctx, "-P", "branch", "-a", "--format=%(refname:short)", "--sort=committerdate")
	if err != nil {
		return nil, err
	}

	remotes := make(map[string]bool, len(l.opts.RemotePrefixes))
	for _, p := range l.opts.RemotePrefixes {
		remotes[strings.TrimSuffix(p, "/")] = true
	}

	seen := make(map[string]bool)
	needle := strings.ToLower(search)
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		name := l.stripRemote(strings.TrimSpace(line))
		if name == "" || name == "HEAD" || name == current || remotes[name] || seen[name] {
			continue
		}
		// Detached HEAD shows up as "(HEAD detached at <rev>)".
		if strings.HasPrefix(name, "(") {
			continue
		}
		seen[name] = true
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		branches = append(branches, name)
	}
	return branches, nil
}

func (l *Lister) stripRemote(name string) string {
	for _, p := range l.opts.RemotePrefixes {
		if trimmed, ok := strings.CutPrefix(name, p); ok {
			return trimmed
		}
	}
	return name
}

// Fetch runs the configured fetch command.
func (l *Lister) Fetch(ctx context.Context) (string, error) {
	return l.runConfigured(ctx, l.opts.FetchCommand)
}

// Checkout runs the configured checkout command for branch and returns
// its combined output.
func (l *Lister) Checkout(ctx context.Context, branch string) (string, error) {
	return l.runConfigured(ctx, l.opts.CheckoutCommand, branch)
}

// runConfigured splits a configured command line and runs it in the
// repository with extra appended as separate arguments.
func (l *Lister) runConfigured(ctx context.Context, command string, extra ...string) (string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return "", fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	argv = append(argv, extra...)
	stdout, stderr, err := l.run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return "", err
	}
	// git reports progress such as "Switched to branch" on stderr.
	return stdout + stderr, nil
}

func (l *Lister) git(ctx context.Context, args ...string) (string, error) {
	stdout, _, err := l.run(ctx, "git", args...)
	return stdout, err
}

// run executes name in the repository.
func (l *Lister) run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // command comes from user config
	cmd.Dir = l.opts.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	argv := append([]string{name}, args...)
	if err != nil {
		err = classify(argv, stderr.String(), err)
		eblog.LogGitCommand(l.log, argv, l.opts.Dir, err)
		return "", "", err
	}
	eblog.LogGitCommand(l.log, argv, l.opts.Dir, nil)
	return stdout.String(), stderr.String(), nil
}

func classify(argv []string, stderr string, err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	if strings.Contains(stderr, "not a git repository") {
		return ErrNotARepository
	}
	return &CommandError{Args: argv, Status: exitErr.ExitCode(), Stderr: stderr}
}
