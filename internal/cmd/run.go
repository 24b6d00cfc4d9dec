package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	eblog "github.com/runger/easybranch/internal/log"
)

// ErrBranchNotFound is returned when no branch matches the search, even
// after fetching.
var ErrBranchNotFound = errors.New("no branch found")

// branchSource is the part of git.Lister the command needs.
type branchSource interface {
	Branches(ctx context.Context, search string) ([]string, error)
	Fetch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, branch string) (string, error)
}

// chooseFunc lets the user pick one of candidates. ok is false when the
// user cancelled.
type chooseFunc func(ctx context.Context, candidates []string) (choice string, ok bool, err error)

// runner finds a branch, narrows it down with a picker when needed, and
// prints or checks it out.
type runner struct {
	src      branchSource
	choose   chooseFunc
	out      io.Writer
	log      *slog.Logger
	retries  int
	checkout bool
}

func (r *runner) run(ctx context.Context, search string) error {
	branches, err := r.findBranches(ctx, search)
	if err != nil {
		return err
	}

	var branch string
	switch len(branches) {
	case 0:
		if search == "" {
			return ErrBranchNotFound
		}
		return fmt.Errorf("%w matching '%s'", ErrBranchNotFound, search)
	case 1:
		branch = branches[0]
	default:
		choice, ok, err := r.choose(ctx, branches)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		branch = choice
	}

	return r.finish(ctx, branch)
}

// findBranches lists branches matching search, fetching and retrying up to
// r.retries times while the list is empty.
func (r *runner) findBranches(ctx context.Context, search string) ([]string, error) {
	for attempt := 0; ; attempt++ {
		branches, err := r.src.Branches(ctx, search)
		if err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}
		if len(branches) > 0 || attempt >= r.retries {
			return branches, nil
		}
		eblog.LogFetchRetry(r.log, search, attempt+1)
		if _, err := r.src.Fetch(ctx); err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}
}

func (r *runner) finish(ctx context.Context, branch string) error {
	if !r.checkout {
		_, err := fmt.Fprintln(r.out, branch)
		return err
	}

	output, err := r.src.Checkout(ctx, branch)
	if err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	_, err = io.WriteString(r.out, output)
	return err
}
