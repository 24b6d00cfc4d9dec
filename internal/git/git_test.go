package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfPreCommit skips the test if running inside a pre-commit hook.
// Pre-commit hooks hold git locks that interfere with our git tests.
func skipIfPreCommit(t *testing.T) {
	t.Helper()
	if os.Getenv("PRE_COMMIT") != "" ||
		os.Getenv("GIT_DIR") != "" ||
		os.Getenv("GIT_INDEX_FILE") != "" {
		t.Skip("skipping: test doesn't work reliably during pre-commit hooks")
	}
}

// gitEnv isolates test git invocations from the user's configuration.
func gitEnv(home, date string) []string {
	env := append(os.Environ(),
		"HOME="+home,
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL="+filepath.Join(home, "gitconfig"),
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	if date != "" {
		env = append(env, "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	}
	return env
}

func runGit(t *testing.T, dir, date string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = gitEnv(t.TempDir(), date)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
}

// commitOn creates branch (if needed) and an empty commit dated date.
func commitOn(t *testing.T, dir, branch, date string) {
	t.Helper()
	runGit(t, dir, date, "checkout", "-q", "-B", branch)
	runGit(t, dir, date, "commit", "-q", "--allow-empty", "-m", branch)
}

// createUpstream creates a repository whose branches have increasing
// committer dates: main, develop, feature/foo, feature/bar.
func createUpstream(t *testing.T) string {
	t.Helper()
	skipIfPreCommit(t)
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	runGit(t, dir, "", "init", "-q")
	runGit(t, dir, "", "symbolic-ref", "HEAD", "refs/heads/main")
	commitOn(t, dir, "main", "2020-01-01T00:00:00Z")
	commitOn(t, dir, "develop", "2020-01-02T00:00:00Z")
	commitOn(t, dir, "feature/foo", "2020-01-03T00:00:00Z")
	commitOn(t, dir, "feature/bar", "2020-01-04T00:00:00Z")
	runGit(t, dir, "", "checkout", "-q", "main")
	return dir
}

// cloneRepo clones upstream so its branches appear as origin/*.
func cloneRepo(t *testing.T, upstream string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "clone")
	runGit(t, filepath.Dir(dir), "", "clone", "-q", upstream, dir)
	return dir
}

func newTestLister(dir string) *Lister {
	return NewLister(Options{
		Dir:             dir,
		FetchCommand:    "git fetch --quiet",
		CheckoutCommand: "git checkout",
		RemotePrefixes:  []string{"origin/"},
	})
}

func TestBranches_RecencyOrderWithoutCurrent(t *testing.T) {
	clone := cloneRepo(t, createUpstream(t))
	l := newTestLister(clone)

	branches, err := l.Branches(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"develop", "feature/foo", "feature/bar"}, branches)
}

func TestBranches_Search(t *testing.T) {
	clone := cloneRepo(t, createUpstream(t))
	l := newTestLister(clone)

	branches, err := l.Branches(context.Background(), "FEA")
	require.NoError(t, err)
	assert.Equal(t, []string{"feature/foo", "feature/bar"}, branches)

	branches, err = l.Branches(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, branches)
}

func TestBranches_LocalAndRemoteDeduplicated(t *testing.T) {
	clone := cloneRepo(t, createUpstream(t))
	runGit(t, clone, "", "checkout", "-q", "develop")
	runGit(t, clone, "", "checkout", "-q", "main")
	l := newTestLister(clone)

	branches, err := l.Branches(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(branches, "develop"))
}

func TestBranches_DetachedHeadExcluded(t *testing.T) {
	upstream := createUpstream(t)
	runGit(t, upstream, "", "checkout", "-q", "--detach", "HEAD")
	l := newTestLister(upstream)

	current, err := l.Current(context.Background())
	require.NoError(t, err)
	assert.Empty(t, current)

	branches, err := l.Branches(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "develop", "feature/foo", "feature/bar"}, branches)

	branches, err = l.Branches(context.Background(), "head")
	require.NoError(t, err)
	assert.Empty(t, branches)
}

func countOf(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}

func TestCurrent(t *testing.T) {
	upstream := createUpstream(t)
	l := newTestLister(upstream)

	current, err := l.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", current)
}

func TestFetch_PicksUpNewBranches(t *testing.T) {
	upstream := createUpstream(t)
	clone := cloneRepo(t, upstream)
	commitOn(t, upstream, "hotfix/urgent", "2020-01-05T00:00:00Z")
	l := newTestLister(clone)

	before, err := l.Branches(context.Background(), "hotfix")
	require.NoError(t, err)
	assert.Empty(t, before)

	_, err = l.Fetch(context.Background())
	require.NoError(t, err)

	after, err := l.Branches(context.Background(), "hotfix")
	require.NoError(t, err)
	assert.Equal(t, []string{"hotfix/urgent"}, after)
}

func TestCheckout(t *testing.T) {
	clone := cloneRepo(t, createUpstream(t))
	l := newTestLister(clone)

	out, err := l.Checkout(context.Background(), "feature/bar")
	require.NoError(t, err)
	assert.Contains(t, out, "feature/bar")

	current, err := l.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "feature/bar", current)
}

func TestCheckout_UnknownBranch(t *testing.T) {
	clone := cloneRepo(t, createUpstream(t))
	l := newTestLister(clone)

	_, err := l.Checkout(context.Background(), "does-not-exist")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.NotZero(t, cmdErr.Status)
	assert.Contains(t, cmdErr.Error(), "git checkout does-not-exist")
}

func TestBranches_NotARepository(t *testing.T) {
	skipIfPreCommit(t)
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	_, err := newTestLister(dir).Branches(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestRunConfigured_BadCommand(t *testing.T) {
	l := NewLister(Options{Dir: t.TempDir()})

	_, err := l.runConfigured(context.Background(), `git "unterminated`)
	assert.ErrorContains(t, err, "parse command")

	_, err = l.runConfigured(context.Background(), "   ")
	assert.ErrorContains(t, err, "empty command")
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Args: []string{"git", "fetch"}, Status: 128, Stderr: "fatal: no remote\n"}
	assert.Equal(t, "git fetch: fatal: no remote", err.Error())

	err = &CommandError{Args: []string{"git", "fetch"}, Status: 1}
	assert.Equal(t, "git fetch: exit status 1", err.Error())
}

func TestStripRemote(t *testing.T) {
	l := NewLister(Options{RemotePrefixes: []string{"origin/", "upstream/"}})
	assert.Equal(t, "main", l.stripRemote("origin/main"))
	assert.Equal(t, "feature/x", l.stripRemote("upstream/feature/x"))
	assert.Equal(t, "feature/origin/x", l.stripRemote("feature/origin/x"))
}
