//go:build !windows

// Package expect drives the easybranch binary on a pseudo-terminal using
// go-expect, so the picker can be tested the way a user sees it.
package expect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"syscall"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"golang.org/x/sys/unix"
)

// Key constants for special keys (ANSI escape sequences)
const (
	KeyUp        = "\x1b[A"
	KeyDown      = "\x1b[B"
	KeyEscape    = "\x1b"
	KeyEnter     = "\r"
	KeyBackspace = "\x7f"
	KeyCtrlC     = "\x03"
)

// Session is one easybranch process whose controlling terminal is a
// go-expect console. Stdout is captured separately because that is where
// the chosen branch is printed.
type Session struct {
	Console *expect.Console
	Timeout time.Duration
	cmd     *exec.Cmd
	stdout  bytes.Buffer
	done    chan error
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	timeout    time.Duration
	env        []string
	rows, cols uint16
	showOutput bool
}

// WithTimeout sets the default timeout for expect operations.
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithEnv adds environment variables to the process.
func WithEnv(env ...string) SessionOption {
	return func(c *sessionConfig) {
		c.env = append(c.env, env...)
	}
}

// WithSize sets the terminal size.
func WithSize(rows, cols uint16) SessionOption {
	return func(c *sessionConfig) {
		c.rows, c.cols = rows, cols
	}
}

// WithOutput copies terminal output to stdout for debugging.
func WithOutput(show bool) SessionOption {
	return func(c *sessionConfig) {
		c.showOutput = show
	}
}

// NewSession starts binary with args in dir.
func NewSession(binary, dir string, args []string, opts ...SessionOption) (*Session, error) {
	cfg := &sessionConfig{
		timeout: 5 * time.Second,
		rows:    24,
		cols:    80,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var consoleOpts []expect.ConsoleOpt
	consoleOpts = append(consoleOpts, expect.WithDefaultTimeout(cfg.timeout))
	if cfg.showOutput {
		consoleOpts = append(consoleOpts, expect.WithStdout(os.Stdout))
	}

	console, err := expect.NewConsole(consoleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create console: %w", err)
	}

	ws := &unix.Winsize{Row: cfg.rows, Col: cfg.cols}
	if err := unix.IoctlSetWinsize(int(console.Tty().Fd()), unix.TIOCSWINSZ, ws); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to set terminal size: %w", err)
	}

	s := &Session{
		Console: console,
		Timeout: cfg.timeout,
		done:    make(chan error, 1),
	}

	cmd := exec.Command(binary, args...) //nolint:gosec // G204: binary is built by the test
	cmd.Dir = dir
	cmd.Stdin = console.Tty()
	cmd.Stdout = &s.stdout
	cmd.Stderr = console.Tty()
	// The console becomes the controlling terminal so /dev/tty resolves to it.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, cfg.env...)

	if err := cmd.Start(); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to start %s: %w", binary, err)
	}
	s.cmd = cmd
	go func() { s.done <- cmd.Wait() }()

	return s, nil
}

// Send sends text to the terminal.
func (s *Session) Send(text string) error {
	_, err := s.Console.Send(text)
	return err
}

// SendKey sends a special key (use Key* constants).
func (s *Session) SendKey(key string) error {
	return s.Send(key)
}

// Expect waits for an exact string match in the output.
func (s *Session) Expect(str string) (string, error) {
	return s.Console.ExpectString(str)
}

// ExpectRegex waits for a regex pattern match in the output.
func (s *Session) ExpectRegex(pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex: %w", err)
	}
	return s.Console.Expect(expect.Regexp(re))
}

// Wait waits for the process to exit and returns what it printed on
// stdout. Terminal output is drained meanwhile so the process never
// blocks on a full pty.
func (s *Session) Wait() (string, error) {
	go func() {
		_, _ = s.Console.Expect(expect.EOF, expect.PTSClosed, expect.WithTimeout(s.Timeout))
	}()

	select {
	case err := <-s.done:
		return s.stdout.String(), err
	case <-time.After(s.Timeout):
		_ = s.cmd.Process.Kill()
		<-s.done
		return s.stdout.String(), errors.New("timed out waiting for exit")
	}
}

// Close kills the process if still running and closes the console.
func (s *Session) Close() error {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill() // already exited is fine
	}
	return s.Console.Close()
}

// BuildBinary compiles ./cmd/easybranch from the module root into dir.
func BuildBinary(dir string) (string, error) {
	root, err := moduleRoot()
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, "easybranch")
	cmd := exec.Command("go", "build", "-o", out, "./cmd/easybranch")
	cmd.Dir = root
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build: %w: %s", err, output)
	}
	return out, nil
}

func moduleRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", errors.New("go.mod not found")
		}
	}
}

// SkipIfShort skips the test if running in short mode.
func SkipIfShort(t testing.TB, reason string) {
	if testing.Short() {
		t.Skip("skipping in short mode: " + reason)
	}
}

// SkipIfMissing skips the test if tool is not on PATH.
func SkipIfMissing(t testing.TB, tool string) {
	if _, err := exec.LookPath(tool); err != nil {
		t.Skip(tool + " not available, skipping")
	}
}
