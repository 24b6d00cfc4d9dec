package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"github.com/runger/easybranch/internal/config"
	eblog "github.com/runger/easybranch/internal/log"
	"github.com/runger/easybranch/internal/picker"
	"github.com/runger/easybranch/internal/tty"
)

// fzf exit statuses that mean "nothing chosen" rather than failure.
const (
	fzfExitNoMatch   = 1
	fzfExitCancelled = 130
)

// newChooser returns the chooseFunc for backend. Each call checks that a
// usable terminal exists, takes the picker lock, runs the backend and logs
// the session.
func newChooser(cfg *config.Config, paths *config.Paths, backend string, logger *slog.Logger) chooseFunc {
	return func(ctx context.Context, candidates []string) (string, bool, error) {
		if err := checkTTY(); err != nil {
			return "", false, err
		}
		if err := checkTERM(); err != nil {
			return "", false, err
		}
		if err := paths.EnsureCacheDir(); err != nil {
			return "", false, fmt.Errorf("failed to create cache directory: %w", err)
		}
		lockFd, err := acquireLock(paths.LockFile())
		if err != nil {
			return "", false, err
		}
		defer releaseLock(lockFd)

		sessionID := uuid.NewString()
		logger.Debug("pick started", "session_id", sessionID, "backend", backend, "candidates", len(candidates))

		start := time.Now()
		choice, ok, err := dispatchBackend(ctx, backend, cfg, candidates)
		eblog.LogPick(logger, eblog.PickInfo{
			SessionID:  sessionID,
			Backend:    backend,
			Candidates: len(candidates),
			Selected:   ok,
			Duration:   time.Since(start),
			Err:        err,
		})
		return choice, ok, err
	}
}

// dispatchBackend executes the selected backend.
func dispatchBackend(ctx context.Context, backend string, cfg *config.Config, candidates []string) (string, bool, error) {
	switch backend {
	case config.BackendFzf:
		return dispatchFzf(ctx, cfg, candidates)
	case config.BackendBubbleTea:
		return dispatchBubbleTea(ctx, cfg, candidates)
	default:
		return dispatchBuiltin(ctx, cfg, candidates)
	}
}

// dispatchBuiltin runs the inline picker on /dev/tty.
func dispatchBuiltin(ctx context.Context, cfg *config.Config, candidates []string) (string, bool, error) {
	t, err := tty.Open()
	if err != nil {
		return "", false, err
	}
	defer t.Close()

	r := lipgloss.NewRenderer(t.File())
	r.SetColorProfile(t.ColorProfile())

	return picker.Pick(ctx, t, picker.Options{
		Prompt: cfg.Picker.Prompt,
		Style:  picker.DefaultStyle(r, cfg.Picker.HighlightColor),
	}, candidates)
}

// dispatchBubbleTea runs the full-screen Bubble Tea picker on /dev/tty.
func dispatchBubbleTea(ctx context.Context, cfg *config.Config, candidates []string) (string, bool, error) {
	// Open /dev/tty for TUI input/output since stdout is used for data.
	f, err := os.OpenFile(tty.DevicePath, os.O_RDWR, 0)
	if err != nil {
		return "", false, fmt.Errorf("cannot open %s: %w", tty.DevicePath, err)
	}
	defer f.Close()

	// Detect the colour profile from the tty: stdout is often a pipe.
	r := lipgloss.NewRenderer(f)
	r.SetColorProfile(termenv.NewOutput(f).ColorProfile())

	model := picker.NewModel(picker.Options{
		Prompt: cfg.Picker.Prompt,
		Style:  picker.DefaultStyle(r, cfg.Picker.HighlightColor),
	}, candidates)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(f),
		tea.WithOutput(f),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", false, fmt.Errorf("TUI error: %w", err)
	}

	m, ok := finalModel.(picker.Model)
	if !ok {
		return "", false, errors.New("unexpected model type")
	}
	choice, selected := m.Result()
	return choice, selected, nil
}

// dispatchFzf pipes the candidates through fzf, falling back to the builtin
// picker when fzf is not on PATH.
func dispatchFzf(ctx context.Context, cfg *config.Config, candidates []string) (string, bool, error) {
	path, err := exec.LookPath("fzf")
	if err != nil {
		debugLog("fzf not found on PATH, falling back to builtin")
		return dispatchBuiltin(ctx, cfg, candidates)
	}

	cmd := exec.CommandContext(ctx, path, fzfArgs(cfg.Picker.Prompt)...)
	cmd.Stdin = strings.NewReader(strings.Join(candidates, "\n"))
	cmd.Stderr = os.Stderr // fzf draws its TUI on the terminal via stderr/tty.

	output, err := cmd.Output()
	return fzfResult(string(output), err)
}

// fzfArgs builds the fzf command line. Candidates arrive oldest first;
// --tac puts the newest at the cursor, matching the builtin picker.
func fzfArgs(prompt string) []string {
	args := []string{"--no-sort", "--exact", "--tac"}
	if prompt != "" {
		args = append(args, "--header", prompt)
	}
	return args
}

// fzfResult interprets fzf's output and exit status.
func fzfResult(output string, err error) (string, bool, error) {
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case fzfExitNoMatch, fzfExitCancelled:
				return "", false, nil
			}
		}
		return "", false, fmt.Errorf("fzf: %w", err)
	}
	choice := strings.TrimRight(output, "\n")
	if choice == "" {
		return "", false, nil
	}
	return choice, true, nil
}
