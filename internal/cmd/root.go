package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/runger/easybranch/internal/config"
	"github.com/runger/easybranch/internal/git"
	eblog "github.com/runger/easybranch/internal/log"
)

var (
	repositoryFlag string
	checkoutFlag   bool
	backendFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "easybranch [search]",
	Short: "Find and check out git branches with an interactive search",
	Long: `easybranch - find git branches by substring and pick one interactively

A single match is printed (or checked out with --checkout) immediately.
Several matches open a picker: type to narrow the list, Enter takes the
highlighted bottom-most match, Esc cancels. When nothing matches, the
remote is fetched and the search retried.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "easybranch: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.Flags().StringVarP(&repositoryFlag, "repository", "r", ".", "path to a git repository")
	rootCmd.Flags().BoolVarP(&checkoutFlag, "checkout", "c", false, "check out the chosen branch instead of printing it")
	rootCmd.Flags().StringVar(&backendFlag, "backend", "", "picker backend: builtin, bubbletea, or fzf (default from config)")
	_ = rootCmd.MarkFlagDirname("repository")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(versionTemplate)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backend := cfg.Picker.Backend
	if backendFlag != "" {
		if !config.IsValidBackend(backendFlag) {
			return fmt.Errorf("--backend must be builtin, bubbletea, or fzf (got: %s)", backendFlag)
		}
		backend = backendFlag
	}

	paths := config.DefaultPaths()
	logger, closeLog := openLogger(cfg, paths)
	defer closeLog()

	var search string
	if len(args) > 0 {
		search = args[0]
	}

	repo, err := filepath.Abs(repositoryFlag)
	if err != nil {
		return fmt.Errorf("resolve repository path: %w", err)
	}

	r := &runner{
		src: git.NewLister(git.Options{
			Dir:             repo,
			FetchCommand:    cfg.Git.FetchCommand,
			CheckoutCommand: cfg.Git.CheckoutCommand,
			RemotePrefixes:  cfg.Git.RemotePrefixes,
			Logger:          logger,
		}),
		choose:   newChooser(cfg, paths, backend, logger),
		out:      cmd.OutOrStdout(),
		log:      logger,
		retries:  cfg.Git.FetchRetries,
		checkout: checkoutFlag,
	}
	return r.run(cmd.Context(), search)
}

// openLogger opens the configured log file. Logging problems never stop
// the command; they only disable logging.
func openLogger(cfg *config.Config, paths *config.Paths) (*slog.Logger, func()) {
	level, err := eblog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return eblog.Discard(), func() {}
	}
	path := cfg.Log.File
	if path == "" {
		path = paths.LogFile()
	}
	logger, closeFn, err := eblog.OpenFile(path, level)
	if err != nil {
		debugLog("logging disabled: %v", err)
		return eblog.Discard(), func() {}
	}
	return logger, func() { _ = closeFn() }
}

// debugLog writes to stderr when EASYBRANCH_DEBUG=1, for problems that
// happen before or instead of the log file.
func debugLog(format string, args ...any) {
	debugLogTo(os.Stderr, format, args...)
}

func debugLogTo(w io.Writer, format string, args ...any) {
	if os.Getenv("EASYBRANCH_DEBUG") == "1" {
		fmt.Fprintf(w, "easybranch: debug: "+format+"\n", args...)
	}
}
