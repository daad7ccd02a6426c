package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kinnison/git-sync/cmd/ui"
	"github.com/kinnison/git-sync/pkg/common/logger"
	"github.com/kinnison/git-sync/pkg/config"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	CommitSHA = "unknown"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFailure = 1
	exitPartial = 2
)

// app carries the state of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	backend    string
	logLevel   string
	logFormat  string
	verbose    bool

	settings *config.Settings
	exitCode int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: &lockedWriter{w: stderr}}

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(a.stderr)

	if e := root.ExecuteContext(ctx); e != nil {
		fmt.Fprintln(a.stderr, ui.ErrorMessage(e.Error()))
		return exitFailure
	}
	return a.exitCode
}

func newRootCmd(a *app) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "git-sync [flags] <source> <target>",
		Short: "Copy the committed history of one repository into another",
		Long: `git-sync copies every object reachable from the source references that
the target lacks, re-verifying each one, and then moves the target
references with a compare-and-set per reference.

Repositories may be native (.source), git working copies (.git) or bare
git directories.`,
		Version:       fmt.Sprintf("%s (built: %s, commit: %s)", Version, BuildTime, CommitSHA),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadSettings(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd.Context(), args[0], args[1], opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Configuration file (TOML)")
	pf.StringVar(&a.backend, "backend", "auto", "Storage backend (auto, native, git)")
	pf.StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "text", "Log format (text, json)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output (sets log level to debug)")

	f := cmd.Flags()
	f.BoolVar(&opts.initTarget, "init-target", false, "Create the target repository when it does not exist")
	f.StringArrayVar(&opts.refs, "ref", nil, "Only transfer references matching this pattern (repeatable)")
	f.IntVar(&opts.workers, "workers", 0, "Objects copied in parallel (0 means one per CPU)")
	f.BoolVar(&opts.fullWalk, "full-walk", false, "Walk objects the target already has to repair gaps")
	f.BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr while copying objects")
	f.StringVar(&opts.output, "output", outputTable, "Report format (table, plain)")

	cmd.AddCommand(newVerifyCmd(a))
	return cmd
}

// loadSettings merges the configuration files with the flags the user
// actually set, then installs the logger.
func (a *app) loadSettings(cmd *cobra.Command) error {
	var opts []config.ManagerOption
	if a.configFile != "" {
		path, e := scpath.NewAbsolutePath(a.configFile)
		if e != nil {
			return e
		}
		opts = append(opts, config.WithFile(path))
	}

	m := config.NewManager(opts...)
	if e := m.Load(cmd.Context()); e != nil {
		return e
	}

	// Only flags the user set override the files. Sync-only flags are
	// absent on other commands and Lookup returns nil for them.
	flags := cmd.Flags()
	fromFlag := func(name, key string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			m.SetCommandLine(key, f.Value.String())
		}
	}
	fromFlag("backend", config.KeyBackend)
	fromFlag("log-level", config.KeyLogLevel)
	fromFlag("log-format", config.KeyLogFormat)
	fromFlag("workers", config.KeyWorkers)
	fromFlag("full-walk", config.KeyFullWalk)
	if flags.Changed("ref") {
		if values, e := flags.GetStringArray("ref"); e == nil {
			m.SetCommandLine(config.KeyRefs, values...)
		}
	}
	if a.verbose {
		m.SetCommandLine(config.KeyLogLevel, logger.LevelDebug.String())
	}

	settings, e := m.Settings()
	if e != nil {
		return e
	}
	a.settings = settings
	a.setupLogging()
	return nil
}

func (a *app) setupLogging() {
	cfg := a.settings.LoggerConfig()
	cfg.Output = a.stderr
	logger.Default = logger.New(cfg)
}

// lockedWriter serialises writes from log handlers and the progress bar.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
