package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/di"
	"github.com/pausememo/pausememo/internal/logger"
)

// app owns the command tree and the container the commands run against.
type app struct {
	root *cobra.Command

	envFile  string
	dataPath string
	backend  string
	format   string
	verbose  bool

	injector *do.RootScope
	svc      *di.ServiceSet
}

func newApp() *app {
	a := &app{}

	a.root = &cobra.Command{
		Use:           "pmctl",
		Short:         "pmctl - log interruptions and get back to work",
		Long:          "pmctl captures why you stopped working, reminds you to come back, and summarizes where your time went.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	flags := a.root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Path to .env file")
	flags.StringVar(&a.dataPath, "data-path", "", "Directory holding the database")
	flags.StringVar(&a.backend, "storage-backend", "", "Storage backend: badger or sqlite")
	flags.StringVarP(&a.format, "format", "o", formatTable, "Output format: table or json")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	a.root.CompletionOptions.DisableDefaultCmd = true
	a.root.AddCommand(
		a.newCaptureCmd(),
		a.newResumeCmd(),
		a.newSnoozeCmd(),
		a.newAbandonCmd(),
		a.newHistoryCmd(),
		a.newShowCmd(),
		a.newSummaryCmd(),
		a.newTagsCmd(),
		a.newSettingsCmd(),
		a.newPurgeCmd(),
		a.newRemindersCmd(),
	)

	return a
}

// open loads configuration the same way the server does and resolves the
// services. Flags given to pmctl override the environment.
func (a *app) open(cmd *cobra.Command) error {
	if cmd.Name() == "help" {
		return nil
	}
	if err := validateFormat(a.format); err != nil {
		return err
	}

	args := []string{"-env-file", a.envFile}
	if a.dataPath != "" {
		args = append(args, "-data-path", a.dataPath)
	}
	if a.backend != "" {
		args = append(args, "-storage-backend", a.backend)
	}
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.Config{
		Writer:  cmd.ErrOrStderr(),
		Format:  logger.FormatPretty,
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})

	a.injector = di.NewCLIContainer(cfg, log)
	a.svc, err = di.Services(a.injector)
	return err
}

func (a *app) close() {
	if a.injector != nil {
		_ = a.injector.Shutdown()
		a.injector = nil
	}
}
