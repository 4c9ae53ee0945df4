package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/OpenGG/modswap/internal/config"
	"github.com/OpenGG/modswap/internal/logging"
	"github.com/OpenGG/modswap/internal/modswap"
)

type globalFlags struct {
	root       string
	configPath string
	ext        string
	logLevel   string
	logFormat  string
}

// app carries what every subcommand needs. mgr is built once flags and
// configuration are known.
type app struct {
	fs       afero.Fs
	prompter Prompter
	stdout   io.Writer
	stderr   io.Writer
	flags    globalFlags
	mgr      *modswap.Manager
	logger   *slog.Logger
}

// NewRootCommand constructs the root Cobra command for modswap.
func NewRootCommand(fs afero.Fs, prompter Prompter, stdout, stderr io.Writer) *cobra.Command {
	a := &app{fs: fs, prompter: prompter, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "modswap",
		Short: "Swap between sets of mods",
		Long: "modswap keeps sets of .jar files parked in subdirectories of a mods folder\n" +
			"and moves exactly one set loose into the folder when it is activated.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup()
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.root, "root", "", "mods folder to manage (default: working directory)")
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default: $"+config.EnvConfigPath+" or the user config dir)")
	pf.StringVar(&a.flags.ext, "ext", "", "payload file extension (default: .jar)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newStatusCommand(a))
	cmd.AddCommand(newSwapCommand(a))
	cmd.AddCommand(newDeactivateCommand(a))
	cmd.AddCommand(newRecoverCommand(a))
	cmd.AddCommand(newShellCommand(a))

	return cmd
}

func (a *app) setup() error {
	cfg, err := config.NewLoader(a.fs).Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.root != "" {
		cfg.Root = a.flags.root
	}
	if a.flags.ext != "" {
		cfg.Extension = a.flags.ext
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.LogFormat = a.flags.logFormat
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}

	logger, err := logging.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	a.mgr = modswap.NewManager(a.fs, modswap.Options{
		Root:        cfg.Root,
		Extension:   cfg.Extension,
		PointerFile: cfg.PointerFile,
	}, logger)
	logger.Debug("configuration resolved", "root", cfg.Root, "ext", cfg.Extension, "pointer", cfg.PointerFile)
	return a.mgr.CheckRoot()
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.mgr.Load()
			if err != nil {
				return err
			}
			names, err := a.mgr.Sets()
			if err != nil {
				return err
			}
			r := newRenderer(a.stdout)
			if len(names) == 0 {
				fmt.Fprintf(a.stdout, "No configurations found in %s.\n", a.mgr.Root())
				return nil
			}
			r.sets(names, current)
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active set and what is on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.mgr.Load()
			if err != nil {
				return err
			}
			st, err := a.mgr.Status(current)
			if err != nil {
				return err
			}
			newRenderer(a.stdout).status(a.mgr.Root(), st)
			return nil
		},
	}
}

func newSwapCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "swap [index|name]",
		Short: "Activate a set, or park it when it is already active",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.mgr.Load()
			if err != nil {
				return err
			}

			var target string
			if len(args) == 1 {
				target, err = a.mgr.Resolve(args[0])
				if err != nil {
					return err
				}
			} else {
				names, err := a.mgr.Sets()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					return fmt.Errorf("%w in %s", ErrNoSets, a.mgr.Root())
				}
				_, target, err = a.prompter.Select("Select configuration", names, current)
				if err != nil {
					return err
				}
			}

			next, err := a.mgr.Swap(current, target)
			if err != nil {
				return err
			}
			newRenderer(a.stdout).current(next)
			return nil
		},
	}
}

func newDeactivateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Park the active set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.mgr.Load()
			if err != nil {
				return err
			}
			next, err := a.mgr.Deactivate(current)
			if err != nil {
				return err
			}
			newRenderer(a.stdout).current(next)
			return nil
		},
	}
}

func newRecoverCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Undo a swap that was interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, ok, err := a.mgr.PendingSwap()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.stdout, "No interrupted swap to recover.")
				return nil
			}

			fmt.Fprintf(a.stdout, "Interrupted swap from %s to %s started at %s (%d moves).\n",
				displayName(rec.From), displayName(rec.To), rec.StartedAt.Format("2006-01-02 15:04:05"), len(rec.Moves))
			fmt.Fprintf(a.stdout, "Journal: %s\n", a.mgr.JournalPath())
			if !yes {
				confirmed, err := a.prompter.Confirm("Move the files back", true)
				if err != nil {
					return err
				}
				if !confirmed {
					return errors.New("recover cancelled")
				}
			}

			restored, _, err := a.mgr.Recover(rec.From)
			if err != nil {
				return err
			}
			newRenderer(a.stdout).current(restored)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not prompt for confirmation")

	return cmd
}

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive swap loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newShell(a).run()
		},
	}
}
