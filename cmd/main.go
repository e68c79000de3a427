package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/adapters"
	"github.com/brettbedarf/vfsh/commands"
	"github.com/brettbedarf/vfsh/config"
	"github.com/brettbedarf/vfsh/console"
	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/internal/util"
	"github.com/brettbedarf/vfsh/requests"
	"github.com/brettbedarf/vfsh/server"
	"github.com/brettbedarf/vfsh/shell"
)

type options struct {
	configPath string
	verbose    int
	nodesDef   string
	mountPoint string
	umount     bool
	scriptPath string
}

var (
	opts     options
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:           "vfsh [flags]",
	Short:         "Interactive shell over a virtual file system",
	Version:       vfsh.Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer stop()

		exitCode, err = run(ctx, cfg)
		return err
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (YAML or JSON)")
	flags.IntVarP(&opts.verbose, "verbose", "v", config.WarnVerbose, "Log verbosity level between 1 (error) and 5 (trace)")
	flags.StringVarP(&opts.nodesDef, "nodes", "n", "", "Path to nodes def file")
	flags.StringVarP(&opts.mountPoint, "mount", "m", "", "Export the tree read-only through FUSE at this directory")
	flags.BoolVarP(&opts.umount, "umount", "u", false,
		"Unmount the export first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flags.StringVarP(&opts.scriptPath, "script", "s", "", "Run the lines of this file instead of reading the terminal")
}

// loadConfig merges the config file and the flags set on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	var override config.ConfigOverride
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		override.LogLvl = &opts.verbose
	}
	if flags.Changed("nodes") {
		override.NodesFile = &opts.nodesDef
	}
	if flags.Changed("mount") {
		override.MountPoint = &opts.mountPoint
	}
	cfg.Merge(&override)
	return cfg, nil
}

func initLogger(cfg *config.Config) (io.Closer, error) {
	if cfg.LogFile == "" {
		util.InitializeLogger(cfg.LogLvl, nil)
		return nil, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	util.InitializeLogger(cfg.LogLvl, f)
	return f, nil
}

func run(ctx context.Context, cfg *config.Config) (int, error) {
	logFile, err := initLogger(cfg)
	if err != nil {
		return shell.ExitInternal, fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger := util.GetLogger("main")
	logger.Info().Str("version", vfsh.Version).Str("nodes", cfg.NodesFile).Str("mnt", cfg.MountPoint).Msg("vfsh initializing")

	vfs, err := filesystem.NewFS(cfg, nil)
	if err != nil {
		return shell.ExitInternal, err
	}
	if cfg.NodesFile != "" {
		loadNodes(vfs, cfg)
	}

	if cfg.MountPoint != "" {
		if opts.umount {
			// we ignore error here if not already mounted
			exec.Command("fusermount", "-u", cfg.MountPoint).Run() // nolint:errcheck
		}
		exp, err := server.Mount(vfs, cfg.MountPoint, cfg.ExportOptions)
		if err != nil {
			return shell.ExitInternal, fmt.Errorf("mount %s: %w", cfg.MountPoint, err)
		}
		defer func() {
			if err := exp.Unmount(); err != nil {
				logger.Error().Err(err).Msg("Failed to unmount filesystem")
			} else {
				logger.Info().Msg("Filesystem unmounted successfully")
			}
		}()
	}

	setup := func(stdout, stderr io.Writer) (*shell.Shell, error) {
		sh := shell.New(ctx, cfg, vfs, stdout, stderr)
		return sh, commands.Register(sh)
	}

	if opts.scriptPath != "" || !isTerminal(os.Stdin) {
		in := io.Reader(os.Stdin)
		if opts.scriptPath != "" {
			f, err := os.Open(opts.scriptPath)
			if err != nil {
				return shell.ExitInternal, err
			}
			defer f.Close()
			in = f
		}
		sh, err := setup(os.Stdout, os.Stderr)
		if err != nil {
			return shell.ExitInternal, err
		}
		return console.RunScript(ctx, sh, in), nil
	}

	con, err := console.New(ctx, cfg, setup)
	if err != nil {
		return shell.ExitInternal, err
	}
	return con.Run(), nil
}

// loadNodes adds the definitions of the nodes file. Bad nodes are logged
// and skipped.
func loadNodes(vfs *filesystem.FileSystem, cfg *config.Config) {
	logger := util.GetLogger("main.loadNodes")

	reg := adapters.NewRegistry()
	adapters.RegisterBuiltins(reg)
	dec := &requests.Decoder{
		Registry: reg,
		OwnerUID: uint32(cfg.User.UID),
		OwnerGID: uint32(cfg.User.GID),
	}
	defs, err := dec.DecodeFile(cfg.NodesFile)
	if err != nil {
		logger.Error().Err(err).Str("nodes", cfg.NodesFile).Msg("Failed to load nodes file")
		return
	}
	if err := requests.Apply(vfs, defs); err != nil {
		logger.Warn().Err(err).Msg("Some nodes were not added")
	}
	logger.Info().Int("nodes", len(defs)).Msg("Added new nodes to filesystem")
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vfsh:", err)
		os.Exit(shell.ExitInternal)
	}
	os.Exit(exitCode)
}
