package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teamcutter/fetchr/internal/config"
	"github.com/teamcutter/fetchr/internal/manager"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "fetchr",
		Short:         "Download, cache and unpack remote files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.fetchr/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newGetCmd(opts),
		newClearCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("✗"), err)
		return err
	}
	return nil
}

func newManager(cfg *config.Config, debug bool) (*manager.Manager, error) {
	opts := manager.DefaultOptions()
	opts.Workers = cfg.Workers
	opts.ChunkSize = cfg.ChunkSize
	opts.AutoExtract = cfg.AutoExtract
	opts.DeleteOriginal = cfg.DeleteOriginal
	opts.Cache = cfg.Cache
	opts.TargetDir = cfg.TargetDir
	opts.FailFast = cfg.FailFast
	opts.Verbose = cfg.Verbose
	opts.Timeout = cfg.Timeout()
	opts.Output = os.Stderr
	opts.Logger = newLogger(debug)

	return manager.New(opts)
}
