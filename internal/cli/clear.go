package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/teamcutter/fetchr/internal/cache"
	"github.com/teamcutter/fetchr/internal/config"
)

func newClearCmd(root *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the download directory and everything cached in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				cfg.TargetDir = dir
			}

			c := cache.New(cfg.TargetDir, true, nil)

			size, _ := c.Size()

			stop := withSpinner(cmd.Context(), "Clearing "+c.Dir())
			err = c.Clear()
			stop()
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Cleared %s (%s freed)\n", green("✓"), cyan(c.Dir()), humanize.Bytes(uint64(size)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Download directory to clear")
	return cmd
}
