package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/teamcutter/fetchr/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			if write {
				if err := config.Save(cfg, root.configPath); err != nil {
					return err
				}
				path := root.configPath
				if path == "" {
					path = config.DefaultPath()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", green("✓"), bold(path))
				return nil
			}

			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Save the effective configuration to the config file")
	return cmd
}
