package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teamcutter/fetchr/internal/config"
	"github.com/teamcutter/fetchr/internal/report"
)

type getFlags struct {
	paths          []string
	targetDir      string
	workers        int
	chunkSize      int
	noExtract      bool
	deleteOriginal bool
	noCache        bool
	lenient        bool
	verbose        int
	timeout        int
	output         string
	reportDB       string
}

func newGetCmd(root *rootOptions) *cobra.Command {
	var f getFlags

	cmd := &cobra.Command{
		Use:   "get <url>...",
		Short: "Download files and unpack recognized archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)

			mgr, err := newManager(cfg, root.debug)
			if err != nil {
				return err
			}

			var paths []string
			if len(f.paths) > 0 {
				paths = f.paths
			}

			rep, err := mgr.Download(cmd.Context(), args, paths)
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), rep, f.output); err != nil {
				return err
			}

			if cfg.ReportDB != "" {
				store, err := report.OpenSQLite(cfg.ReportDB)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Append(cmd.Context(), rep); err != nil {
					return fmt.Errorf("failed to record report: %w", err)
				}
			}

			if failed := rep.Failed(); len(failed) > 0 {
				return fmt.Errorf("failed to download %d file(s)", len(failed))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.paths, "path", "o", nil, "Destination for each url, in order (repeatable)")
	flags.StringVarP(&f.targetDir, "dir", "d", "", "Directory for downloads without an explicit path")
	flags.IntVarP(&f.workers, "workers", "j", 0, "Parallel downloads, -1 for one per CPU")
	flags.IntVar(&f.chunkSize, "chunk-size", 0, "Read size in bytes while streaming")
	flags.BoolVar(&f.noExtract, "no-extract", false, "Do not unpack downloaded archives")
	flags.BoolVar(&f.deleteOriginal, "delete-original", false, "Remove archives after unpacking them")
	flags.BoolVar(&f.noCache, "no-cache", false, "Download and unpack even when the output exists")
	flags.BoolVar(&f.lenient, "lenient", false, "Keep going after a failed download")
	flags.IntVarP(&f.verbose, "verbose", "v", 0, "Progress output: 0 none, 1 batch, 2 per file")
	flags.IntVar(&f.timeout, "timeout", 0, "Per-request timeout in seconds")
	flags.StringVar(&f.output, "format", "table", "Report format: table, csv or json")
	flags.StringVar(&f.reportDB, "report-db", "", "Append the report to this SQLite database")
	return cmd
}

// apply overrides cfg with the flags the user set explicitly.
func (f *getFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("dir") {
		cfg.TargetDir = f.targetDir
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("chunk-size") {
		cfg.ChunkSize = f.chunkSize
	}
	if changed("no-extract") {
		cfg.AutoExtract = !f.noExtract
	}
	if changed("delete-original") {
		cfg.DeleteOriginal = f.deleteOriginal
	}
	if changed("no-cache") {
		cfg.Cache = !f.noCache
	}
	if changed("lenient") {
		cfg.FailFast = !f.lenient
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if changed("timeout") {
		cfg.TimeoutSeconds = f.timeout
	}
	if changed("report-db") {
		cfg.ReportDB = f.reportDB
	}
}

func writeReport(w io.Writer, rep *report.Report, output string) error {
	switch output {
	case "table", "":
		return rep.WriteTable(w)
	case "csv":
		return rep.WriteCSV(w)
	case "json":
		return rep.WriteJSON(w)
	default:
		return fmt.Errorf("unknown report format %q", output)
	}
}
