package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/voxdrop/voxdrop/internal/janitor"
)

var (
	sweepDays  int
	sweepCache bool

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Remove old MP3 files from the working directory",
		Long: paragraph(fmt.Sprintf("\n%s MP3 files older than the retention window. This also happens every time voxdrop starts. With --cache the audio cache is emptied too.",
			keyword("Remove"))),
		Example: paragraph("voxdrop sweep\nvoxdrop sweep --days 1\nvoxdrop sweep --cache"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			days := opts.RetentionDays
			if cmd.Flags().Changed("days") {
				days = sweepDays
			}
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}

			j := janitor.New(opts.Workdir, janitor.WithLogger(log.Default().WithPrefix("janitor")))
			n := j.SweepDays(days)
			fmt.Printf("Removed %d file(s) older than %d day(s) from %s\n", n, days, j.Dir())

			if sweepCache {
				return clearCache()
			}
			return nil
		},
	}
)

func init() {
	sweepCmd.Flags().IntVar(&sweepDays, "days", janitor.DefaultRetentionDays, "remove files older than this many days (default retention_days)")
	sweepCmd.Flags().BoolVar(&sweepCache, "cache", false, "also empty the audio cache")
}

func clearCache() error {
	dc, err := openCache()
	if err != nil {
		return err
	}
	defer dc.Close() //nolint:errcheck

	stats := dc.Stats()
	if err := dc.Clear(); err != nil {
		return fmt.Errorf("unable to clear cache: %w", err)
	}
	fmt.Printf("Cleared %d cached clip(s), %s\n", stats.ItemCount, humanize.Bytes(uint64(stats.Size))) //nolint:gosec
	return nil
}
