package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spool/internal/catalog"
	"spool/internal/framecache"
	"spool/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the frame cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePathCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show frame cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, index, warn, err := cacheManager(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || manager == nil {
				return err
			}
			defer index.Close()

			stats, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
			fmt.Fprintf(out, "Size:    %s / %s\n", humanBytes(stats.TotalBytes), humanBytes(stats.MaxBytes))
			fmt.Fprintf(out, "Disk:    %s free (%.1f%%)\n", humanBytes(int64(stats.FreeBytes)), stats.FreeRatio*100)

			entries, err := index.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cached frames: none")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{titleLabel("fingerprint"), titleLabel("format"), titleLabel("size"), titleLabel("created")},
				cacheEntryRows(entries),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func cacheEntryRows(entries []catalog.Entry) [][]string {
	const stampLayout = "2006-01-02 15:04"
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		created := "unknown"
		if !entry.CreatedAt.IsZero() {
			created = entry.CreatedAt.Local().Format(stampLayout)
		}
		encoded := entry.Fingerprint.Encoded()
		if len(encoded) > 16 {
			encoded = encoded[:16]
		}
		rows = append(rows, []string{
			encoded,
			entry.Format.String(),
			humanBytes(entry.SizeBytes),
			created,
		})
	}
	return rows
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Prune the frame cache now",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, index, warn, err := cacheManager(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || manager == nil {
				return err
			}
			defer index.Close()

			before, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if err := manager.Prune(cmd.Context()); err != nil {
				return err
			}
			after, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			freed := before.TotalBytes - after.TotalBytes
			if freed <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s (now %s / %s)\n",
				humanBytes(freed), humanBytes(after.TotalBytes), humanBytes(after.MaxBytes))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear the cache without --yes")
			}
			manager, index, warn, err := cacheManager(ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || manager == nil {
				return err
			}
			defer index.Close()

			before, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if err := manager.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached frames (%s)\n",
				before.Entries, humanBytes(before.TotalBytes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm removal of all cached frames")
	return cmd
}

func newCachePathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache root directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.CacheDir)
			return nil
		},
	}
}

func cacheManager(ctx *commandContext) (*framecache.Manager, *catalog.Store, string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, "", err
	}
	if cfg == nil || !cfg.FrameCache.Enabled {
		return nil, nil, "Frame cache is disabled (set enabled = true under [frame_cache] in config.toml)", nil
	}
	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		return nil, nil, "Cache dir is not configured", nil
	}
	logger, err := logging.New(logging.Options{Level: "info", Format: "console"})
	if err != nil {
		return nil, nil, "", fmt.Errorf("init logger: %w", err)
	}
	index, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return nil, nil, "", err
	}
	manager := framecache.NewManager(cfg, index, logging.NewComponentLogger(logger, "cli-cache"))
	if manager == nil {
		_ = index.Close()
		return nil, nil, "Frame cache is disabled", nil
	}
	return manager, index, "", nil
}
