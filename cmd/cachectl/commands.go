package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"companysearch/internal/biz"
)

func newStatsCmd(opts *options) *cobra.Command {
	var sweep bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print cache counts and the most used queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withCache(func(uc *biz.SearchCacheUsecase) error {
				stats, err := uc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), stats)
				if sweep {
					n := uc.SweepExpired(cmd.Context())
					fmt.Fprintf(cmd.OutOrStdout(), "\nswept %d expired entries\n", n)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&sweep, "sweep", false, "delete expired entries after printing")
	return cmd
}

func printStats(w io.Writer, stats *biz.CacheStats) {
	fmt.Fprintf(w, "total entries:   %d\n", stats.TotalEntries)
	fmt.Fprintf(w, "active entries:  %d\n", stats.ActiveEntries)
	fmt.Fprintf(w, "expired entries: %d\n", stats.ExpiredEntries)
	if len(stats.TopEntries) == 0 {
		fmt.Fprintln(w, "\nno cached queries yet")
		return
	}
	fmt.Fprintln(w, "\ntop queries:")
	for i, e := range stats.TopEntries {
		last := "never"
		if e.LastAccessedAt != nil {
			last = e.LastAccessedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%2d. %q\n    %d hits | source: %s | last access: %s\n", i+1, e.Query, e.HitCount, e.Source, last)
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withCache(func(uc *biz.SearchCacheUsecase) error {
				fmt.Fprintf(cmd.OutOrStdout(), "swept %d expired entries\n", uc.SweepExpired(cmd.Context()))
				return nil
			})
		},
	}
}

func newClearCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "delete ALL cache entries?") {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			return opts.withCache(func(uc *biz.SearchCacheUsecase) error {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries\n", uc.ClearAll(cmd.Context()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func newInvalidateCmd(opts *options) *cobra.Command {
	var q biz.SearchQuery
	cmd := &cobra.Command{
		Use:   "invalidate <query>",
		Short: "Delete the cache entry of one query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Text = strings.Join(args, " ")
			return opts.withCache(func(uc *biz.SearchCacheUsecase) error {
				if uc.Invalidate(cmd.Context(), q) {
					fmt.Fprintf(cmd.OutOrStdout(), "invalidated %q\n", q.Text)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "no cache entry for %q\n", q.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&q.Hashtags, "hashtags", nil, "hashtags of the cached search")
	cmd.Flags().StringSliceVar(&q.Networks, "networks", nil, "networks of the cached search")
	cmd.Flags().StringVar(&q.Language, "lang", "", "language of the cached search (default fr)")
	return cmd
}

// confirm asks a yes/no question and accepts y, yes, o and oui.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (yes/no): ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "o", "oui":
		return true
	}
	return false
}
