package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keshon/ytdlp-extractor/internal/music/sources"
	"github.com/keshon/ytdlp-extractor/internal/music/track"
	"github.com/keshon/ytdlp-extractor/pkg/util"
)

var (
	resolveType     string
	resolveProtocol string
	resolveWorkers  int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>...",
	Short: "Resolve links or search terms into tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := sources.SearchContext{
			Type:     sources.QueryType(resolveType),
			Protocol: resolveProtocol,
		}

		var mu sync.Mutex
		out := cmd.OutOrStdout()

		return util.Parallel(cmd.Context(), args, resolveWorkers, func(ctx context.Context, query string) error {
			res, err := resolve(ctx, query, sc)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				current.log.Warn("resolve failed", zap.String("query", query), zap.Error(err))
				fmt.Fprintf(out, "%s: %v\n", query, err)
				return nil
			}
			printResult(out, query, res)
			return nil
		})
	},
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveType, "type", "t", "", "query type (youtubeVideo, youtubePlaylist, youtubeSearch, auto, autoSearch)")
	resolveCmd.Flags().StringVarP(&resolveProtocol, "protocol", "p", "", "protocol hint, e.g. ytsearch")
	resolveCmd.Flags().IntVarP(&resolveWorkers, "workers", "w", 4, "queries resolved at once")
}

func resolve(ctx context.Context, query string, sc sources.SearchContext) (track.Result, error) {
	if sc.Protocol != "" {
		query = sc.Protocol + ":" + query
		sc.Protocol = ""
	}
	return current.registry.Resolve(ctx, query, sc)
}

func printResult(w io.Writer, query string, res track.Result) {
	if res.IsEmpty() {
		fmt.Fprintf(w, "%s: nothing found\n", query)
		return
	}

	if p := res.Playlist; p != nil {
		fmt.Fprintf(w, "%s: playlist %q by %s (%d tracks)\n", query, p.Title, p.Author.Name, len(p.Tracks))
	} else {
		fmt.Fprintf(w, "%s:\n", query)
	}
	for i, t := range res.Tracks {
		fmt.Fprintf(w, "  %2d. %s [%s] %s\n", i+1, t, orDash(t.Duration), t.URL)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
