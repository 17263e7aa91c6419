package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keshon/ytdlp-extractor/internal/music/sources"
)

var relatedCmd = &cobra.Command{
	Use:   "related <url>",
	Short: "List tracks to play after the given video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		res, err := current.registry.Resolve(ctx, args[0], sources.SearchContext{Type: sources.QueryYouTubeVideo})
		if err != nil {
			return err
		}
		if res.IsEmpty() {
			return fmt.Errorf("%s: nothing found", args[0])
		}

		seed := res.Tracks[0]
		related, err := current.registry.Related(ctx, seed, res.Tracks)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), seed.String(), related)
		return nil
	},
}
