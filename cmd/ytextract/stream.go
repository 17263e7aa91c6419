package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keshon/ytdlp-extractor/internal/music/sources"
)

var streamOutput string

var streamCmd = &cobra.Command{
	Use:   "stream <url>",
	Short: "Download the audio of a video to a file",
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
		t := res.Tracks[0]

		rc, err := current.registry.Stream(ctx, t)
		if err != nil {
			return err
		}
		defer rc.Close()

		out, err := os.Create(streamOutput)
		if err != nil {
			return err
		}

		n, err := io.Copy(out, rc)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Join(fmt.Errorf("write %s: %w", streamOutput, err), os.Remove(streamOutput))
		}

		current.log.Info("stream saved", zap.String("track", t.String()), zap.String("file", streamOutput), zap.Int64("bytes", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", t, streamOutput, n)
		return nil
	},
}

func init() {
	streamCmd.Flags().StringVarP(&streamOutput, "output", "o", "", "destination file")
	_ = streamCmd.MarkFlagRequired("output")
}
