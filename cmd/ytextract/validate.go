package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keshon/ytdlp-extractor/internal/music/sources/youtube"
)

var validateCmd = &cobra.Command{
	Use:   "validate <url>...",
	Short: "Print the video id of each link or why it has none",
	Args:  cobra.MinimumNArgs(1),
	// no catalog or yt-dlp needed
	PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
	PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, link := range args {
			link = youtube.Canonicalize(link)
			id, err := youtube.ParseURL(link)
			switch {
			case err != nil:
				fmt.Fprintf(out, "%s\tinvalid\t%v\n", link, err)
			case youtube.IsRadioMix(link):
				fmt.Fprintf(out, "%s\t%s\tradio mix\n", link, id)
			default:
				fmt.Fprintf(out, "%s\t%s\n", link, id)
			}
		}
		return nil
	},
}
