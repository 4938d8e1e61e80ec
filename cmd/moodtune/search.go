package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/music"
)

func newSearchCmd(g *globals) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "search [emotion]",
		Short: "Find playable tracks for an emotion",
		Example: `  moodtune search sad
  moodtune search --text "stressed about tomorrow"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (text == "") == (len(args) == 0) {
				return errors.New("give either an emotion argument or --text")
			}

			a, err := newApp(cmd.Context(), g.cfg, g.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			var label emotion.Label
			if text != "" {
				score := a.classifier.Classify(text)
				label = score.Label
				fmt.Fprintf(out, "Detected %s (confidence %.2f)\n", score.Label, score.Confidence)
			} else {
				label, err = emotion.ParseLabel(args[0])
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), g.cfg.SearchTimeout)
			defer cancel()

			tracks, err := a.finder.FindTracksForEmotion(ctx, label)
			if err != nil {
				return err
			}
			printTracks(out, tracks)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "classify this text and search for its emotion")
	return cmd
}

func printTracks(w io.Writer, tracks []music.Track) {
	for i, t := range tracks {
		fmt.Fprintf(w, "%2d. %s - %s\n", i+1, strings.Join(t.ArtistNames(), ", "), t.Name)
		if t.PreviewURL != "" {
			fmt.Fprintf(w, "    %s\n", t.PreviewURL)
		}
	}
}
