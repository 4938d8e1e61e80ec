package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/recommend"
)

func newClassifyCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text...>",
		Short: "Print the emotion detected in text",
		Example: `  moodtune classify "I feel so happy today"
  moodtune classify malungkot talaga ako ngayon`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score := emotion.NewClassifier(emotion.DefaultLexicon()).Classify(strings.Join(args, " "))
			mood := recommend.Describe(score.Label)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (confidence %.2f)\n", score.Label, score.Confidence)
			fmt.Fprintf(out, "%s: %s\n", mood.Name, mood.Description)
			return nil
		},
	}
}
