package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtune/internal/emotion"
)

func newRecommendCmd(g *globals) *cobra.Command {
	var (
		emotionFlag string
		seeds       []string
	)

	cmd := &cobra.Command{
		Use:     "recommend",
		Short:   "Recommend tracks for an emotion from seed tracks",
		Example: `  moodtune recommend --emotion calm --seed 4uLU6hMCjMI75M1A2tKUQC`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := emotion.ParseLabel(emotionFlag)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), g.cfg, g.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), g.cfg.SearchTimeout)
			defer cancel()

			tracks, err := a.recommender.Recommend(ctx, seeds, label)
			if err != nil {
				return err
			}
			printTracks(cmd.OutOrStdout(), tracks)
			return nil
		},
	}
	cmd.Flags().StringVar(&emotionFlag, "emotion", "", "emotion label (required)")
	cmd.Flags().StringSliceVar(&seeds, "seed", nil, "seed track ID, repeatable")
	_ = cmd.MarkFlagRequired("emotion")
	return cmd
}
