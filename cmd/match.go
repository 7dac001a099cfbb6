package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/twinmaps/twinmap/internal/match"
	"github.com/twinmaps/twinmap/internal/model"
)

var (
	matchLat    float64
	matchLng    float64
	matchSource string
	matchTarget string
	matchMax    float64
	matchSelf   bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Evaluate proximity matches for a hover coordinate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if matchSource == "" || matchTarget == "" {
			return eris.New("--source and --target city keys are required")
		}
		maxDistance := matchMax
		if maxDistance == 0 {
			maxDistance = cfg.Match.MaxDistance
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		raws, err := st.ListPairings(ctx)
		if err != nil {
			return err
		}
		pairings := model.FilterValid(raws)
		palette := cfg.Color.Palette()

		hover := model.LatLng{matchLat, matchLng}
		result := map[string][]model.MatchedPoint{
			"matches": palette.Match(&hover, pairings, matchSource, matchTarget, maxDistance),
		}
		if matchSelf {
			result["self_matches"] = palette.Match(&hover, pairings, matchSource, matchSource, maxDistance)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal matches")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	matchCmd.Flags().Float64Var(&matchLat, "lat", 0, "hover latitude (required)")
	matchCmd.Flags().Float64Var(&matchLng, "lng", 0, "hover longitude (required)")
	matchCmd.Flags().StringVar(&matchSource, "source", "", "city key being hovered (required)")
	matchCmd.Flags().StringVar(&matchTarget, "target", "", "city key to highlight (required)")
	matchCmd.Flags().Float64Var(&matchMax, "max-distance", 0, fmt.Sprintf("matching radius in degrees (default %g)", match.DefaultMaxDistance))
	matchCmd.Flags().BoolVar(&matchSelf, "self", false, "also report matches on the hovered map")
	_ = matchCmd.MarkFlagRequired("lat")
	_ = matchCmd.MarkFlagRequired("lng")
	_ = matchCmd.MarkFlagRequired("source")
	_ = matchCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(matchCmd)
}
