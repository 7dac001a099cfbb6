package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twinmaps/twinmap/internal/model"
)

var pairingsCmd = &cobra.Command{
	Use:   "pairings",
	Short: "Manage stored pairings",
}

var pairingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pairings as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

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

		out, err := json.MarshalIndent(pairings, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal pairings")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var createLocations []string

var pairingsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pairing from --location flags",
	Long:  `Create a pairing. Repeat --location as city=lat,lng[,label], e.g. --location "seattle=47.6097,-122.3422,Pike Place Market".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		locations, err := parseLocationFlags(createLocations)
		if err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		pairing, err := st.CreatePairing(ctx, locations)
		if err != nil {
			return err
		}

		zap.L().Info("pairing created", zap.String("id", pairing.ID))
		fmt.Fprintln(cmd.OutOrStdout(), pairing.ID)
		return nil
	},
}

var pairingsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pairing by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeletePairing(ctx, args[0]); err != nil {
			return err
		}
		zap.L().Info("pairing deleted", zap.String("id", args[0]))
		return nil
	},
}

// parseLocationFlags turns repeated city=lat,lng[,label] values into the
// raw location map the store expects.
func parseLocationFlags(flags []string) (map[string]model.RawLocation, error) {
	locations := make(map[string]model.RawLocation, len(flags))
	for _, f := range flags {
		city, rest, ok := strings.Cut(f, "=")
		if !ok || city == "" {
			return nil, eris.Errorf("invalid --location %q (want city=lat,lng[,label])", f)
		}

		parts := strings.SplitN(rest, ",", 3)
		if len(parts) < 2 {
			return nil, eris.Errorf("invalid --location %q (want city=lat,lng[,label])", f)
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat != nil || errLng != nil {
			return nil, eris.Errorf("invalid coordinates in --location %q", f)
		}

		var label string
		if len(parts) == 3 {
			label = strings.TrimSpace(parts[2])
		}
		locations[city] = model.RawLocation{Label: label, Coordinates: []float64{lat, lng}}
	}
	return locations, nil
}

func init() {
	pairingsCreateCmd.Flags().StringArrayVar(&createLocations, "location", nil, "location as city=lat,lng[,label] (repeatable, need at least two)")
	_ = pairingsCreateCmd.MarkFlagRequired("location")

	pairingsCmd.AddCommand(pairingsListCmd, pairingsCreateCmd, pairingsDeleteCmd)
	rootCmd.AddCommand(pairingsCmd)
}
