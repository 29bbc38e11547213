package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"daytrack-backend/internal/geo"
)

var (
	predictLat float64
	predictLng float64
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Show the category the smart guesses vote for at a coordinate",
	Args:  cobra.NoArgs,
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().Float64Var(&predictLat, "lat", 0, "latitude in decimal degrees")
	predictCmd.Flags().Float64Var(&predictLng, "lng", 0, "longitude in decimal degrees")
	_ = predictCmd.MarkFlagRequired("lat")
	_ = predictCmd.MarkFlagRequired("lng")
}

func runPredict(cmd *cobra.Command, args []string) error {
	coord := geo.Coordinate{Latitude: predictLat, Longitude: predictLng}
	if !coord.Valid() {
		return fmt.Errorf("coordinate %v,%v out of range", predictLat, predictLng)
	}

	logger := log.New(os.Stderr, "daytrack ", log.LstdFlags)
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	g := a.engine.Guess(cmd.Context(), geo.Fix{Coordinate: coord, Timestamp: a.timeline.Now()})
	if g == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no guess")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (guess %s, confidence %d, errors %d)\n", g.Category, g.ID, g.Confidence, g.ErrorCount)
	return nil
}
