package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
)

func newMaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Manage privacy masks that hide rendering near a point",
	}
	cmd.AddCommand(newMaskAddCmd())
	cmd.AddCommand(newMaskListCmd())
	return cmd
}

func newMaskAddCmd() *cobra.Command {
	var lng, lat, radius float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new circular privacy mask",
		RunE: func(cmd *cobra.Command, args []string) error {
			center := geo.LngLat{Lng: lng, Lat: lat}
			if !center.Valid() {
				return herr.Newf(herr.BadInput, "invalid center %+v", center)
			}
			if radius <= 0 {
				return herr.New(herr.BadInput, "--radius must be positive")
			}

			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			mask := geo.Mask{ID: uuid.NewString(), Center: center, RadiusMeters: radius}
			if err := db.SaveMask(mask); err != nil {
				return err
			}
			fmt.Println(mask.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lng, "lng", 0, "mask center longitude")
	cmd.Flags().Float64Var(&lat, "lat", 0, "mask center latitude")
	cmd.Flags().Float64Var(&radius, "radius", 0, "mask radius in meters")
	return cmd
}

func newMaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured privacy masks",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			masks, err := db.LoadMasks()
			if err != nil {
				return err
			}
			for _, m := range masks {
				fmt.Printf("%s\tlng=%f\tlat=%f\tradius=%f\n", m.ID, m.Center.Lng, m.Center.Lat, m.RadiusMeters)
			}
			return nil
		},
	}
}
