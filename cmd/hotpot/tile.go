package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmeyer/hotpot/internal/filter"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
	"github.com/mmeyer/hotpot/internal/raster"
	"github.com/mmeyer/hotpot/internal/store"
)

const cliDateLayout = "2006-01-02"

func newTileCmd() *cobra.Command {
	var (
		before, after, filterExpr, gradientExpr, output string
		width                                            uint32
	)

	cmd := &cobra.Command{
		Use:   "tile z/x/y",
		Short: "Render a single tile to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseZXY(args[0])
			if err != nil {
				return err
			}
			af, gradient, err := parseFilterFlags(before, after, filterExpr, gradientExpr)
			if err != nil {
				return err
			}
			if width == 0 {
				width = 1024
			}

			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			masks, err := db.LoadMasks()
			if err != nil {
				return err
			}

			img, err := raster.RenderTile(target, gradient, width, cfg, af, db, masks)
			if err != nil {
				return err
			}
			return writeImageOrEmpty(img, output)
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "only activities before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&after, "after", "", "only activities after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "property filter expression")
	cmd.Flags().StringVar(&gradientExpr, "gradient", "", "gradient stop expression")
	cmd.Flags().Uint32Var(&width, "width", 1024, "output width in pixels")
	cmd.Flags().StringVar(&output, "output", "tile.png", "output PNG path")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		before, after, filterExpr, gradientExpr, output, bounds string
		width, height                                            uint32
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a lat/lng viewport to a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bounds == "" {
				return herr.New(herr.BadInput, "--bounds is required")
			}
			viewport, err := geo.ParseViewport(bounds)
			if err != nil {
				return err
			}
			af, gradient, err := parseFilterFlags(before, after, filterExpr, gradientExpr)
			if err != nil {
				return err
			}
			if width == 0 {
				width = 1024
			}
			if height == 0 {
				height = 1024
			}

			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			masks, err := db.LoadMasks()
			if err != nil {
				return err
			}

			img, err := raster.RenderView(viewport, gradient, width, height, cfg, af, db, masks)
			if err != nil {
				return err
			}
			return writeImageOrEmpty(img, output)
		},
	}
	cmd.Flags().StringVar(&bounds, "bounds", "", "west,south,east,north")
	cmd.Flags().StringVar(&before, "before", "", "only activities before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&after, "after", "", "only activities after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", "property filter expression")
	cmd.Flags().StringVar(&gradientExpr, "gradient", "", "gradient stop expression")
	cmd.Flags().Uint32Var(&width, "width", 1024, "output width in pixels")
	cmd.Flags().Uint32Var(&height, "height", 1024, "output height in pixels")
	cmd.Flags().StringVar(&output, "output", "render.png", "output PNG path")
	return cmd
}

func parseZXY(s string) (geo.Tile, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return geo.Tile{}, herr.Newf(herr.BadInput, "expected z/x/y, got %q", s)
	}
	z, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return geo.Tile{}, herr.Wrap(herr.BadInput, err, "parse z")
	}
	x, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return geo.Tile{}, herr.Wrap(herr.BadInput, err, "parse x")
	}
	y, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return geo.Tile{}, herr.Wrap(herr.BadInput, err, "parse y")
	}
	return geo.Tile{X: uint32(x), Y: uint32(y), Z: uint8(z)}, nil
}

func parseFilterFlags(before, after, filterExpr, gradientExpr string) (*store.ActivityFilter, raster.Gradient, error) {
	af := &store.ActivityFilter{}
	if before != "" {
		t, err := time.Parse(cliDateLayout, before)
		if err != nil {
			return nil, raster.Gradient{}, herr.Wrap(herr.BadInput, err, "parse before")
		}
		af.Before = &t
	}
	if after != "" {
		t, err := time.Parse(cliDateLayout, after)
		if err != nil {
			return nil, raster.Gradient{}, herr.Wrap(herr.BadInput, err, "parse after")
		}
		af.After = &t
	}
	if filterExpr != "" {
		f, err := filter.Parse(filterExpr)
		if err != nil {
			return nil, raster.Gradient{}, err
		}
		af.Prop = f
	}
	gradient := raster.Pinkish
	if gradientExpr != "" {
		parsed, err := raster.ParseGradient(gradientExpr)
		if err != nil {
			return nil, raster.Gradient{}, err
		}
		gradient = parsed
	}
	return af, gradient, nil
}

func writeImageOrEmpty(img *image.RGBA, path string) error {
	if img == nil {
		fmt.Println("no activity data at this tile/view; nothing written")
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return herr.Wrap(herr.IO, err, "create output file")
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return herr.Wrap(herr.Internal, err, "encode png")
	}
	fmt.Println("wrote " + path)
	return nil
}
