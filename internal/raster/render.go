package raster

import (
	"context"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
	"github.com/mmeyer/hotpot/internal/store"
)

// TileSource is the subset of *store.Database the raster engine needs.
type TileSource interface {
	QueryTiles(bounds geo.TileBounds, af *store.ActivityFilter) ([]store.TileResult, error)
}

// RenderTile rasterizes a single target tile at the given output width.
// Returns (nil, nil) if the stored tile set is empty (caller responds 204).
func RenderTile(target geo.Tile, gradient Gradient, width uint32, cfg config.Config, af *store.ActivityFilter, src TileSource, masks geo.MaskSet) (*image.RGBA, error) {
	hidden, err := masks.Hidden(target)
	if err != nil {
		return nil, err
	}
	if hidden {
		return nil, nil
	}

	sourceZoom, ok := cfg.SourceLevel(target.Z)
	if !ok {
		return nil, herr.Newf(herr.NotFound, "no configured zoom >= %d", target.Z)
	}
	bounds, err := geo.TileBoundsFromParent(sourceZoom, target)
	if err != nil {
		return nil, herr.Wrap(herr.Internal, err, "compute source tile bounds")
	}

	results, err := src.QueryTiles(bounds, af)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	r := NewRaster(width, cfg.TileExtent, sourceZoom, target.Z)
	for _, res := range results {
		r.AddActivity(res.Tile.X-bounds.XMin, res.Tile.Y-bounds.YMin, res.Coords)
	}
	if !r.Touched() {
		return nil, nil
	}
	return r.ApplyGradient(gradient), nil
}

// RenderView renders an arbitrary lat/lng viewport by choosing a covering
// zoom, rasterizing each constituent 256px tile in parallel, and
// compositing into a center-cropped mosaic.
func RenderView(viewport geo.WebMercatorViewport, gradient Gradient, outW, outH uint32, cfg config.Config, af *store.ActivityFilter, src TileSource, masks geo.MaskSet) (*image.RGBA, error) {
	const tileSize = 256

	bounds, zoom, err := geo.TileBoundsFromViewport(viewport, float64(outW), float64(outH), cfg.MinZoom(), cfg.MaxZoom())
	if err != nil {
		return nil, err
	}

	tilesWide := bounds.XMax - bounds.XMin
	tilesHigh := bounds.YMax - bounds.YMin
	mosaicW := int(tilesWide) * tileSize
	mosaicH := int(tilesHigh) * tileSize

	mosaic := image.NewRGBA(image.Rect(0, 0, mosaicW, mosaicH))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(context.Background())
	for ty := bounds.YMin; ty < bounds.YMax; ty++ {
		for tx := bounds.XMin; tx < bounds.XMax; tx++ {
			tx, ty := tx, ty
			g.Go(func() error {
				tile := geo.Tile{X: tx, Y: ty, Z: zoom}
				tileImg, err := RenderTile(tile, gradient, tileSize, cfg, af, src, masks)
				if err != nil {
					return err
				}
				if tileImg == nil {
					return nil
				}
				originX := int(tx-bounds.XMin) * tileSize
				originY := int(ty-bounds.YMin) * tileSize

				mu.Lock()
				for y := 0; y < tileSize; y++ {
					for x := 0; x < tileSize; x++ {
						mosaic.Set(originX+x, originY+y, tileImg.At(x, y))
					}
				}
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cropW := minInt(int(outW), mosaicW)
	cropH := minInt(int(outH), mosaicH)
	offX := (mosaicW - cropW) / 2
	offY := (mosaicH - cropH) / 2

	out := image.NewRGBA(image.Rect(0, 0, cropW, cropH))
	for y := 0; y < cropH; y++ {
		for x := 0; x < cropW; x++ {
			out.Set(x, y, mosaic.At(offX+x, offY+y))
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
