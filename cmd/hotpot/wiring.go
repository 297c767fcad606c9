package main

import (
	"github.com/mmeyer/hotpot/internal/activity"
	"github.com/mmeyer/hotpot/internal/codec"
	"github.com/mmeyer/hotpot/internal/config"
	fitfmt "github.com/mmeyer/hotpot/internal/format/fit"
	gpxfmt "github.com/mmeyer/hotpot/internal/format/gpx"
	tcxfmt "github.com/mmeyer/hotpot/internal/format/tcx"
	"github.com/mmeyer/hotpot/internal/simplify"
	"github.com/mmeyer/hotpot/internal/store"
)

// openDB opens the configured database (file or in-memory) and loads its
// persisted config.
func openDB() (*store.Database, config.Config, error) {
	var (
		db  *store.Database
		err error
	)
	if inMemory {
		db, err = store.Memory()
	} else {
		db, err = store.Open(dbPath)
	}
	if err != nil {
		return nil, config.Config{}, err
	}
	cfg, err := db.LoadConfig()
	if err != nil {
		db.Close()
		return nil, config.Config{}, err
	}
	return db, cfg, nil
}

// parserSet wires the three format parsers into the activity package's
// ParserSet, keeping internal/activity free of a direct dependency on the
// format subpackages (which themselves import internal/activity).
func parserSet() activity.ParserSet {
	return activity.ParserSet{
		activity.FormatGPX: gpxfmt.Parse,
		activity.FormatFIT: fitfmt.Parse,
		activity.FormatTCX: tcxfmt.Parse,
	}
}

// storeAdapter bridges internal/activity's local Store interface to
// *store.Database, converting UpsertStoreInput/ClippedTile into
// store.UpsertInput/TileRow at the one place the two packages meet.
type storeAdapter struct {
	db *store.Database
}

func (a storeAdapter) HasActivity(key string) (bool, error) {
	return a.db.HasActivity(key)
}

func (a storeAdapter) Vacuum() error {
	return a.db.Vacuum()
}

func (a storeAdapter) Upsert(in activity.UpsertStoreInput) error {
	tiles := make([]store.TileRow, 0, len(in.Tiles))
	for _, t := range in.Tiles {
		tiles = append(tiles, store.TileRow{Tile: t.Tile, Coords: widenLine(t.Line)})
	}
	return a.db.Upsert(store.UpsertInput{
		Key:        in.Key,
		Title:      in.Title,
		HasTitle:   in.HasTitle,
		StartTime:  in.StartTime,
		HasStart:   in.HasStart,
		Properties: in.Properties,
		Tiles:      tiles,
	})
}

func widenLine(line []simplify.Coord) []codec.Coord {
	out := make([]codec.Coord, len(line))
	for i, c := range line {
		out[i] = codec.Coord{X: uint32(c.X), Y: uint32(c.Y)}
	}
	return out
}
