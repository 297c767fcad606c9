package activity

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/herr"
)

// Format identifies the source file format dispatched by extension.
type Format int

const (
	FormatGPX Format = iota
	FormatFIT
	FormatTCX
)

// FITVirtualSports lists FIT sub_sport values that mark an indoor/virtual
// session, which is never persisted.
var FITVirtualSports = map[string]bool{
	"virtual_activity": true,
	"indoor_cycling":   true,
	"indoor_rowing":    true,
	"indoor_running":   true,
}

// Parser produces a RawActivity from a decoded (already gunzipped, if
// applicable) reader, or (nil, nil) for "no track".
type Parser func(r io.Reader) (*RawActivity, error)

// ParserSet maps each supported format to its parser implementation. Wired
// by the caller (cmd/hotpot) to avoid an import cycle between this package
// and internal/format/*, which import RawActivity from here.
type ParserSet map[Format]Parser

// detectFormat infers (format, gzipped) from a file name, or ok=false if
// the extension is unsupported.
func detectFormat(name string) (format Format, gzipped bool, ok bool) {
	lower := strings.ToLower(name)
	gzipped = strings.HasSuffix(lower, ".gz")
	if gzipped {
		lower = strings.TrimSuffix(lower, ".gz")
	}
	switch {
	case strings.HasSuffix(lower, ".gpx"):
		return FormatGPX, gzipped, true
	case strings.HasSuffix(lower, ".fit"):
		return FormatFIT, gzipped, true
	case strings.HasSuffix(lower, ".tcx"):
		return FormatTCX, gzipped, true
	default:
		return 0, false, false
	}
}

// PropertySource enriches a RawActivity with metadata keyed by path,
// relative to the CSV's own directory.
type PropertySource struct {
	byPath map[string]map[string]any
}

// PropertySourceFromCSV loads a CSV with a "filename" column and folds every
// other column into property keys. Headers are trimmed, lowercased, and have
// spaces replaced by underscores before matching; other punctuation is kept.
func PropertySourceFromCSV(path string) (PropertySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return PropertySource{}, herr.Wrap(herr.IO, err, "open property CSV")
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return PropertySource{}, herr.Wrap(herr.IO, err, "read property CSV")
	}
	if len(rows) == 0 {
		return PropertySource{byPath: map[string]map[string]any{}}, nil
	}

	headers := make([]string, len(rows[0]))
	fileCol := -1
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
		if headers[i] == "filename" {
			fileCol = i
		}
	}
	if fileCol == -1 {
		return PropertySource{}, herr.New(herr.BadInput, "property CSV missing filename column")
	}

	dir := filepath.Dir(path)
	byPath := make(map[string]map[string]any, len(rows)-1)
	for _, row := range rows[1:] {
		if fileCol >= len(row) {
			continue
		}
		key := filepath.Join(dir, row[fileCol])
		props := make(map[string]any, len(headers))
		for i, h := range headers {
			if i == fileCol || i >= len(row) {
				continue
			}
			props[h] = row[i]
		}
		byPath[key] = props
	}
	return PropertySource{byPath: byPath}, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// Lookup returns the properties associated with a path, if any.
func (ps PropertySource) Lookup(path string) (map[string]any, bool) {
	if ps.byPath == nil {
		return nil, false
	}
	p, ok := ps.byPath[path]
	return p, ok
}

// Summary reports the outcome of an import walk.
type Summary struct {
	Imported int32
	Skipped  int32
	Failed   int32
}

// Importer walks a directory tree in parallel, parses each recognized file,
// enriches it, and upserts it into the store.
type Importer struct {
	Store   Store
	Config  config.Config
	Parsers ParserSet
	Props   PropertySource
	// Concurrency bounds the number of in-flight import tasks.
	Concurrency int
}

// Store is the subset of *store.Database the import driver needs,
// expressed as an interface so this package doesn't import internal/store
// directly (store.Database already depends on codec/filter/geo; this keeps
// the dependency graph acyclic and the driver trivially testable with a
// fake).
type Store interface {
	HasActivity(key string) (bool, error)
	Upsert(in UpsertStoreInput) error
	Vacuum() error
}

// UpsertStoreInput mirrors store.UpsertInput's shape without importing the
// store package. cmd/hotpot adapts between the two at the wiring edge.
type UpsertStoreInput struct {
	Key        string
	Title      string
	HasTitle   bool
	StartTime  time.Time
	HasStart   bool
	Properties map[string]any
	Tiles      []ClippedTile
}

// ImportPath walks root (which may itself be a single file), running one
// import task per recognized file with bounded parallelism, then VACUUMs
// the store once and returns a summary.
func (imp *Importer) ImportPath(root string) (Summary, error) {
	var summary Summary

	concurrency := imp.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, gzipped, ok := detectFormat(d.Name())
		if !ok {
			return nil
		}

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			imp.importOne(path, format, gzipped, &summary)
			return nil
		})
		return nil
	})
	if walkErr != nil {
		return summary, herr.Wrap(herr.IO, walkErr, "walk import path")
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	if err := imp.Store.Vacuum(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (imp *Importer) importOne(path string, format Format, gzipped bool, summary *Summary) {
	exists, err := imp.Store.HasActivity(path)
	if err != nil {
		atomic.AddInt32(&summary.Failed, 1)
		return
	}
	if exists {
		atomic.AddInt32(&summary.Skipped, 1)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		atomic.AddInt32(&summary.Failed, 1)
		return
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			atomic.AddInt32(&summary.Failed, 1)
			return
		}
		defer gz.Close()
		r = gz
	}

	parser, ok := imp.Parsers[format]
	if !ok {
		atomic.AddInt32(&summary.Failed, 1)
		return
	}

	raw, err := parser(r)
	if err != nil {
		atomic.AddInt32(&summary.Failed, 1)
		return
	}
	if raw == nil || raw.Empty() {
		atomic.AddInt32(&summary.Skipped, 1)
		return
	}

	if props, ok := imp.Props.Lookup(path); ok {
		if raw.Properties == nil {
			raw.Properties = map[string]any{}
		}
		for k, v := range props {
			raw.Properties[k] = v
		}
	}

	for _, line := range raw.Tracks {
		stats := ComputeStats(line)
		if raw.Properties == nil {
			raw.Properties = map[string]any{}
		}
		stats.MergeInto(raw.Properties)
	}

	tiles := raw.ClipToTiles(imp.Config)

	in := UpsertStoreInput{
		Key:        path,
		Title:      raw.Title,
		HasTitle:   raw.HasTitle,
		StartTime:  raw.StartTime,
		HasStart:   raw.HasStart,
		Properties: raw.Properties,
		Tiles:      tiles,
	}
	if err := imp.Store.Upsert(in); err != nil {
		atomic.AddInt32(&summary.Failed, 1)
		return
	}
	atomic.AddInt32(&summary.Imported, 1)
}

// String implements fmt.Stringer for a human-readable summary line.
func (s Summary) String() string {
	return fmt.Sprintf("imported=%d skipped=%d failed=%d", s.Imported, s.Skipped, s.Failed)
}
