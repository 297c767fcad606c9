// Package store implements the SQLite-backed activity and tile persistence
// layer: schema, connection pooling, config/mask/token key-value tables, and
// the upsert/query operations the import driver and raster engine consume.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mmeyer/hotpot/internal/config"
	"github.com/mmeyer/hotpot/internal/herr"
)

const schema = `
CREATE TABLE IF NOT EXISTS config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY,
	file TEXT UNIQUE NOT NULL,
	title TEXT,
	start_time INTEGER,
	properties TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_tiles (
	id INTEGER PRIMARY KEY,
	activity_id INTEGER NOT NULL REFERENCES activities(id),
	z INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	coords BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_tiles_activity ON activity_tiles(activity_id);
CREATE INDEX IF NOT EXISTS idx_activity_tiles_zxy ON activity_tiles(z, x, y);

CREATE TABLE IF NOT EXISTS strava_tokens (
	athlete_id INTEGER PRIMARY KEY,
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS masks (
	id TEXT PRIMARY KEY,
	lng REAL NOT NULL,
	lat REAL NOT NULL,
	radius_meters REAL NOT NULL
);
`

// Database wraps a pooled *sql.DB with the discipline spec.md §4.4 requires:
// WAL journal mode, synchronous off, a bounded connection pool. The single
// *sql.DB is itself the "cloneable pool handle" worker tasks check out
// connections from.
type Database struct {
	db *sql.DB
}

// Open opens (creating if necessary) a file-backed database at path.
func Open(path string) (*Database, error) {
	return open(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path), 8)
}

// Memory opens an ephemeral in-memory database. Callers must not expect
// persistence across process restarts; every write path tolerates it.
func Memory() (*Database, error) {
	return open("file::memory:?cache=shared", 1)
}

func open(dsn string, maxOpen int) (*Database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, herr.Wrap(herr.IO, err, "open database")
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = OFF",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, herr.Wrap(herr.IO, err, "set pragma: "+pragma)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, herr.Wrap(herr.IO, err, "apply schema")
	}
	return &Database{db: db}, nil
}

// Close releases the underlying connection pool.
func (d *Database) Close() error { return d.db.Close() }

// DB exposes the underlying pool for callers (import workers) that need
// their own checked-out connection.
func (d *Database) DB() *sql.DB { return d.db }

// ResetActivities deletes all activities and their tiles.
func (d *Database) ResetActivities() error {
	tx, err := d.db.Begin()
	if err != nil {
		return herr.Wrap(herr.IO, err, "begin reset")
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM activity_tiles"); err != nil {
		return herr.Wrap(herr.IO, err, "delete activity_tiles")
	}
	if _, err := tx.Exec("DELETE FROM activities"); err != nil {
		return herr.Wrap(herr.IO, err, "delete activities")
	}
	return herr.Wrap(herr.IO, tx.Commit(), "commit reset")
}

// LoadConfig reads the persisted config, falling back to documented defaults
// for any key not present.
func (d *Database) LoadConfig() (config.Config, error) {
	cfg := config.Default()
	rows, err := d.db.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg, herr.Wrap(herr.IO, err, "load config")
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return cfg, herr.Wrap(herr.IO, err, "scan config row")
		}
		switch key {
		case "zoom_levels":
			zooms, err := parseZoomLevels(value)
			if err != nil {
				return cfg, herr.Wrap(herr.Corruption, err, "parse zoom_levels")
			}
			cfg.ZoomLevels = zooms
		case "tile_extent":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return cfg, herr.Wrap(herr.Corruption, err, "parse tile_extent")
			}
			cfg.TileExtent = uint32(n)
		case "trim_dist":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return cfg, herr.Wrap(herr.Corruption, err, "parse trim_dist")
			}
			cfg.TrimDist = f
		}
	}
	return cfg, nil
}

// SaveConfig persists the config as key/value rows, merging in CLI
// overrides the caller has already applied to cfg.
func (d *Database) SaveConfig(cfg config.Config) error {
	zoomStrs := make([]string, len(cfg.ZoomLevels))
	for i, z := range cfg.ZoomLevels {
		zoomStrs[i] = strconv.Itoa(int(z))
	}
	kv := map[string]string{
		"zoom_levels": strings.Join(zoomStrs, ","),
		"tile_extent": strconv.FormatUint(uint64(cfg.TileExtent), 10),
		"trim_dist":   strconv.FormatFloat(cfg.TrimDist, 'f', -1, 64),
	}
	tx, err := d.db.Begin()
	if err != nil {
		return herr.Wrap(herr.IO, err, "begin save config")
	}
	defer tx.Rollback()
	for k, v := range kv {
		if _, err := tx.Exec(`INSERT INTO config(key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return herr.Wrap(herr.IO, err, "save config key "+k)
		}
	}
	return herr.Wrap(herr.IO, tx.Commit(), "commit save config")
}

func parseZoomLevels(value string) ([]uint8, error) {
	parts := strings.Split(value, ",")
	out := make([]uint8, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, uint8(n))
	}
	return out, nil
}

// marshalProperties JSON-encodes a property map, defaulting to "{}".
func marshalProperties(props map[string]any) (string, error) {
	if props == nil {
		return "{}", nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
