package store

import (
	"database/sql"
	"time"

	"github.com/mmeyer/hotpot/internal/codec"
	"github.com/mmeyer/hotpot/internal/filter"
	"github.com/mmeyer/hotpot/internal/geo"
	"github.com/mmeyer/hotpot/internal/herr"
)

// TileRow is one (tile, encoded polyline) pair produced by the clipper for
// a single activity, ready to insert.
type TileRow struct {
	Tile   geo.Tile
	Coords []codec.Coord
}

// UpsertInput describes one activity and its clipped tiles.
type UpsertInput struct {
	Key        string
	Title      string
	HasTitle   bool
	StartTime  time.Time
	HasStart   bool
	Properties map[string]any
	Tiles      []TileRow
}

// Upsert inserts-or-replaces the activity row by key and (if the insert
// replaced an existing row) deletes its old tiles before inserting the new
// set, atomically. Readers never observe a partial tile set for a key.
func (d *Database) Upsert(in UpsertInput) error {
	props, err := marshalProperties(in.Properties)
	if err != nil {
		return herr.Wrap(herr.Internal, err, "marshal properties")
	}

	tx, err := d.db.Begin()
	if err != nil {
		return herr.Wrap(herr.IO, err, "begin upsert")
	}
	defer tx.Rollback()

	var existingID sql.NullInt64
	err = tx.QueryRow("SELECT id FROM activities WHERE file = ?", in.Key).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return herr.Wrap(herr.IO, err, "lookup existing activity")
	}
	if existingID.Valid {
		if _, err := tx.Exec("DELETE FROM activity_tiles WHERE activity_id = ?", existingID.Int64); err != nil {
			return herr.Wrap(herr.IO, err, "delete old tiles")
		}
	}

	var title sql.NullString
	if in.HasTitle {
		title = sql.NullString{String: in.Title, Valid: true}
	}
	var startTime sql.NullInt64
	if in.HasStart {
		startTime = sql.NullInt64{Int64: in.StartTime.UTC().Unix(), Valid: true}
	}

	res, err := tx.Exec(`INSERT INTO activities(file, title, start_time, properties, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file) DO UPDATE SET
			title = excluded.title,
			start_time = excluded.start_time,
			properties = excluded.properties
		`, in.Key, title, startTime, props, time.Now().UTC().Unix())
	if err != nil {
		return herr.Wrap(herr.IO, err, "upsert activity row")
	}

	// An ON CONFLICT DO UPDATE leaves last_insert_rowid unchanged, so a
	// replaced row keeps the id looked up above.
	activityID := existingID.Int64
	if !existingID.Valid {
		activityID, err = res.LastInsertId()
		if err != nil || activityID == 0 {
			if err := tx.QueryRow("SELECT id FROM activities WHERE file = ?", in.Key).Scan(&activityID); err != nil {
				return herr.Wrap(herr.IO, err, "resolve activity id")
			}
		}
	}

	stmt, err := tx.Prepare("INSERT INTO activity_tiles(activity_id, z, x, y, coords) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return herr.Wrap(herr.IO, err, "prepare tile insert")
	}
	defer stmt.Close()

	for _, tr := range in.Tiles {
		blob, err := codec.Encode(tr.Coords)
		if err != nil {
			return herr.Wrap(herr.Corruption, err, "encode tile coords")
		}
		if _, err := stmt.Exec(activityID, tr.Tile.Z, tr.Tile.X, tr.Tile.Y, blob); err != nil {
			return herr.Wrap(herr.IO, err, "insert activity_tiles row")
		}
	}

	return herr.Wrap(herr.IO, tx.Commit(), "commit upsert")
}

// HasActivity reports whether an activity with the given key already
// exists, used by the import driver's dedup skip.
func (d *Database) HasActivity(key string) (bool, error) {
	var id int64
	err := d.db.QueryRow("SELECT id FROM activities WHERE file = ?", key).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, herr.Wrap(herr.IO, err, "check activity existence")
	}
	return true, nil
}

// Vacuum runs SQLite's VACUUM, invoked once after an import walk completes.
func (d *Database) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return herr.Wrap(herr.IO, err, "vacuum")
}

// ActivityFilter composes a date window and a property predicate into the
// WHERE-clause fragment the tile query appends.
type ActivityFilter struct {
	Before *time.Time
	After  *time.Time
	Prop   *filter.Filter
}

func (af *ActivityFilter) clause() (string, []any) {
	var clauses []string
	var params []any

	if af.Before != nil {
		clauses = append(clauses, "start_time < ?")
		params = append(params, af.Before.UTC().Unix())
	}
	if af.After != nil {
		clauses = append(clauses, "start_time > ?")
		params = append(params, af.After.UTC().Unix())
	}
	if propClause, propParams := af.Prop.ToSQL(); propClause != "" {
		clauses = append(clauses, propClause)
		params = append(params, propParams...)
	}

	if len(clauses) == 0 {
		return "1 = 1", nil
	}
	result := clauses[0]
	for _, c := range clauses[1:] {
		result += " AND " + c
	}
	return result, params
}

// TileResult is one stored tile's decoded polyline, as read back for
// rasterization.
type TileResult struct {
	Tile   geo.Tile
	Coords []codec.Coord
}

// QueryTiles returns every activity_tiles row at bounds.Z whose x and y lie
// in [XMin,XMax) and [YMin,YMax) and whose activity matches the filter, with
// its coords decoded. The caller resolves the source zoom and the bounds.
func (d *Database) QueryTiles(bounds geo.TileBounds, af *ActivityFilter) ([]TileResult, error) {
	clause, params := af.clause()

	query := `SELECT t.z, t.x, t.y, t.coords
		FROM activity_tiles t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.z = ? AND t.x >= ? AND t.x < ? AND t.y >= ? AND t.y < ? AND ` + clause

	args := append([]any{bounds.Z, bounds.XMin, bounds.XMax, bounds.YMin, bounds.YMax}, params...)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, herr.Wrap(herr.IO, err, "query tiles")
	}
	defer rows.Close()

	var out []TileResult
	for rows.Next() {
		var z uint8
		var x, y uint32
		var blob []byte
		if err := rows.Scan(&z, &x, &y, &blob); err != nil {
			return nil, herr.Wrap(herr.IO, err, "scan tile row")
		}
		coords, err := codec.Decode(blob)
		if err != nil {
			return nil, herr.Wrap(herr.Corruption, err, "decode tile coords")
		}
		out = append(out, TileResult{Tile: geo.Tile{X: x, Y: y, Z: z}, Coords: coords})
	}
	return out, nil
}

// SaveMask upserts a named privacy mask.
func (d *Database) SaveMask(m geo.Mask) error {
	_, err := d.db.Exec(`INSERT INTO masks(id, lng, lat, radius_meters) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET lng = excluded.lng, lat = excluded.lat, radius_meters = excluded.radius_meters`,
		m.ID, m.Center.Lng, m.Center.Lat, m.RadiusMeters)
	return herr.Wrap(herr.IO, err, "save mask")
}

// LoadMasks reads all configured privacy masks.
func (d *Database) LoadMasks() (geo.MaskSet, error) {
	rows, err := d.db.Query("SELECT id, lng, lat, radius_meters FROM masks")
	if err != nil {
		return nil, herr.Wrap(herr.IO, err, "load masks")
	}
	defer rows.Close()

	var masks geo.MaskSet
	for rows.Next() {
		var m geo.Mask
		if err := rows.Scan(&m.ID, &m.Center.Lng, &m.Center.Lat, &m.RadiusMeters); err != nil {
			return nil, herr.Wrap(herr.IO, err, "scan mask row")
		}
		masks = append(masks, m)
	}
	return masks, nil
}

// StravaToken is a persisted OAuth token for one athlete.
type StravaToken struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// SaveStravaToken upserts an athlete's token set.
func (d *Database) SaveStravaToken(t StravaToken) error {
	_, err := d.db.Exec(`INSERT INTO strava_tokens(athlete_id, access_token, refresh_token, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(athlete_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at`,
		t.AthleteID, t.AccessToken, t.RefreshToken, t.ExpiresAt.UTC().Unix())
	return herr.Wrap(herr.IO, err, "save strava token")
}

// LoadStravaToken loads the token set for the given athlete.
func (d *Database) LoadStravaToken(athleteID int64) (StravaToken, error) {
	var t StravaToken
	var expiresAt int64
	t.AthleteID = athleteID
	err := d.db.QueryRow(`SELECT access_token, refresh_token, expires_at
		FROM strava_tokens WHERE athlete_id = ?`, athleteID).
		Scan(&t.AccessToken, &t.RefreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return t, herr.New(herr.NotFound, "no strava token for athlete")
	}
	if err != nil {
		return t, herr.Wrap(herr.IO, err, "load strava token")
	}
	t.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return t, nil
}
