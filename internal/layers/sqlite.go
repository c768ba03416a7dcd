package layers

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	_ "modernc.org/sqlite"

	"github.com/norgeo/kvsok/internal/geometry"
)

// SQLiteStore implements Store using modernc.org/sqlite. Geometry is stored
// as WKT with the layer's EPSG kept on the layer row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "layers: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "layers: exec %s", pragma)
		}
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS layers (
	name       TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	epsg       INTEGER NOT NULL,
	fields     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	layer_name TEXT NOT NULL REFERENCES layers(name),
	attributes TEXT NOT NULL,
	geometry   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	seq        INTEGER
);

CREATE INDEX IF NOT EXISTS idx_records_layer_name ON records(layer_name);
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "layers: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureLayer(ctx context.Context, def LayerDef) (*Layer, error) {
	existing, err := s.layer(ctx, def.Name)
	if err == nil {
		if existing.Kind != def.Kind {
			return nil, eris.Errorf("layers: %s exists with kind %s, wanted %s", def.Name, existing.Kind, def.Kind)
		}
		return existing, nil
	}
	if !eris.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(def.Fields)
	if err != nil {
		return nil, eris.Wrap(err, "layers: marshal fields")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO layers (name, kind, epsg, fields) VALUES (?, ?, ?, ?)`,
		def.Name, string(def.Kind), def.EPSG, string(fieldsJSON))
	if err != nil {
		return nil, eris.Wrapf(err, "layers: create %s", def.Name)
	}
	return s.layer(ctx, def.Name)
}

func (s *SQLiteStore) layer(ctx context.Context, name string) (*Layer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, kind, epsg, fields, created_at FROM layers WHERE name = ?`, name)
	return scanLayer(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLayer(row rowScanner) (*Layer, error) {
	var l Layer
	var kind, fieldsJSON string
	if err := row.Scan(&l.Name, &kind, &l.EPSG, &fieldsJSON, &l.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, eris.Wrap(err, "layers: scan layer")
	}
	l.Kind = geometry.Kind(kind)
	if err := json.Unmarshal([]byte(fieldsJSON), &l.Fields); err != nil {
		return nil, eris.Wrap(err, "layers: unmarshal fields")
	}
	return &l, nil
}

func (s *SQLiteStore) Append(ctx context.Context, layerName string, rec Record) error {
	if rec.Geometry == nil {
		return eris.New("layers: record has no geometry")
	}
	geomWKT, err := wkt.Marshal(rec.Geometry)
	if err != nil {
		return eris.Wrap(err, "layers: encode geometry")
	}
	attrsJSON, err := json.Marshal(rec.Attributes)
	if err != nil {
		return eris.Wrap(err, "layers: marshal attributes")
	}

	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, layer_name, attributes, geometry, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE layer_name = ?))`,
		id, layerName, string(attrsJSON), geomWKT, createdAt, layerName)
	return eris.Wrapf(err, "layers: append to %s", layerName)
}

func (s *SQLiteStore) Layers(ctx context.Context) ([]Layer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, epsg, fields, created_at FROM layers ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "layers: list")
	}
	defer rows.Close() //nolint:errcheck

	var out []Layer
	for rows.Next() {
		l, err := scanLayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, eris.Wrap(rows.Err(), "layers: list")
}

func (s *SQLiteStore) Records(ctx context.Context, layerName string) ([]Record, error) {
	l, err := s.layer(ctx, layerName)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("layers: no such layer %s", layerName)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attributes, geometry, created_at FROM records WHERE layer_name = ? ORDER BY seq`,
		layerName)
	if err != nil {
		return nil, eris.Wrapf(err, "layers: records of %s", layerName)
	}
	defer rows.Close() //nolint:errcheck

	var out []Record
	for rows.Next() {
		var rec Record
		var attrsJSON, geomWKT string
		if err := rows.Scan(&rec.ID, &attrsJSON, &geomWKT, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "layers: scan record")
		}
		if err := json.Unmarshal([]byte(attrsJSON), &rec.Attributes); err != nil {
			return nil, eris.Wrap(err, "layers: unmarshal attributes")
		}
		g, err := wkt.Unmarshal(geomWKT)
		if err != nil {
			return nil, eris.Wrap(err, "layers: decode geometry")
		}
		if g, err = geom.SetSRID(g, l.EPSG); err != nil {
			return nil, eris.Wrap(err, "layers: set srid")
		}
		rec.Geometry = g
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "layers: records")
}

var _ Store = (*SQLiteStore)(nil)
