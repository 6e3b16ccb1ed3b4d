package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/pos-catalog/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// One connection keeps the pragmas below in effect for every statement.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pos (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	type         TEXT NOT NULL,
	campus       TEXT NOT NULL,
	street       TEXT NOT NULL DEFAULT '',
	house_number TEXT NOT NULL DEFAULT '',
	postal_code  TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	latitude     REAL,
	longitude    REAL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_pos_type ON pos(type);
CREATE INDEX IF NOT EXISTS idx_pos_campus ON pos(campus);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertPos = `
INSERT INTO pos (id, name, type, campus, street, house_number, postal_code, city, latitude, longitude, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	type = excluded.type,
	campus = excluded.campus,
	street = excluded.street,
	house_number = excluded.house_number,
	postal_code = excluded.postal_code,
	city = excluded.city,
	latitude = excluded.latitude,
	longitude = excluded.longitude,
	updated_at = excluded.updated_at`

func (s *SQLiteStore) UpsertPos(ctx context.Context, p *model.Pos) (*model.Pos, error) {
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, sqliteUpsertPos,
		id, p.Name, string(p.Type), string(p.Campus),
		p.Address.Street, p.Address.HouseNumber, p.Address.PostalCode, p.Address.City,
		p.Latitude, p.Longitude, now, now,
	)
	if err != nil {
		if isSQLiteUniqueName(err) {
			return nil, &model.DuplicateNameError{Name: p.Name, Err: err}
		}
		return nil, eris.Wrapf(err, "sqlite: upsert pos %q", p.Name)
	}
	return s.GetPos(ctx, id)
}

func (s *SQLiteStore) GetPos(ctx context.Context, id string) (*model.Pos, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+posColumns+` FROM pos WHERE id = ?`, id,
	)
	p, err := scanPos(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.PosNotFoundError{ID: id}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get pos %s", id)
	}
	return p, nil
}

func (s *SQLiteStore) ListPos(ctx context.Context) ([]model.Pos, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+posColumns+` FROM pos ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pos")
	}
	defer rows.Close()

	var out []model.Pos
	for rows.Next() {
		p, err := scanPos(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pos")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list pos iterate")
}

func (s *SQLiteStore) ClearPos(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pos`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear pos")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

const posColumns = `id, name, type, campus, street, house_number, postal_code, city, latitude, longitude, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanPos(row scannable) (*model.Pos, error) {
	var p model.Pos
	var lat, lon sql.NullFloat64
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Campus,
		&p.Address.Street, &p.Address.HouseNumber, &p.Address.PostalCode, &p.Address.City,
		&lat, &lon, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lon.Valid {
		p.Longitude = &lon.Float64
	}
	return &p, nil
}

func isSQLiteUniqueName(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed: pos.name")
}
