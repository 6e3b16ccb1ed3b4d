package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/pos-catalog/internal/db"
	"github.com/sells-group/pos-catalog/internal/model"
)

// PostgresStore implements Store using pgxpool and PostGIS.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. The caller keeps ownership of it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS pos (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name         TEXT NOT NULL,
	type         TEXT NOT NULL,
	campus       TEXT NOT NULL,
	street       TEXT NOT NULL DEFAULT '',
	house_number TEXT NOT NULL DEFAULT '',
	postal_code  TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	location     geometry(Point, 4326),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT pos_name_key UNIQUE (name)
);

CREATE INDEX IF NOT EXISTS idx_pos_type ON pos(type);
CREATE INDEX IF NOT EXISTS idx_pos_campus ON pos(campus);
CREATE INDEX IF NOT EXISTS idx_pos_location ON pos USING GIST (location);
`

// posNameConstraint is the unique constraint guarding POS names.
const posNameConstraint = "pos_name_key"

var posUpsert = db.UpsertConfig{
	Table: "pos",
	Columns: []string{
		"id", "name", "type", "campus",
		"street", "house_number", "postal_code", "city",
		"latitude", "longitude", "location",
	},
	ConflictKeys: []string{"id"},
	ValueExprs:   map[string]string{"location": "ST_GeomFromEWKB(%s)"},
	Touch:        []string{"updated_at"},
	Returning:    []string{"created_at", "updated_at"},
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertPos(ctx context.Context, p *model.Pos) (*model.Pos, error) {
	stmt, err := db.UpsertStatement(posUpsert)
	if err != nil {
		return nil, err
	}

	out := *p
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	location, err := encodeLocation(&out)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, stmt,
		out.ID, out.Name, string(out.Type), string(out.Campus),
		out.Address.Street, out.Address.HouseNumber, out.Address.PostalCode, out.Address.City,
		out.Latitude, out.Longitude, location,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, posNameConstraint) {
			return nil, &model.DuplicateNameError{Name: p.Name, Err: err}
		}
		return nil, eris.Wrapf(err, "postgres: upsert pos %q", p.Name)
	}
	return &out, nil
}

func (s *PostgresStore) GetPos(ctx context.Context, id string) (*model.Pos, error) {
	p, err := scanPgPos(s.pool.QueryRow(ctx,
		`SELECT `+posColumns+` FROM pos WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &model.PosNotFoundError{ID: id}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get pos %s", id)
	}
	return p, nil
}

func (s *PostgresStore) ListPos(ctx context.Context) ([]model.Pos, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+posColumns+` FROM pos ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pos")
	}
	defer rows.Close()

	var out []model.Pos
	for rows.Next() {
		p, err := scanPgPos(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan pos")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list pos iterate")
}

func (s *PostgresStore) ClearPos(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pos`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear pos")
	}
	return int(tag.RowsAffected()), nil
}

func scanPgPos(row pgx.Row) (*model.Pos, error) {
	var p model.Pos
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Campus,
		&p.Address.Street, &p.Address.HouseNumber, &p.Address.PostalCode, &p.Address.City,
		&p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// encodeLocation returns the EWKB point (SRID 4326) for p, or nil when p has
// no complete coordinate pair.
func encodeLocation(p *model.Pos) ([]byte, error) {
	if !p.HasLocation() {
		return nil, nil
	}
	pt := geom.NewPointFlat(geom.XY, []float64{*p.Longitude, *p.Latitude}).SetSRID(4326)
	data, err := ewkb.Marshal(pt, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: encode location")
	}
	return data, nil
}
