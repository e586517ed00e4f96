package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/dppkit/passport-cli/internal/passport"
	"github.com/dppkit/passport-cli/internal/schema"
)

// SQLiteStore implements Store using modernc.org/sqlite. Field mappings
// are stored as JSON columns; the keyspace stays one row per record id.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN, configures WAL
// mode and applies the schema migration.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
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
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS passports (
	id              TEXT PRIMARY KEY,
	category        TEXT NOT NULL,
	created_at      DATETIME NOT NULL,
	version         INTEGER NOT NULL,
	document_fields TEXT NOT NULL,
	image_fields    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_passports_category ON passports(category);
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Save(ctx context.Context, rec *passport.Record) (string, error) {
	if err := checkID(rec.ID); err != nil {
		return "", err
	}
	docJSON, err := json.Marshal(rec.DocumentFields)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal document fields")
	}
	imgJSON, err := json.Marshal(rec.ImageFields)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal image fields")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO passports (id, category, created_at, version, document_fields, image_fields)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   category = excluded.category,
		   created_at = excluded.created_at,
		   version = excluded.version,
		   document_fields = excluded.document_fields,
		   image_fields = excluded.image_fields`,
		rec.ID, string(rec.Category), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.Version, string(docJSON), string(imgJSON),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert passport %s", rec.ID)
	}
	return "passports/" + rec.ID, nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*passport.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, created_at, version, document_fields, image_fields
		 FROM passports WHERE id = ?`, id,
	)

	var rec passport.Record
	var category, createdAt, docJSON, imgJSON string
	err := row.Scan(&rec.ID, &category, &createdAt, &rec.Version, &docJSON, &imgJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load passport %s", id)
	}

	rec.Category = schema.Category(category)
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse created_at for %s", id)
	}
	if err := json.Unmarshal([]byte(docJSON), &rec.DocumentFields); err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse document fields for %s", id)
	}
	if err := json.Unmarshal([]byte(imgJSON), &rec.ImageFields); err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse image fields for %s", id)
	}
	return &rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM passports ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list passports")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate ids")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
