package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"absensi/internal/store"
)

// ErrDuplicate is returned by Insert when a record for the same name and
// calendar day already exists. The database index is the source of truth,
// so the check holds under concurrent writers.
var ErrDuplicate = errors.New("already submitted today")

// Repository persists attendance records behind the per-day uniqueness guard.
type Repository struct {
	db      *sql.DB
	backend string
}

// NewRepository creates a repo over an opened store.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db.Client, backend: db.Backend}
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS attendance (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT NOT NULL,
	class        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT '',
	submitted_at TEXT NOT NULL,
	ip           TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_name_day
	ON attendance (name, substr(submitted_at, 1, 10));
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS attendance (
	id           BIGSERIAL PRIMARY KEY,
	name         TEXT NOT NULL,
	class        TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT '',
	submitted_at TEXT NOT NULL,
	ip           TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_name_day
	ON attendance (name, substr(submitted_at, 1, 10));
`

// Migrate creates the attendance table and its uniqueness index.
func (r *Repository) Migrate(ctx context.Context) error {
	schema := schemaSQLite
	if r.backend == "postgres" {
		schema = schemaPostgres
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate attendance: %w", err)
	}
	return nil
}

// Insert writes a new record and returns it with the assigned id.
// A unique-index violation maps to ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if r.backend == "postgres" {
		row := r.db.QueryRowContext(ctx, `
			INSERT INTO attendance (name, class, status, submitted_at, ip)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, rec.Name, rec.Class, rec.Status, rec.SubmittedAt, rec.Address)
		if err := row.Scan(&rec.ID); err != nil {
			return Record{}, mapInsertErr(err)
		}
		return rec, nil
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (name, class, status, submitted_at, ip)
		VALUES (?, ?, ?, ?, ?)
	`, rec.Name, rec.Class, rec.Status, rec.SubmittedAt, rec.Address)
	if err != nil {
		return Record{}, mapInsertErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, err
	}
	rec.ID = id
	return rec, nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

// ListAll returns every record ordered by id.
func (r *Repository) ListAll(ctx context.Context, ascending bool) ([]Record, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, class, status, submitted_at, ip
		FROM attendance ORDER BY id `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Class, &rec.Status, &rec.SubmittedAt, &rec.Address); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Latest returns the most recent record, or nil when the table is empty.
func (r *Repository) Latest(ctx context.Context) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, class, status, submitted_at, ip
		FROM attendance ORDER BY id DESC LIMIT 1`)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Class, &rec.Status, &rec.SubmittedAt, &rec.Address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n)
	return n, err
}
