package files

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/filedepot/filedepot/pkg/types"
)

// db schema:
// CREATE TABLE IF NOT EXISTS files (
//   name TEXT PRIMARY KEY,
//   backend TEXT,
//   key TEXT,
//   size INTEGER,
//   uploaded_at INTEGER
// );

// Record is one stored file: its public name, the backend reference that
// re-addresses the bytes, and bookkeeping metadata
type Record struct {
	Name       string           `json:"name"`
	File       types.RemoteFile `json:"file"`
	Size       int64            `json:"size"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

// Repository persists remote file references in SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the reference database at path
func NewRepository(path string) (*Repository, error) {
	// github.com/mattn/go-sqlite3 registers the driver name "sqlite3"
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS files (
        name TEXT PRIMARY KEY,
        backend TEXT,
        key TEXT,
        size INTEGER,
        uploaded_at INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Save stores a record, replacing any previous one under the same name
func (r *Repository) Save(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO files(name,backend,key,size,uploaded_at)
        VALUES(?,?,?,?,?)
        ON CONFLICT(name) DO UPDATE SET
          backend=excluded.backend,
          key=excluded.key,
          size=excluded.size,
          uploaded_at=excluded.uploaded_at`,
		rec.Name, rec.File.Backend, rec.File.Key, rec.Size, rec.UploadedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Get retrieves the record stored under name, or nil when there is none
func (r *Repository) Get(ctx context.Context, name string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name,backend,key,size,uploaded_at FROM files WHERE name = ?`, name)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// Delete removes the record stored under name
func (r *Repository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// List returns all records ordered by upload time
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name,backend,key,size,uploaded_at FROM files ORDER BY uploaded_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database
func (r *Repository) Close() error {
	return r.db.Close()
}

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	var rec Record
	var uploadedAt int64
	if err := scan(&rec.Name, &rec.File.Backend, &rec.File.Key, &rec.Size, &uploadedAt); err != nil {
		return nil, err
	}
	rec.UploadedAt = time.Unix(uploadedAt, 0).UTC()
	return &rec, nil
}
