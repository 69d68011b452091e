// Package store persists committed server nodes in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/log"
	"github.com/ameshkov/nodeadmin/internal/editor"
	"github.com/ameshkov/nodeadmin/internal/node"

	// Register the sqlite3 database/sql driver.
	_ "github.com/mattn/go-sqlite3"
)

// Config is the store configuration.
type Config struct {
	// Path is the path to the database file.  It is created with its parent
	// directories if missing.
	Path string
}

// Record is a stored server node.
type Record struct {
	// Submission is the committed state of the node.
	Submission *node.Submission `json:"server"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ID int64 `json:"id"`
}

// Store is a SQLite-backed editor.Loader and editor.Committer.
type Store struct {
	db *sql.DB
}

// type check
var (
	_ editor.Loader    = (*Store)(nil)
	_ editor.Committer = (*Store)(nil)
	_ io.Closer        = (*Store)(nil)
)

const createServersTable = `
CREATE TABLE IF NOT EXISTS servers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	address TEXT NOT NULL,
	country TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	ratio REAL NOT NULL DEFAULT 1,
	protocols TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Open opens the database and creates the schema if needed.
func Open(cfg *Config) (s *Store, err error) {
	err = os.MkdirAll(filepath.Dir(cfg.Path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err == nil {
		_, err = db.Exec(createServersTable)
	}

	if err != nil {
		return nil, errors.WithDeferred(fmt.Errorf("initializing database: %w", err), db.Close())
	}

	log.Info("store: opened %s", cfg.Path)

	return &Store{db: db}, nil
}

// Load implements the editor.Loader interface for *Store.
func (s *Store) Load(ctx context.Context, id int64) (sub *node.Submission, err error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT name, address, country, city, ratio, protocols FROM servers WHERE id = ?`,
		id,
	)

	sub, err = scanSubmission(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("server %d: %w", id, editor.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("loading server %d: %w", id, err)
	}

	return sub, nil
}

// Commit implements the editor.Committer interface for *Store.
func (s *Store) Commit(
	ctx context.Context,
	id int64,
	sub *node.Submission,
) (savedID int64, err error) {
	protos, err := json.Marshal(sub.Protocols)
	if err != nil {
		return 0, fmt.Errorf("encoding protocols: %w", err)
	}

	now := time.Now().Unix()
	if id == 0 {
		return s.insert(ctx, sub, protos, now)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE servers
		SET name = ?, address = ?, country = ?, city = ?, ratio = ?, protocols = ?, updated_at = ?
		WHERE id = ?`,
		sub.Name,
		sub.Address,
		sub.Country,
		sub.City,
		sub.Ratio,
		string(protos),
		now,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("updating server %d: %w", id, err)
	}

	err = checkAffected(res, id)
	if err != nil {
		return 0, err
	}

	log.Debug("store: updated server %d", id)

	return id, nil
}

// insert adds a new server row and returns its id.
func (s *Store) insert(
	ctx context.Context,
	sub *node.Submission,
	protos []byte,
	now int64,
) (id int64, err error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO servers
		(name, address, country, city, ratio, protocols, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.Name,
		sub.Address,
		sub.Country,
		sub.City,
		sub.Ratio,
		string(protos),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting server: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting server id: %w", err)
	}

	log.Debug("store: inserted server %d", id)

	return id, nil
}

// List returns all stored servers ordered by id.
func (s *Store) List(ctx context.Context) (recs []*Record, err error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, created_at, updated_at, name, address, country, city, ratio, protocols
		FROM servers ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, rows.Close()) }()

	for rows.Next() {
		rec := &Record{}
		var created, updated int64
		rec.Submission, err = scanSubmission(func(dest ...any) (scanErr error) {
			return rows.Scan(append([]any{&rec.ID, &created, &updated}, dest...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("listing servers: %w", err)
		}

		rec.CreatedAt = time.Unix(created, 0).UTC()
		rec.UpdatedAt = time.Unix(updated, 0).UTC()
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// Delete removes the server with the given id.
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting server %d: %w", id, err)
	}

	err = checkAffected(res, id)
	if err != nil {
		return err
	}

	log.Debug("store: deleted server %d", id)

	return nil
}

// Close implements the io.Closer interface for *Store.
func (s *Store) Close() (err error) {
	return s.db.Close()
}

// scanSubmission reads the node columns with scan, in the order name,
// address, country, city, ratio, protocols.
func scanSubmission(scan func(dest ...any) (err error)) (sub *node.Submission, err error) {
	sub = &node.Submission{}
	var protos string
	err = scan(&sub.Name, &sub.Address, &sub.Country, &sub.City, &sub.Ratio, &protos)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal([]byte(protos), &sub.Protocols)
	if err != nil {
		return nil, fmt.Errorf("decoding protocols: %w", err)
	}

	return sub, nil
}

// checkAffected returns an error wrapping editor.ErrNotFound if res affected
// no rows.
func checkAffected(res sql.Result, id int64) (err error) {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("server %d: %w", id, err)
	}

	if n == 0 {
		return fmt.Errorf("server %d: %w", id, editor.ErrNotFound)
	}

	return nil
}
