// Package index writes a queryable SQLite index of a compiled artifact
// tree: one row per artifact with its id, kind, title, path, parent,
// descendant count, and content hash. The index is a convenience for
// search tooling; the artifact tree itself stays the source of truth.
package index

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/openruleset/bindery/core/errors"
	"github.com/openruleset/bindery/core/export"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	build_id   TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	tool       TEXT NOT NULL,
	version    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	path        TEXT PRIMARY KEY,
	id          TEXT NOT NULL,
	kind        TEXT NOT NULL,
	title       TEXT,
	parent      TEXT,
	descendants INTEGER NOT NULL DEFAULT 0,
	blake3      TEXT NOT NULL,
	size_bytes  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS nodes_kind ON nodes(kind);
CREATE INDEX IF NOT EXISTS nodes_parent ON nodes(parent);
`

// Open opens (or creates) an index database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "initializing index schema at %s", path)
	}
	return db, nil
}

// Write replaces the index content at path with the given build and its
// artifact records. Matching the exporter's clear-and-recreate contract,
// any rows from a previous run are dropped first.
func Write(path string, build export.BuildInfo, records []export.Record) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning index transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM nodes`); err != nil {
		return errors.Wrap(err, "clearing stale index rows")
	}
	if _, err := tx.Exec(`DELETE FROM builds`); err != nil {
		return errors.Wrap(err, "clearing stale build rows")
	}

	if _, err := tx.Exec(
		`INSERT INTO builds (build_id, created_at, tool, version) VALUES (?, ?, ?, ?)`,
		build.BuildID, build.CreatedAt, build.Tool, build.Version,
	); err != nil {
		return errors.Wrap(err, "inserting build row")
	}

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (path, id, kind, title, parent, descendants, blake3, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing node insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(
			rec.Path, rec.ID, rec.Kind, rec.Title, rec.Parent,
			rec.Descendants, rec.BLAKE3, rec.SizeBytes,
		); err != nil {
			return errors.Wrapf(err, "inserting node %s", rec.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing index")
	}
	return nil
}
