package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/nao1215/archivist/internal/model"
)

// index is the doctor's secondary source of truth: a flat SQLite table
// recording which page files the store believes it wrote, so Doctor can
// find filesystem drift (a file deleted or corrupted out from under the
// cache) without re-reading and re-hashing every page on every run.
//
// Design decision: the index is advisory, never authoritative. LoadSession
// and AppendPage always read/write the filesystem directly; losing
// index.sqlite loses fast corruption detection, not data.
type index struct {
	db *sql.DB
}

func openIndex(path string) (*index, error) {
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open doctor index: %w", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		last_modified DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS pages (
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		file_name TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		indexed_at DATETIME NOT NULL,
		PRIMARY KEY (session_id, url)
	);
	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create doctor index schema: %w", err)
	}
	return &index{db: db}, nil
}

func (idx *index) Close() error {
	if idx == nil {
		return nil
	}
	return idx.db.Close()
}

func (idx *index) upsertSession(ctx context.Context, id model.SessionId, status model.SessionStatus, lastModified time.Time) error {
	_, err := idx.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, status, last_modified) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET status = excluded.status, last_modified = excluded.last_modified
	`, string(id), string(status), lastModified)
	return err
}

func (idx *index) deleteSession(ctx context.Context, id model.SessionId) error {
	if _, err := idx.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, string(id)); err != nil {
		return err
	}
	_, err := idx.db.ExecContext(ctx, `DELETE FROM pages WHERE session_id = ?`, string(id))
	return err
}

func (idx *index) upsertPage(ctx context.Context, id model.SessionId, url, fileName, contentHash string) error {
	_, err := idx.db.ExecContext(ctx, `
		INSERT INTO pages (session_id, url, file_name, content_hash, indexed_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, url) DO UPDATE SET
			file_name = excluded.file_name, content_hash = excluded.content_hash, indexed_at = excluded.indexed_at
	`, string(id), url, fileName, contentHash, time.Now())
	return err
}

// indexedPage is one row of the doctor index's pages table.
type indexedPage struct {
	URL         string
	FileName    string
	ContentHash string
}

func (idx *index) pagesForSession(ctx context.Context, id model.SessionId) ([]indexedPage, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT url, file_name, content_hash FROM pages WHERE session_id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []indexedPage
	for rows.Next() {
		var p indexedPage
		if err := rows.Scan(&p.URL, &p.FileName, &p.ContentHash); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (idx *index) allSessionIDs(ctx context.Context) ([]string, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT session_id FROM sessions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (idx *index) deletePage(ctx context.Context, id model.SessionId, url string) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM pages WHERE session_id = ? AND url = ?`, string(id), url)
	return err
}
