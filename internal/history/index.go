package history

import (
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alucardeht/outliner/internal/outline"
)

// index is the queryable mirror of the snapshot files. It can always be
// rebuilt from them.
type index struct {
	db *sql.DB
}

func openIndex(dbPath string) (*index, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	idx := &index{db: db}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (x *index) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		saved_ns INTEGER NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		template TEXT,
		mode TEXT,
		chapters INTEGER DEFAULT 0,
		sections INTEGER DEFAULT 0,
		body TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_saved ON snapshots(saved_ns DESC, seq DESC);
	CREATE INDEX IF NOT EXISTS idx_snapshots_template ON snapshots(template);
	`

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := x.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertEntry(db execer, s *Snapshot) error {
	e := entryOf(s)
	_, err := db.Exec(
		"INSERT OR REPLACE INTO snapshots (id, saved_ns, seq, title, template, mode, chapters, sections, body) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, s.SavedAt.UnixNano(), idSequence(s.ID), e.Title, e.Template, string(e.Mode), e.Chapters, e.Sections,
		outline.Serialize(s.Outline),
	)
	return err
}

func (x *index) insert(s *Snapshot) error {
	return insertEntry(x.db, s)
}

func (x *index) remove(id string) (bool, error) {
	res, err := x.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (x *index) count() (int, error) {
	var n int
	err := x.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n)
	return n, err
}

// replaceAll swaps the whole index for snaps in one transaction.
func (x *index) replaceAll(snaps []*Snapshot) error {
	tx, err := x.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM snapshots"); err != nil {
		tx.Rollback()
		return err
	}
	for _, s := range snaps {
		if err := insertEntry(tx, s); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

const entryColumns = "id, saved_ns, title, template, mode, chapters, sections"

func (x *index) list(f Filter) ([]Entry, error) {
	query := "SELECT " + entryColumns + " FROM snapshots WHERE 1=1"
	var args []any

	if f.Title != "" {
		query += ` AND LOWER(title) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(strings.ToLower(f.Title)))
	}
	if f.Template != "" {
		query += " AND template = ?"
		args = append(args, f.Template)
	}

	query += " ORDER BY saved_ns DESC, seq DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := x.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (x *index) search(query string, limit int) ([]SearchResult, error) {
	q := "SELECT " + entryColumns + `, body FROM snapshots
		WHERE LOWER(title) LIKE ? ESCAPE '\' OR LOWER(body) LIKE ? ESCAPE '\'
		ORDER BY saved_ns DESC, seq DESC`
	pattern := likePattern(strings.ToLower(query))
	args := []any{pattern, pattern}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := x.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r     SearchResult
			nanos int64
			tmpl  sql.NullString
			mode  sql.NullString
			body  string
		)
		if err := rows.Scan(&r.ID, &nanos, &r.Title, &tmpl, &mode, &r.Chapters, &r.Sections, &body); err != nil {
			return nil, err
		}
		r.SavedAt = time.Unix(0, nanos).UTC()
		r.Template = tmpl.String
		r.Mode = outline.Mode(mode.String)
		r.Snippet = snippet(body, query, 120)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (x *index) close() error {
	if _, err := x.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Debug("wal checkpoint failed", "error", err)
	}
	return x.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e     Entry
		nanos int64
		tmpl  sql.NullString
		mode  sql.NullString
	)
	if err := row.Scan(&e.ID, &nanos, &e.Title, &tmpl, &mode, &e.Chapters, &e.Sections); err != nil {
		return Entry{}, err
	}
	e.SavedAt = time.Unix(0, nanos).UTC()
	e.Template = tmpl.String
	e.Mode = outline.Mode(mode.String)
	return e, nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// snippet returns the first line of body containing query, cut to width
// runes.
func snippet(body, query string, width int) string {
	lowerQuery := strings.ToLower(query)
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(strings.ToLower(line), lowerQuery) {
			return truncate(strings.TrimSpace(line), width)
		}
	}
	return truncate(strings.TrimSpace(body), width)
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}
