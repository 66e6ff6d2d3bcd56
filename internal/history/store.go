// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite log of searches run from the CLI so
// earlier result lists can be listed, re-rendered and searched without
// querying providers again.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/unified-search/pkg/types"
)

// DefaultLimit bounds List and Find when no limit is given.
const DefaultLimit = 20

// ErrNotFound is returned when a search ID is not in the log.
var ErrNotFound = errors.New("search not found")

// Store is the search log database.
type Store struct {
	db *sql.DB
}

// Entry summarizes one recorded search.
type Entry struct {
	ID            int64             `json:"id"`
	Category      types.Category    `json:"category"`
	Query         string            `json:"query"`
	MaxResults    int               `json:"max_results"`
	Total         int               `json:"total"`
	ProvidersUsed []string          `json:"providers_used"`
	Errors        map[string]string `json:"errors,omitempty"`
	SearchSeconds float64           `json:"search_seconds"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Hit is a stored result matched by Find.
type Hit struct {
	SearchID int64              `json:"search_id"`
	Query    string             `json:"query"`
	Rank     int                `json:"rank"`
	Result   types.SearchResult `json:"result"`
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			query TEXT NOT NULL,
			max_results INTEGER NOT NULL,
			total INTEGER NOT NULL,
			providers_used TEXT NOT NULL,
			errors TEXT NOT NULL,
			search_seconds REAL NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			search_id INTEGER NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			snippet TEXT,
			source TEXT NOT NULL,
			score REAL NOT NULL,
			doi TEXT,
			body TEXT NOT NULL,
			PRIMARY KEY (search_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created ON searches(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_results_url ON results(url)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a completed search and its ranked results and returns the
// new search ID.
func (s *Store) Record(ctx context.Context, cat types.Category, req types.SearchRequest, resp types.SearchResponse) (int64, error) {
	used, _ := json.Marshal(nonNil(resp.ProvidersUsed))
	errs, _ := json.Marshal(resp.Errors)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO searches (category, query, max_results, total, providers_used, errors, search_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(cat), req.Query, req.MaxResults, resp.TotalResults,
		string(used), string(errs), resp.SearchTime.Seconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting search: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading search id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (search_id, rank, title, url, snippet, source, score, doi, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range resp.Results {
		body, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encoding result %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i+1, r.Title, r.URL, r.Snippet, r.Source, r.Score, r.DOI, string(body)); err != nil {
			return 0, fmt.Errorf("inserting result %d: %w", i+1, err)
		}
	}
	return id, tx.Commit()
}

// List returns the most recent searches, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, query, max_results, total, providers_used, errors, search_seconds, created_at
		 FROM searches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns one recorded search as the response it produced.
func (s *Store) Get(ctx context.Context, id int64) (Entry, types.SearchResponse, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, query, max_results, total, providers_used, errors, search_seconds, created_at
		 FROM searches WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, types.SearchResponse{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, types.SearchResponse{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT body FROM results WHERE search_id = ? ORDER BY rank`, id)
	if err != nil {
		return Entry{}, types.SearchResponse{}, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	resp := types.SearchResponse{
		Query:         e.Query,
		Results:       []types.SearchResult{},
		TotalResults:  e.Total,
		ProvidersUsed: e.ProvidersUsed,
		SearchTime:    types.Elapsed(time.Duration(e.SearchSeconds * float64(time.Second))),
		Errors:        e.Errors,
	}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return Entry{}, types.SearchResponse{}, fmt.Errorf("scanning result: %w", err)
		}
		var r types.SearchResult
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return Entry{}, types.SearchResponse{}, fmt.Errorf("decoding result: %w", err)
		}
		resp.Results = append(resp.Results, r)
	}
	return e, resp, rows.Err()
}

// Find matches text against stored titles, snippets and URLs, case
// insensitively. Hits come newest search first, then by rank.
func (s *Store) Find(ctx context.Context, text string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(text))) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.search_id, s.query, r.rank, r.body
		 FROM results r JOIN searches s ON s.id = r.search_id
		 WHERE lower(r.title) LIKE ? ESCAPE '\' OR lower(r.snippet) LIKE ? ESCAPE '\' OR lower(r.url) LIKE ? ESCAPE '\'
		 ORDER BY r.search_id DESC, r.rank
		 LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var (
			h    Hit
			body string
		)
		if err := rows.Scan(&h.SearchID, &h.Query, &h.Rank, &body); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		if err := json.Unmarshal([]byte(body), &h.Result); err != nil {
			return nil, fmt.Errorf("decoding result: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Delete removes a search and its results.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting search: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e             Entry
		cat           string
		used, errs    string
		createdAtText string
	)
	if err := row.Scan(&e.ID, &cat, &e.Query, &e.MaxResults, &e.Total, &used, &errs, &e.SearchSeconds, &createdAtText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning search: %w", err)
	}
	e.Category = types.Category(cat)
	if err := json.Unmarshal([]byte(used), &e.ProvidersUsed); err != nil {
		return Entry{}, fmt.Errorf("decoding providers_used: %w", err)
	}
	if err := json.Unmarshal([]byte(errs), &e.Errors); err != nil {
		return Entry{}, fmt.Errorf("decoding errors: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAtText)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing created_at: %w", err)
	}
	e.CreatedAt = t
	return e, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
