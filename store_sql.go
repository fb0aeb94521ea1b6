package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqlSchema = `
CREATE TABLE IF NOT EXISTS puzzles (
	id         TEXT PRIMARY KEY,
	rows       INTEGER NOT NULL,
	cols       INTEGER NOT NULL,
	lines      TEXT NOT NULL,
	source     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	puzzle_id  TEXT NOT NULL REFERENCES puzzles(id),
	kind       TEXT NOT NULL,
	pattern    TEXT NOT NULL,
	count      INTEGER NOT NULL,
	results    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_puzzle_idx ON runs(puzzle_id, created_at);
`

// SQLStore keeps puzzles and runs in a SQLite database.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens (or creates) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLStore(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) SavePuzzle(ctx context.Context, p *Puzzle) (*Puzzle, error) {
	lines, err := json.Marshal(p.Lines)
	if err != nil {
		return nil, fmt.Errorf("encode lines: %w", err)
	}
	p.ID = generateID()
	p.CreatedAt = time.Now()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO puzzles (id, rows, cols, lines, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Rows, p.Cols, string(lines), p.Source, p.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert puzzle: %w", err)
	}
	return p, nil
}

func (s *SQLStore) GetPuzzle(ctx context.Context, id string) (*Puzzle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, rows, cols, lines, source, created_at FROM puzzles WHERE id = ?`, id)
	p, err := scanPuzzle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *SQLStore) ListPuzzles(ctx context.Context) ([]*Puzzle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rows, cols, lines, source, created_at FROM puzzles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query puzzles: %w", err)
	}
	defer rows.Close()

	list := []*Puzzle{}
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *SQLStore) AddRun(ctx context.Context, r *Run) (*Run, error) {
	if err := s.puzzleExists(ctx, r.PuzzleID); err != nil {
		return nil, err
	}
	r.ID = generateID()
	r.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, puzzle_id, kind, pattern, count, results, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.PuzzleID, string(r.Kind), r.Pattern, r.Count, string(r.Results), r.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

func (s *SQLStore) ListRuns(ctx context.Context, puzzleID string) ([]*Run, error) {
	if err := s.puzzleExists(ctx, puzzleID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, puzzle_id, kind, pattern, count, results, created_at FROM runs
		 WHERE puzzle_id = ? ORDER BY created_at, rowid`, puzzleID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	list := []*Run{}
	for rows.Next() {
		var (
			r       Run
			kind    string
			results string
			created int64
		)
		if err := rows.Scan(&r.ID, &r.PuzzleID, &kind, &r.Pattern, &r.Count, &results, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Kind = RunKind(kind)
		r.Results = json.RawMessage(results)
		r.CreatedAt = time.Unix(0, created)
		list = append(list, &r)
	}
	return list, rows.Err()
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) puzzleExists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM puzzles WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPuzzle(row rowScanner) (*Puzzle, error) {
	var (
		p       Puzzle
		lines   string
		created int64
	)
	if err := row.Scan(&p.ID, &p.Rows, &p.Cols, &lines, &p.Source, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lines), &p.Lines); err != nil {
		return nil, fmt.Errorf("decode lines of puzzle %s: %w", p.ID, err)
	}
	p.CreatedAt = time.Unix(0, created)
	return &p, nil
}
