package boardstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"adcanvas/internal/board"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresDB wraps an existing handle.
func NewPostgresDB(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS board_snapshots (
  board_id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  node_count INTEGER NOT NULL DEFAULT 0,
  document JSONB NOT NULL,
  viewport JSONB NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_board_snapshots_updated_at ON board_snapshots (updated_at DESC);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Save(ctx context.Context, snap board.Snapshot) error {
	id, err := checkID(snap.ID)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	doc, err := json.Marshal(snap.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	vp, err := json.Marshal(snap.Viewport)
	if err != nil {
		return fmt.Errorf("encode viewport: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO board_snapshots (board_id, name, node_count, document, viewport, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (board_id)
DO UPDATE SET name=EXCLUDED.name,
  node_count=EXCLUDED.node_count,
  document=EXCLUDED.document,
  viewport=EXCLUDED.viewport,
  updated_at=EXCLUDED.updated_at
`, id, snap.Name, len(snap.Document.Nodes), doc, vp, snap.CreatedAt, snap.UpdatedAt)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, id string) (board.Snapshot, error) {
	id, err := checkID(id)
	if err != nil {
		return board.Snapshot{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return board.Snapshot{}, err
	}
	var (
		snap    board.Snapshot
		doc, vp []byte
	)
	err = s.db.QueryRowContext(ctx, `SELECT board_id, name, document, viewport, created_at, updated_at
FROM board_snapshots WHERE board_id = $1`, id).
		Scan(&snap.ID, &snap.Name, &doc, &vp, &snap.CreatedAt, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return board.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return board.Snapshot{}, err
	}
	if err := json.Unmarshal(doc, &snap.Document); err != nil {
		return board.Snapshot{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	if err := json.Unmarshal(vp, &snap.Viewport); err != nil {
		return board.Snapshot{}, fmt.Errorf("decode viewport %s: %w", id, err)
	}
	return snap, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]board.Summary, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT board_id, name, node_count, updated_at
FROM board_snapshots ORDER BY updated_at DESC, board_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []board.Summary
	for rows.Next() {
		var sum board.Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Nodes, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	id, err := checkID(id)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM board_snapshots WHERE board_id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
