// Package boardstore persists board snapshots: a JSON file per board by
// default, or a Postgres table when a DSN is configured.
package boardstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"adcanvas/internal/board"
)

var ErrNotFound = errors.New("saved board not found")

type Store interface {
	Save(ctx context.Context, s board.Snapshot) error
	Load(ctx context.Context, id string) (board.Snapshot, error)
	// List returns summaries, most recently updated first.
	List(ctx context.Context) ([]board.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Open picks the Postgres backend when dsn is set and falls back to the
// file backend under dir when it is empty or unreachable.
func Open(ctx context.Context, dsn, dir string, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn = strings.TrimSpace(dsn); dsn != "" {
		pg, err := NewPostgres(ctx, dsn)
		if err == nil {
			logger.Info("board store: postgres")
			return pg
		}
		logger.Warn("board store: postgres unavailable, using files", zap.Error(err))
	}
	logger.Info("board store: files", zap.String("dir", dir))
	return NewFileStore(dir)
}

func checkID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("board id is required")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid board id %q", id)
	}
	return id, nil
}

func byRecent(list []board.Summary) func(i, j int) bool {
	return func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	}
}
