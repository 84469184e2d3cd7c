// Package gallery persists published ad images and their metadata.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("gallery item not found")

// Item describes one published image. The image bytes are stored beside it.
type Item struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	NodeID    string    `json:"node_id"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt,omitempty"`
	Style     string    `json:"style,omitempty"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines operations for persisting gallery items.
type Store interface {
	Put(ctx context.Context, item Item, image []byte) error
	Get(ctx context.Context, id string) (Item, []byte, error)
	// GetURL returns a direct download URL, or "" when the backend serves
	// bytes only.
	GetURL(ctx context.Context, id string) (string, error)
	// List returns items newest first.
	List(ctx context.Context) ([]Item, error)
}

func checkItem(item Item, image []byte) error {
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("item.id is required")
	}
	if !strings.HasPrefix(item.MIMEType, "image/") {
		return fmt.Errorf("item %s: mime type %q is not an image", item.ID, item.MIMEType)
	}
	if len(image) == 0 {
		return fmt.Errorf("item %s: image is empty", item.ID)
	}
	return nil
}

func newestFirst(items []Item) func(i, j int) bool {
	return func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	}
}
