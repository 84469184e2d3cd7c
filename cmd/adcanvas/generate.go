package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"adcanvas/internal/board"
	"adcanvas/internal/canvas/graph"
	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/config"
	"adcanvas/internal/gateway/repository/boardstore"
	"adcanvas/internal/llm"
	"adcanvas/internal/media"
	"adcanvas/internal/prompt"
	"adcanvas/internal/studio"
)

func generateCmd() *cobra.Command {
	var (
		product     string
		description string
		goal        string
		format      string
		styles      []string
		mode        string
		count       int
		outDir      string
		saveDir     string
		fake        bool
		verbose     bool
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of ad concepts for a product image",
		Example: "  adcanvas generate --product mug.png --count 3 --out ./ads\n" +
			"  adcanvas generate --product mug.png --fake --save ./data/boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			llmCfg := cfg.LLM()
			if fake {
				llmCfg.Provider = "fake"
			}
			if verbose {
				llmCfg.Hooks = append(llmCfg.Hooks, &traceHook{})
			}
			logger := zap.NewNop()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			provider, err := llm.New(ctx, llmCfg, logger, nil)
			if err != nil {
				return err
			}
			defer provider.Close()
			if !provider.Configured() {
				return fmt.Errorf("generation is not configured: %s (use --fake for offline runs)", provider.Reason())
			}
			cat, err := catalog.Load(cfg.CatalogDir)
			if err != nil {
				return err
			}

			f, err := os.Open(product)
			if err != nil {
				return err
			}
			uri, err := media.ReadFile(filepath.Base(product), f, cfg.Limits.MaxUploadBytes)
			_ = f.Close()
			if err != nil {
				return err
			}

			b := board.New(uuid.NewString(), filepath.Base(product), board.Deps{
				Provider:  provider,
				Catalog:   cat,
				Logger:    logger,
				Timeout:   timeout,
				MaxUpload: cfg.Limits.MaxUploadBytes,
			})
			defer b.Close()
			if err := b.Studio.SetProduct(studio.ProductProfile{Image: uri, Description: description}); err != nil {
				return err
			}

			params := studio.DefaultParams()
			if goal != "" {
				params.Goal = goal
			}
			if format != "" {
				params.Format = format
			}
			if len(styles) > 0 {
				params.Styles = styles
			}
			if mode != "" {
				params.CloneMode = prompt.CloneMode(mode)
			}
			if count > 0 {
				params.Count = count
			}

			brand.Printf("generating %d concept(s) with %s\n", params.Count, provider.Name())
			tasks, err := b.Studio.Generate(ctx, params)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				if werr := t.Wait(ctx); werr != nil && errors.Is(werr, context.DeadlineExceeded) {
					warn.Printf("  %s timed out\n", t.NodeID)
				}
			}

			rows, failed, err := writeResults(b.Store.Nodes(), outDir)
			if err != nil {
				return err
			}
			table([]string{"NODE", "STATE", "HEADLINE", "FILE"}, rows)
			if saveDir != "" {
				snap := b.Snapshot()
				if err := boardstore.NewFileStore(saveDir).Save(ctx, snap); err != nil {
					return err
				}
				good.Printf("\n  saved board %s to %s\n", snap.ID, saveDir)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d concept(s) failed", failed, len(rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&product, "product", "p", "", "product image file")
	cmd.Flags().StringVarP(&description, "description", "d", "", "product description")
	cmd.Flags().StringVar(&goal, "goal", "", "campaign goal")
	cmd.Flags().StringVar(&format, "format", "", "ad format")
	cmd.Flags().StringSliceVar(&styles, "style", nil, "visual style (repeatable)")
	cmd.Flags().StringVar(&mode, "mode", "", "clone mode: recreate or edit")
	cmd.Flags().IntVarP(&count, "count", "n", prompt.DefaultConceptCount, "number of concepts")
	cmd.Flags().StringVarP(&outDir, "out", "o", "out", "directory for generated images")
	cmd.Flags().StringVar(&saveDir, "save", "", "also save the board snapshot under this directory")
	cmd.Flags().BoolVar(&fake, "fake", false, "use the offline fake collaborator")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every model call")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

// traceHook prints one line per model call.
type traceHook struct {
	mu    sync.Mutex
	start map[string]time.Time
}

func (h *traceHook) key(c llm.Call) string { return string(c.Kind) + "/" + c.Phase }

func (h *traceHook) Before(_ context.Context, c llm.Call) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.start == nil {
		h.start = make(map[string]time.Time)
	}
	h.start[h.key(c)] = time.Now()
	subtle.Printf("  -> %-6s %-10s %d bytes\n", c.Kind, c.Phase, c.Bytes)
}

func (h *traceHook) After(_ context.Context, c llm.Call, err error) {
	h.mu.Lock()
	elapsed := time.Since(h.start[h.key(c)]).Round(time.Millisecond)
	h.mu.Unlock()
	if err != nil {
		bad.Printf("  <- %-6s %-10s %s: %v\n", c.Kind, c.Phase, elapsed, err)
		return
	}
	good.Printf("  <- %-6s %-10s %s\n", c.Kind, c.Phase, elapsed)
}

// writeResults stores every finished image under dir and returns one table
// row per node.
func writeResults(nodes []graph.Node, dir string) ([][]string, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, 0, err
	}
	rows := make([][]string, 0, len(nodes))
	failed := 0
	for _, n := range nodes {
		file := "-"
		state := string(n.State())
		switch {
		case n.State() == graph.StateFailed:
			failed++
			state = bad.Sprint(state)
		case n.HasImage():
			mimeType, data, err := media.Decode(n.Content)
			if err != nil {
				return nil, 0, err
			}
			file = filepath.Join(dir, n.ID+extension(mimeType))
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return nil, 0, err
			}
			state = good.Sprint(state)
		}
		rows = append(rows, []string{n.ID[:min(8, len(n.ID))], state, firstNonEmpty(n.Meta.Headline, n.Title), file})
	}
	return rows, failed, nil
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
