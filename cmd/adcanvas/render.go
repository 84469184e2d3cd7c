package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adcanvas/internal/board"
	"adcanvas/internal/render"
)

func renderCmd() *cobra.Command {
	var (
		out        string
		width      int
		height     int
		skipImages bool
	)
	cmd := &cobra.Command{
		Use:   "render <board.json>",
		Short: "Render a saved board snapshot to a PNG thumbnail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var snap board.Snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			png, err := render.Thumbnail(snap.Document, render.Options{Width: width, Height: height, SkipImages: skipImages})
			if err != nil {
				return err
			}
			if out == "" {
				out = snap.ID + ".png"
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			good.Printf("wrote %s (%d nodes, %d bytes)\n", out, len(snap.Document.Nodes), len(png))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <board id>.png)")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "image width")
	cmd.Flags().IntVar(&height, "height", render.DefaultHeight, "image height")
	cmd.Flags().BoolVar(&skipImages, "no-images", false, "draw image nodes as plain cards")
	return cmd
}
