package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

// Output colours.
var (
	brand  = color.New(color.FgHiMagenta, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:           "adcanvas",
	Short:         "adcanvas: AI ad concepts on an infinite canvas",
	Long:          brand.Sprint("adcanvas") + " generates, remixes and captions ad concepts\n" + subtle.Sprint("Run the studio server or drive generation from the terminal"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.SetVersionTemplate("adcanvas {{ .Version }}\n")
	rootCmd.AddCommand(
		serveCmd(),
		templatesCmd(),
		generateCmd(),
		renderCmd(),
	)
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		bad.Printf("adcanvas: %v\n", err)
	}
	return err
}

// table prints rows aligned under headers.
func table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		subtle.Println("  (none)")
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var head, sep strings.Builder
	head.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		fmt.Fprintf(&head, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	subtle.Println(head.String())
	subtle.Println(sep.String())
	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Println(line.String())
	}
}
