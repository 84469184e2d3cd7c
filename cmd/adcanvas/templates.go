package main

import (
	"strings"

	"github.com/spf13/cobra"

	"adcanvas/internal/catalog"
	"adcanvas/internal/gateway/config"
)

func templatesCmd() *cobra.Command {
	var (
		query    string
		category string
		options  bool
	)
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "List the template catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(config.FromEnv().CatalogDir)
			if err != nil {
				return err
			}
			if options {
				printOptions(cat)
				return nil
			}
			list := cat.Search(query, category)
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				rows = append(rows, []string{t.ID, t.Title, t.Style, t.Category})
			}
			table([]string{"ID", "TITLE", "STYLE", "CATEGORY"}, rows)
			subtle.Printf("\n  %d template(s)\n", len(list))
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title or style")
	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category")
	cmd.Flags().BoolVar(&options, "options", false, "print the generation vocabularies instead")
	return cmd
}

func printOptions(cat *catalog.Catalog) {
	for _, group := range []struct {
		name   string
		values []string
	}{
		{"goals", cat.Goals()},
		{"formats", cat.Formats()},
		{"styles", cat.Styles()},
		{"clone modes", cat.CloneModes()},
		{"languages", cat.Languages()},
		{"tones", cat.Tones()},
		{"categories", cat.Categories()},
	} {
		brand.Printf("%s\n", group.name)
		subtle.Printf("  %s\n\n", strings.Join(group.values, ", "))
	}
}
