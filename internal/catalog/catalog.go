// Package catalog holds the enumerations the studio accepts (style tags,
// goals, formats, caption languages and tones) and the template gallery.
// The built-in catalog is embedded; extra TOML files in a directory extend
// or override it.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed data/*.toml
var builtin embed.FS

// Template is a gallery entry: a scene prompt rendered around the user's
// product in a given style.
type Template struct {
	ID            string `toml:"id" json:"id" validate:"required"`
	Title         string `toml:"title" json:"title" validate:"required"`
	Style         string `toml:"style" json:"style" validate:"required,style"`
	Category      string `toml:"category" json:"category" validate:"omitempty,category"`
	Prompt        string `toml:"prompt" json:"prompt" validate:"required"`
	Thumbnail     string `toml:"thumbnail" json:"thumbnail"`
	UserGenerated bool   `toml:"user_generated" json:"user_generated"`
}

type file struct {
	Goals      []string   `toml:"goals"`
	Formats    []string   `toml:"formats"`
	CloneModes []string   `toml:"clone_modes"`
	Categories []string   `toml:"categories"`
	Styles     []string   `toml:"styles"`
	Languages  []string   `toml:"languages"`
	Tones      []string   `toml:"tones"`
	Templates  []Template `toml:"templates"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	goals      []string
	formats    []string
	cloneModes []string
	categories []string
	styles     []string
	languages  []string
	tones      []string
	templates  []Template
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) { return Load("") }

// Load reads the embedded catalog and then every *.toml file under dir, if
// dir is non-empty. List values from dir are appended; templates with an
// existing id replace the built-in one.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.mergeFS(builtin, "data"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) != "" {
		if err := c.mergeFS(os.DirFS(dir), "."); err != nil {
			return nil, err
		}
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) mergeFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading catalog dir %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, entry.Name())))
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var f file
		if err := toml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		c.merge(f)
	}
	return nil
}

func (c *Catalog) merge(f file) {
	c.goals = appendUnique(c.goals, f.Goals...)
	c.formats = appendUnique(c.formats, f.Formats...)
	c.cloneModes = appendUnique(c.cloneModes, f.CloneModes...)
	c.categories = appendUnique(c.categories, f.Categories...)
	c.styles = appendUnique(c.styles, f.Styles...)
	c.languages = appendUnique(c.languages, f.Languages...)
	c.tones = appendUnique(c.tones, f.Tones...)
	for _, t := range f.Templates {
		c.upsertTemplate(t)
	}
}

func (c *Catalog) upsertTemplate(t Template) {
	for i := range c.templates {
		if c.templates[i].ID == t.ID {
			c.templates[i] = t
			return
		}
	}
	c.templates = append(c.templates, t)
}

func (c *Catalog) check() error {
	if len(c.styles) == 0 {
		return fmt.Errorf("catalog has no styles")
	}
	v := NewValidator(c)
	for _, t := range c.templates {
		if err := v.Struct(t); err != nil {
			return fmt.Errorf("template %q: %w", t.ID, err)
		}
	}
	return nil
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" || contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (c *Catalog) has(list *[]string, v string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return contains(*list, v)
}

func (c *Catalog) list(l *[]string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), (*l)...)
}

func (c *Catalog) HasStyle(v string) bool { return c.has(&c.styles, v) }
func (c *Catalog) HasGoal(v string) bool { return c.has(&c.goals, v) }
func (c *Catalog) HasFormat(v string) bool { return c.has(&c.formats, v) }
func (c *Catalog) HasCloneMode(v string) bool { return c.has(&c.cloneModes, v) }
func (c *Catalog) HasLanguage(v string) bool { return c.has(&c.languages, v) }
func (c *Catalog) HasTone(v string) bool { return c.has(&c.tones, v) }
func (c *Catalog) HasCategory(v string) bool { return c.has(&c.categories, v) }

func (c *Catalog) Styles() []string { return c.list(&c.styles) }
func (c *Catalog) Goals() []string { return c.list(&c.goals) }
func (c *Catalog) Formats() []string { return c.list(&c.formats) }
func (c *Catalog) CloneModes() []string { return c.list(&c.cloneModes) }
func (c *Catalog) Languages() []string { return c.list(&c.languages) }
func (c *Catalog) Tones() []string { return c.list(&c.tones) }
func (c *Catalog) Categories() []string { return c.list(&c.categories) }

func (c *Catalog) Templates() []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Template(nil), c.templates...)
}

func (c *Catalog) Template(id string) (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.templates {
		if t.ID == strings.TrimSpace(id) {
			return t, true
		}
	}
	return Template{}, false
}

// Search filters templates whose title or style contains query
// (case-insensitive). An empty category or "All" matches every category.
func (c *Catalog) Search(query, category string) []Template {
	q := strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	var out []Template
	for _, t := range c.Templates() {
		if category != "" && !strings.EqualFold(category, "All") && !strings.EqualFold(category, t.Category) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Style), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AddTemplate registers a community template. The id must be new and the
// style must be a known tag.
func (c *Catalog) AddTemplate(t Template) error {
	t.ID = strings.TrimSpace(t.ID)
	if err := NewValidator(c).Struct(t); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cur := range c.templates {
		if cur.ID == t.ID {
			return fmt.Errorf("template %q already exists", t.ID)
		}
	}
	t.UserGenerated = true
	c.templates = append(c.templates, t)
	return nil
}
