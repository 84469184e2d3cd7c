package prompt

import (
	"bytes"
	"fmt"
	"strings"
)

// Sections renders a prompt as titled blocks in insertion order. Empty
// blocks are skipped.
type Sections struct {
	buf bytes.Buffer
}

func (s *Sections) Add(title, body string) *Sections {
	if strings.TrimSpace(body) == "" {
		return s
	}
	s.buf.WriteString("[")
	s.buf.WriteString(title)
	s.buf.WriteString("]\n")
	s.buf.WriteString(strings.TrimSpace(body))
	s.buf.WriteString("\n\n")
	return s
}

// List adds a bulleted block.
func (s *Sections) List(title string, items ...string) *Sections {
	return s.Add(title, formatList(items))
}

// Fields adds a "key: value" block, dropping empty values.
func (s *Sections) Fields(title string, kv ...string) *Sections {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		v := strings.TrimSpace(kv[i+1])
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", kv[i], v)
	}
	return s.Add(title, b.String())
}

func (s *Sections) String() string {
	return strings.TrimSpace(s.buf.String()) + "\n"
}

func formatList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}
