package graph

import (
	"errors"
	"testing"

	"adcanvas/internal/tester"
)

func TestSelectionReplaceAndToggle(t *testing.T) {
	sel := NewSelection()
	sel.Replace("a")
	sel.Toggle("b")
	sel.Toggle("c")
	tester.Eq(t, sel.IDs(), []string{"a", "b", "c"})

	sel.Toggle("b")
	tester.Eq(t, sel.IDs(), []string{"a", "c"})

	sel.Replace("z")
	tester.Eq(t, sel.IDs(), []string{"z"})
}

func TestSelectionClearIsIdempotent(t *testing.T) {
	sel := NewSelection()
	sel.Set([]string{"a", "b", "a"})
	tester.Eq(t, sel.Len(), 2)
	sel.Clear()
	sel.Clear()
	tester.Eq(t, sel.Len(), 0)
	tester.Len(t, sel.IDs(), 0)
}

func TestSelectionTracksRemovedNodes(t *testing.T) {
	s := NewStore()
	seed(t, s, "a", "b", "c")
	sel := NewSelection()
	defer sel.Track(s)()

	sel.Set([]string{"a", "b", "c"})
	s.RemoveNodes("b")
	tester.Eq(t, sel.IDs(), []string{"a", "c"})

	tester.NoErr(t, s.Restore(Document{}))
	tester.Eq(t, sel.Len(), 0)
}

func TestSelectionSetExistingRejectsUnknownIDs(t *testing.T) {
	s := NewStore()
	seed(t, s, "a", "b")
	sel := NewSelection()
	sel.Replace("a")

	err := sel.SetExisting([]string{"b", "ghost"}, s.Has)
	tester.True(t, errors.Is(err, ErrNodeNotFound))
	tester.Eq(t, sel.IDs(), []string{"a"})

	tester.NoErr(t, sel.SetExisting([]string{"b", "a", " "}, s.Has))
	tester.Eq(t, sel.IDs(), []string{"b", "a"})
}
