package tester

import (
	"fmt"
	"math"
	"reflect"
	"testing"
)

// Eq asserts that got == want using reflect.DeepEqual for non-comparable types.
func Eq[T any](t *testing.T, got, want T, msgAndArgs ...any) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s: got=%v want=%v", msg, got, want)
		}
		t.Fatalf("got=%v want=%v", got, want)
	}
}

// Near asserts that |got-want| <= eps.
func Near(t *testing.T, got, want, eps float64, msgAndArgs ...any) {
	t.Helper()
	if math.Abs(got-want) > eps {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s: got=%v want=%v (eps %v)", msg, got, want, eps)
		}
		t.Fatalf("got=%v want=%v (eps %v)", got, want, eps)
	}
}

// Len asserts the length of a slice.
func Len[T any](t *testing.T, s []T, n int, msgAndArgs ...any) {
	t.Helper()
	if len(s) != n {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s: len=%d want=%d (%v)", msg, len(s), n, s)
		}
		t.Fatalf("len=%d want=%d (%v)", len(s), n, s)
	}
}

// True asserts that cond is true.
func True(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if !cond {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s", msg)
		}
		t.Fatalf("expected condition to be true")
	}
}

// False asserts that cond is false.
func False(t *testing.T, cond bool, msgAndArgs ...any) {
	t.Helper()
	if cond {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s", msg)
		}
		t.Fatalf("expected condition to be false")
	}
}

// NoErr asserts that err is nil.
func NoErr(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s: %v", msg, err)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}

// Err asserts that err is non-nil.
func Err(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err == nil {
		if msg := message(msgAndArgs); msg != "" {
			t.Fatalf("%s: expected an error", msg)
		}
		t.Fatalf("expected an error")
	}
}

// message formats msgAndArgs as fmt.Sprintf(format, args...) when the first
// element is a string.
func message(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if format, ok := msgAndArgs[0].(string); ok {
		if len(msgAndArgs) == 1 {
			return format
		}
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
