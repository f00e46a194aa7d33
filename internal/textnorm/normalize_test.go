package textnorm_test

import (
	"testing"

	"speakd/internal/textnorm"
)

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"passthrough", "hello world", "hello world"},
		{"collapses whitespace", "hello\t\n  world", "hello world"},
		{"trims edges", "  hello  ", "hello"},
		{"drops control characters", "hel\x00lo\x07", "hello"},
		{"composes to nfc", "café", "café"},
		{"empty stays empty", "", ""},
		{"whitespace only", " \t\n ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textnorm.Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
