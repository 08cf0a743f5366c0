package ui

import (
	"strings"
	"testing"
)

func TestSuggest(t *testing.T) {
	files := []string{
		"memes/doge.png",
		"memes/cat.jpg",
		"photos/dog_park.webp",
		"a.gif", "b.gif", "c.gif", "d.gif",
	}

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"empty query lists alphabetically", "", []string{"a.gif", "b.gif", "c.gif", "d.gif", "memes/cat.jpg"}},
		{"fuzzy match", "dog", []string{"memes/doge.png", "photos/dog_park.webp"}},
		{"exact match hidden", "a.gif", nil},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggest(tt.query, files)
			if len(tt.expected) == 0 {
				if len(got) != 0 {
					t.Errorf("suggest(%q) = %v, want none", tt.query, got)
				}
				return
			}
			if len(got) < len(tt.expected) {
				t.Fatalf("suggest(%q) = %v, want %v", tt.query, got, tt.expected)
			}
			if tt.query == "" {
				if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
					t.Errorf("suggest(%q) = %v, want %v", tt.query, got, tt.expected)
				}
				return
			}
			for _, want := range tt.expected {
				found := false
				for _, g := range got {
					if g == want {
						found = true
					}
				}
				if !found {
					t.Errorf("suggest(%q) = %v, missing %q", tt.query, got, want)
				}
			}
		})
	}
}

func TestSuggestLimit(t *testing.T) {
	files := []string{"x1.png", "x2.png", "x3.png", "x4.png", "x5.png", "x6.png"}
	if got := suggest("x", files); len(got) != maxSuggestions {
		t.Errorf("suggest() returned %d, want %d", len(got), maxSuggestions)
	}
}

func TestImagePatterns(t *testing.T) {
	patterns := imagePatterns()
	has := func(p string) bool {
		for _, q := range patterns {
			if q == p {
				return true
			}
		}
		return false
	}
	for _, p := range []string{"*.png", "*.PNG", "*.webp", "*.jpeg"} {
		if !has(p) {
			t.Errorf("imagePatterns() missing %q", p)
		}
	}
}
