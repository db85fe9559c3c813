package textutil

import (
	"strings"
	"testing"
)

func TestNormalizeMatchText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Atlas Capital, closes $2.1bn Fund!",
			want:  "atlas capital closes 2 1bn fund",
		},
		{
			name:  "collapses whitespace runs",
			input: "  hedge   fund \t launch  ",
			want:  "hedge fund launch",
		},
		{
			name:  "folds accents",
			input: "Société Générale",
			want:  "societe generale",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMatchText(tt.input); got != tt.want {
				t.Errorf("NormalizeMatchText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a \n b\tc "); got != "a b c" {
		t.Errorf("CollapseWhitespace = %q, want %q", got, "a b c")
	}
}

func TestContentFingerprint(t *testing.T) {
	t.Run("drops stopwords", func(t *testing.T) {
		got := ContentFingerprint("The fund of Atlas is closed")
		if got != "fund atlas closed" {
			t.Errorf("ContentFingerprint = %q", got)
		}
	})

	t.Run("caps token count", func(t *testing.T) {
		long := strings.Repeat("alpha beta gamma delta ", 20)
		got := ContentFingerprint(long)
		if n := len(strings.Fields(got)); n != fingerprintTokenLimit {
			t.Errorf("fingerprint has %d tokens, want %d", n, fingerprintTokenLimit)
		}
	})

	t.Run("stable across reruns", func(t *testing.T) {
		input := "Meridian Partners raises debut infrastructure fund"
		if ContentFingerprint(input) != ContentFingerprint(input) {
			t.Error("fingerprint not deterministic")
		}
	})
}

func TestNormalizeSourceURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips www query and fragment",
			raw:  "https://WWW.Example.com/news/?utm=1#top",
			want: "example.com/news",
		},
		{
			name: "strips trailing slash",
			raw:  "https://feeds.example.com/rss/",
			want: "feeds.example.com/rss",
		},
		{
			name: "schemeless input",
			raw:  "Example.com/Feed",
			want: "example.com/Feed",
		},
		{
			name: "unparseable falls back to lowercased trim",
			raw:  "  ht tp://%%bad  ",
			want: "ht tp://%%bad",
		},
		{
			name: "empty",
			raw:  "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSourceURL(tt.raw); got != tt.want {
				t.Errorf("NormalizeSourceURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestHash32(t *testing.T) {
	if Hash32("reuters.com") != Hash32("reuters.com") {
		t.Error("Hash32 not deterministic")
	}
	if Hash32("reuters.com") == Hash32("bloomberg.com") {
		t.Error("expected distinct hashes for distinct inputs")
	}
}
