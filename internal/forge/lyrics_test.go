package forge

import (
	"strings"
	"testing"
)

func TestCleanLyricsForProduction(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \n\t\n ", want: ""},
		{name: "only comments", in: "// intro idea\n  // another", want: ""},
		{
			name: "blueprint",
			in:   "  [Verse]  \n// TODO: stronger rhyme\nCity lights   \n\n\n\n[Chorus]\r\n  We rise\n\n",
			want: "[Verse]\nCity lights\n\n[Chorus]\nWe rise",
		},
		{
			name: "comment between blanks collapses",
			in:   "a\n\n// note\n\nb",
			want: "a\n\nb",
		},
		{
			name: "slashes inside a line stay",
			in:   "rock // roll",
			want: "rock // roll",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanLyricsForProduction(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCleanLyricsForProductionIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\nhello\n\n\n\nworld\n\n",
		"// a\n//b\n  c  \n \n \n d",
		"[Intro]\r\n\r\n\r\n(noise)\r\n// skip\r\nend",
		"   //   \n x \n\n\n",
	}
	for _, in := range inputs {
		once := CleanLyricsForProduction(in)
		if twice := CleanLyricsForProduction(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.Contains(once, "\n\n\n") {
			t.Fatalf("blank run survived in %q", once)
		}
		for _, line := range strings.Split(once, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "//") {
				t.Fatalf("comment line survived in %q", once)
			}
		}
	}
}

func TestGenerateLyricsStructure(t *testing.T) {
	cases := []struct {
		genre    string
		sections []string
	}{
		{"pop", lyricStructures["pop"]},
		{"Dark Trap", lyricStructures["hip hop"]},
		{"death metal", lyricStructures["rock"]},
		{"deep house", lyricStructures["electronic"]},
		{"ballad", lyricStructures["ballad"]},
		{"polka", lyricStructures["default"]},
		{"", lyricStructures["default"]},
	}
	for _, tc := range cases {
		t.Run(tc.genre, func(t *testing.T) {
			out := GenerateLyrics(tc.genre, "neon rain")
			blocks := strings.Split(out, "\n\n")
			if len(blocks) != len(tc.sections) {
				t.Fatalf("got %d sections, want %d:\n%s", len(blocks), len(tc.sections), out)
			}
			for i, block := range blocks {
				if !strings.HasPrefix(block, "["+tc.sections[i]+"]\n") {
					t.Fatalf("section %d = %q, want tag %q", i, block, tc.sections[i])
				}
			}
		})
	}
}

func TestGenerateLyricsTheme(t *testing.T) {
	out := GenerateLyrics("pop", "  ")
	if !strings.Contains(out, "lost in the moment, oh lost in the moment") {
		t.Fatalf("default theme missing from chorus:\n%s", out)
	}

	out = GenerateLyrics("electronic", "summer")
	if !strings.Contains(out, "[Drop]\n(High energy instrumental)") {
		t.Fatalf("drop section missing:\n%s", out)
	}
	if !strings.Contains(out, "(Atmospheric sounds related to summer)") {
		t.Fatalf("intro missing theme:\n%s", out)
	}
}

func TestGenerateLyricsIsAlreadyClean(t *testing.T) {
	for _, genre := range []string{"pop", "rock", "hip hop", "electronic", "ballad", "jazz"} {
		out := GenerateLyrics(genre, "city lights")
		if clean := CleanLyricsForProduction(out); clean != out {
			t.Fatalf("%s: blueprint changed by cleaning:\n%q\n%q", genre, out, clean)
		}
	}
}
