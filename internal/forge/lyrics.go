package forge

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const commentMarker = "//"

// CleanLyricsForProduction turns blueprint lyrics into production-ready text:
// comment lines are dropped, every line is trimmed and runs of blank lines
// collapse into one. Applying it twice gives the same result as once.
func CleanLyricsForProduction(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, commentMarker) {
			continue
		}
		if line == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

var lyricStructures = map[string][]string{
	"pop":        {"Verse 1", "Chorus", "Verse 2", "Chorus", "Bridge", "Chorus", "Outro"},
	"rock":       {"Verse 1", "Chorus", "Verse 2", "Chorus", "Guitar Solo", "Chorus", "Outro"},
	"hip hop":    {"Intro", "Verse 1", "Chorus", "Verse 2", "Chorus", "Verse 3", "Outro"},
	"electronic": {"Intro", "Build", "Drop", "Break", "Build", "Drop", "Outro"},
	"ballad":     {"Intro", "Verse 1", "Chorus", "Verse 2", "Chorus", "Bridge", "Chorus", "Outro"},
	"default":    {"Verse 1", "Chorus", "Verse 2", "Chorus", "Outro"},
}

const defaultTheme = "lost in the moment"

func structureFamily(genre string) string {
	g := normalizeGenre(genre)
	switch {
	case g == "":
		return "default"
	case strings.Contains(g, "trap"), strings.Contains(g, "rap"):
		return "hip hop"
	case strings.Contains(g, "metal"), strings.Contains(g, "punk"):
		return "rock"
	case strings.Contains(g, "house"), strings.Contains(g, "techno"), strings.Contains(g, "dubstep"):
		return "electronic"
	}
	if _, ok := lyricStructures[g]; ok {
		return g
	}
	return "default"
}

// GenerateLyrics writes a sectioned lyrics blueprint around theme, shaped by
// the song structure typical for genre. Verse lines are picked at random.
func GenerateLyrics(genre, theme string) string {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = defaultTheme
	}

	verseLines := []string{
		fmt.Sprintf("Walking through the %s, can't turn back", theme),
		fmt.Sprintf("Reflections of %s everywhere I look", theme),
		fmt.Sprintf("Time stands still when %s is on my mind", theme),
		fmt.Sprintf("Voices whispering about %s in the dark", theme),
	}

	structure := lyricStructures[structureFamily(genre)]
	sections := make([]string, 0, len(structure))
	for _, part := range structure {
		var body string
		switch {
		case part == "Chorus":
			body = fmt.Sprintf("%s, oh %s\n(Repeat hook about %s)", theme, theme, theme)
		case strings.HasPrefix(part, "Verse"):
			body = verseLines[rand.IntN(len(verseLines))] + "\n" + fmt.Sprintf("(Continue story about %s...)", theme)
		case part == "Intro", part == "Outro":
			body = fmt.Sprintf("(Atmospheric sounds related to %s)", theme)
		case part == "Drop":
			body = "(High energy instrumental)"
		default:
			body = "(Instrumental or lyrics)"
		}
		sections = append(sections, "["+part+"]\n"+body)
	}
	return strings.Join(sections, "\n\n")
}
