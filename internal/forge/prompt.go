package forge

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

const technicalTimeLayout = "20060102150405"

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
)

// now is swapped in tests to pin technical names.
var now = time.Now

// BuildPrompt assembles a named prompt from cfg. Input is expected to have
// passed validation already; nothing here fails.
func BuildPrompt(cfg PromptConfig) Prompt {
	return buildPromptAt(cfg, now().UTC())
}

func buildPromptAt(cfg PromptConfig, at time.Time) Prompt {
	styleCfg := cfg
	if cfg.IsInstrumental() {
		styleCfg.VocalStyle = ""
	}

	lyrics := ""
	if !cfg.IsInstrumental() {
		lyrics = CleanLyricsForProduction(cfg.Lyrics)
	}

	title := promptTitle(cfg)
	return Prompt{
		Title:         title,
		TechnicalName: TechnicalName(title, at),
		Style:         BuildPromptStyle(styleCfg),
		Lyrics:        lyrics,
	}
}

// BuildPromptStyle is BuildStyle extended with the prompt-level fields:
// title, language, instrumental flag, style tags and negative prompt.
// Deduplication covers the combined list and the genre anchor stays last.
func BuildPromptStyle(cfg PromptConfig) string {
	parts := styleParts(cfg)

	var extra []string
	if t := strings.TrimSpace(cfg.Title); t != "" {
		extra = append(extra, t)
	}
	if lang := strings.TrimSpace(cfg.Language); lang != "" {
		extra = append(extra, "language: "+lang)
	}
	if cfg.IsInstrumental() {
		extra = append(extra, instrumentalTag)
	}
	if tags := uniq(cfg.StyleTags); len(tags) > 0 {
		extra = append(extra, "style tags: "+strings.Join(tags, ", "))
	}
	if neg := strings.TrimSpace(cfg.NegativePrompt); neg != "" {
		extra = append(extra, "avoid: "+neg)
	}

	parts = uniq(append(parts, fragments(extra)...))
	return joinStyle(cfg.Genre, parts)
}

func promptTitle(cfg PromptConfig) string {
	if t := strings.TrimSpace(cfg.Title); t != "" {
		return t
	}
	genre := strings.TrimSpace(cfg.Genre)
	if genre == "" {
		genre = "Music"
	}
	mood := strings.TrimSpace(cfg.Mood)
	if mood == "" {
		mood = "Vibes"
	}
	return titleCase(genre) + " - " + titleCase(mood)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// TechnicalName derives a filesystem-safe name from title with a
// second-resolution timestamp suffix. A title with nothing slug-safe still
// keeps the separator.
func TechnicalName(title string, at time.Time) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), " ")
	slug = slugSpaces.ReplaceAllString(strings.TrimSpace(slug), "_")
	return slug + "_" + at.Format(technicalTimeLayout)
}
