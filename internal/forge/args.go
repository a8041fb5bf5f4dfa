package forge

import (
	"strconv"
	"strings"
)

// ParseArgs reads chat or terminal style arguments on top of defaults.
//
// Recognized tokens: genre=, mood=, bpm= / tempo=, energy=, vocal=, lang=,
// tag= (repeatable), avoid=, title=, the bare words instrumental and vocals,
// bare genre names and "<n>bpm". Underscores in values become spaces.
// Everything else is collected into the theme.
func ParseArgs(raw string, defaults PromptConfig) PromptConfig {
	cfg := defaults.Clone()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return cfg
	}

	var theme []string
	for _, tok := range strings.Fields(raw) {
		orig := tok
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}

		switch tok {
		case "instrumental", "novocals", "no-vocals":
			cfg.Instrumental = Bool(true)
			continue
		case "vocals", "vocal", "sing":
			cfg.Instrumental = Bool(false)
			continue
		}

		if key, value, ok := strings.Cut(orig, "="); ok {
			if applyArg(&cfg, strings.ToLower(key), argValue(value)) {
				continue
			}
		}
		if strings.HasSuffix(tok, "bpm") {
			if n, err := strconv.Atoi(strings.TrimSuffix(tok, "bpm")); err == nil && n > 0 {
				cfg.Tempo = Int(n)
				continue
			}
		}
		if g := argValue(tok); IsKnownGenre(g) {
			cfg.Genre = g
			continue
		}

		theme = append(theme, orig)
	}

	if t := strings.TrimSpace(strings.Join(theme, " ")); t != "" {
		cfg.Theme = t
	}
	return cfg
}

func argValue(v string) string {
	return strings.TrimSpace(strings.ReplaceAll(v, "_", " "))
}

func applyArg(cfg *PromptConfig, key, value string) bool {
	if value == "" {
		return false
	}
	switch key {
	case "genre", "g":
		cfg.Genre = value
	case "mood", "m":
		cfg.Mood = value
	case "bpm", "tempo":
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		cfg.Tempo = Int(n)
	case "energy", "e":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		cfg.Energy = Float(f)
	case "vocal", "voice":
		cfg.VocalStyle = value
	case "lang", "language":
		cfg.Language = value
	case "tag", "tags":
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.StyleTags = append(cfg.StyleTags, t)
			}
		}
	case "avoid", "neg":
		cfg.NegativePrompt = value
	case "title":
		cfg.Title = value
	case "prod", "production":
		cfg.Production = value
	case "inst", "instruments":
		cfg.Instrumentation = value
	default:
		return false
	}
	return true
}
