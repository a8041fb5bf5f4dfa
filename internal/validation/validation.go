// Package validation guards the forge core against untrusted input.
//
// Every predicate works on the generic shape produced by decoding JSON into
// an any value: map[string]any objects, float64 numbers, string, bool and
// []any arrays. Predicates never panic and have no side effects.
package validation

import (
	"math"
	"strings"
	"unicode/utf8"

	"suno-forge/internal/forge"
)

const (
	MaxShortField = 500
	MaxTitle      = 100
	MaxLongField  = 5000
	MaxStyleTags  = 20

	MinTempo = 20
	MaxTempo = 300

	MinBatchCount = 1
	MaxBatchCount = 50
)

var stringLimits = map[string]int{
	"title":           MaxTitle,
	"genre":           MaxShortField,
	"mood":            MaxShortField,
	"instrumentation": MaxShortField,
	"vocalStyle":      MaxShortField,
	"production":      MaxShortField,
	"language":        MaxShortField,
	"negativePrompt":  MaxShortField,
	"theme":           MaxLongField,
	"lyrics":          MaxLongField,
}

// ValidatePromptConfig reports whether v is an object whose known fields
// carry the right types and stay within bounds. Unknown keys are ignored.
func ValidatePromptConfig(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return false
	}

	for key, limit := range stringLimits {
		raw, present := obj[key]
		if !present {
			continue
		}
		if !isStringWithin(raw, limit) {
			return false
		}
	}

	if raw, present := obj["tempo"]; present {
		n, ok := number(raw)
		if !ok || n < MinTempo || n > MaxTempo {
			return false
		}
	}
	if raw, present := obj["energy"]; present {
		n, ok := number(raw)
		if !ok || n < 0 || n > 1 {
			return false
		}
	}
	if raw, present := obj["instrumental"]; present {
		if _, ok := raw.(bool); !ok {
			return false
		}
	}
	if raw, present := obj["styleTags"]; present {
		tags, ok := stringSlice(raw)
		if !ok || len(tags) > MaxStyleTags {
			return false
		}
		for _, tag := range tags {
			if utf8.RuneCountInString(tag) > MaxShortField {
				return false
			}
		}
	}
	return true
}

func ValidateMutationType(v any) bool {
	switch t := v.(type) {
	case string:
		return forge.MutationType(t).Valid()
	case forge.MutationType:
		return t.Valid()
	}
	return false
}

func ValidateBatchRequest(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return false
	}
	if !ValidatePromptConfig(obj["config"]) {
		return false
	}
	n, ok := number(obj["count"])
	return ok && n >= MinBatchCount && n <= MaxBatchCount
}

func ValidateVisionRequest(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return false
	}
	return isNonBlankWithin(obj["description"], MaxLongField)
}

func ValidateMutateRequest(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return false
	}
	if !isNonBlankWithin(obj["prompt"], MaxLongField) {
		return false
	}
	return ValidateMutationType(obj["type"])
}

// ValidateLyricsRequest checks {genre?, theme?}.
func ValidateLyricsRequest(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return false
	}
	if raw, present := obj["genre"]; present && !isStringWithin(raw, MaxShortField) {
		return false
	}
	if raw, present := obj["theme"]; present && !isStringWithin(raw, MaxLongField) {
		return false
	}
	return true
}

// PromptConfigFrom validates v and converts it into a forge.PromptConfig.
// Tempo is rounded to the nearest whole BPM.
func PromptConfigFrom(v any) (forge.PromptConfig, bool) {
	if !ValidatePromptConfig(v) {
		return forge.PromptConfig{}, false
	}
	obj := v.(map[string]any)

	str := func(key string) string {
		s, _ := obj[key].(string)
		return s
	}

	cfg := forge.PromptConfig{
		Title:           str("title"),
		Genre:           str("genre"),
		Mood:            str("mood"),
		Instrumentation: str("instrumentation"),
		VocalStyle:      str("vocalStyle"),
		Production:      str("production"),
		Theme:           str("theme"),
		Lyrics:          str("lyrics"),
		Language:        str("language"),
		NegativePrompt:  str("negativePrompt"),
	}
	if n, ok := number(obj["tempo"]); ok {
		cfg.Tempo = forge.Int(int(math.Round(n)))
	}
	if n, ok := number(obj["energy"]); ok {
		cfg.Energy = forge.Float(n)
	}
	if b, ok := obj["instrumental"].(bool); ok {
		cfg.Instrumental = forge.Bool(b)
	}
	if tags, ok := stringSlice(obj["styleTags"]); ok && len(tags) > 0 {
		cfg.StyleTags = tags
	}
	return cfg, true
}

// ConfigMap renders a typed config in the generic shape the predicates
// accept. Absent fields are left out.
func ConfigMap(cfg forge.PromptConfig) map[string]any {
	obj := make(map[string]any)
	put := func(key, val string) {
		if val != "" {
			obj[key] = val
		}
	}
	put("title", cfg.Title)
	put("genre", cfg.Genre)
	put("mood", cfg.Mood)
	put("instrumentation", cfg.Instrumentation)
	put("vocalStyle", cfg.VocalStyle)
	put("production", cfg.Production)
	put("theme", cfg.Theme)
	put("lyrics", cfg.Lyrics)
	put("language", cfg.Language)
	put("negativePrompt", cfg.NegativePrompt)
	if cfg.Tempo != nil {
		obj["tempo"] = *cfg.Tempo
	}
	if cfg.Energy != nil {
		obj["energy"] = *cfg.Energy
	}
	if cfg.Instrumental != nil {
		obj["instrumental"] = *cfg.Instrumental
	}
	if cfg.StyleTags != nil {
		obj["styleTags"] = append([]string(nil), cfg.StyleTags...)
	}
	return obj
}

func ValidateConfig(cfg forge.PromptConfig) bool {
	return ValidatePromptConfig(ConfigMap(cfg))
}

func isStringWithin(v any, limit int) bool {
	s, ok := v.(string)
	return ok && utf8.RuneCountInString(s) <= limit
}

func isNonBlankWithin(v any, limit int) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != "" && utf8.RuneCountInString(s) <= limit
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...), true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}
