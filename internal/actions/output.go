package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"suno-forge/internal/forge"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// write renders v as JSON or YAML, or prints text for the text format.
func write(w io.Writer, f Format, v any, text string) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, strings.TrimRight(text, "\n"))
		return err
	}
}

func promptText(p forge.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Technical name: %s\n", p.TechnicalName)
	fmt.Fprintf(&b, "Style: %s\n", p.Style)
	if p.Lyrics != "" {
		b.WriteString("\nLyrics:\n" + p.Lyrics + "\n")
	}
	return b.String()
}
