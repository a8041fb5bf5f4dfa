package forge

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// ErrGenreNotFound is returned by GetGenreProfile for names outside the table.
var ErrGenreNotFound = errors.New("forge: genre not found")

const (
	fallbackGenre      = "pop"
	fallbackProduction = "studio quality, clear vocals"
	instrumentalTag    = "instrumental only, no vocals"
)

var genreProfiles = map[string]GenreProfile{
	"pop": {
		Instruments: []string{"synth", "bass", "drums", "vocal chops"},
		MinTempo:    100, MaxTempo: 130,
		Descriptor: "catchy",
	},
	"rock": {
		Instruments: []string{"electric guitar", "bass", "drums", "distortion"},
		MinTempo:    110, MaxTempo: 150,
		Descriptor: "energetic",
	},
	"hip hop": {
		Instruments: []string{"drum machine", "synth bass", "samples", "808"},
		MinTempo:    80, MaxTempo: 100,
		Descriptor: "rhythmic",
	},
	"electronic": {
		Instruments: []string{"synthesizer", "drum machine", "sequencer", "arpeggiator"},
		MinTempo:    120, MaxTempo: 140,
		Descriptor: "electronic",
	},
	"classical": {
		Instruments: []string{"orchestra", "piano", "violin", "cello"},
		MinTempo:    60, MaxTempo: 100,
		Descriptor: "orchestral",
	},
	"jazz": {
		Instruments: []string{"saxophone", "piano", "double bass", "drums"},
		MinTempo:    80, MaxTempo: 140,
		Descriptor: "smooth",
	},
	"ambient": {
		Instruments: []string{"pad", "synth", "field recordings", "reverb"},
		MinTempo:    60, MaxTempo: 90,
		Descriptor: "atmospheric",
	},
	"country": {
		Instruments: []string{"acoustic guitar", "violin", "banjo", "steel guitar"},
		MinTempo:    80, MaxTempo: 120,
		Descriptor: "acoustic",
	},
	"metal": {
		Instruments: []string{"distorted guitar", "double bass drum", "bass"},
		MinTempo:    140, MaxTempo: 200,
		Descriptor: "aggressive",
	},
	"trap": {
		Instruments: []string{"808", "hi-hats", "synth", "autotune"},
		MinTempo:    130, MaxTempo: 160,
		Descriptor: "bouncy",
	},
	"lofi": {
		Instruments: []string{"piano", "vinyl crackle", "slow drums"},
		MinTempo:    70, MaxTempo: 90,
		Descriptor: "chill",
	},
	"synthwave": {
		Instruments: []string{"synthesizer", "drum machine", "bass guitar", "retro pads"},
		MinTempo:    100, MaxTempo: 140,
		Descriptor: "retro 80s",
	},
}

func normalizeGenre(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetGenreProfile looks a genre up by name, ignoring case and surrounding space.
func GetGenreProfile(name string) (GenreProfile, error) {
	p, ok := genreProfiles[normalizeGenre(name)]
	if !ok {
		return GenreProfile{}, fmt.Errorf("%w: %q", ErrGenreNotFound, name)
	}
	return cloneProfile(p), nil
}

func GenreNames() []string {
	names := make([]string, 0, len(genreProfiles))
	for name := range genreProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsKnownGenre(name string) bool {
	_, ok := genreProfiles[normalizeGenre(name)]
	return ok
}

func resolveProfile(genre string) GenreProfile {
	if p, ok := genreProfiles[normalizeGenre(genre)]; ok {
		return p
	}
	return genreProfiles[fallbackGenre]
}

func cloneProfile(p GenreProfile) GenreProfile {
	p.Instruments = append([]string(nil), p.Instruments...)
	return p
}

// BuildStyle composes the comma-joined style line for cfg. Unknown or missing
// genres use the pop profile. When cfg.Tempo is unset a tempo is drawn from
// the profile range, so the output is not deterministic in that case.
func BuildStyle(cfg PromptConfig) string {
	return joinStyle(cfg.Genre, styleParts(cfg))
}

func styleParts(cfg PromptConfig) []string {
	profile := resolveProfile(cfg.Genre)

	parts := []string{
		cfg.Genre,
		cfg.Mood,
		tempoString(cfg.Tempo, profile),
		energyDescriptor(cfg.Energy),
		profile.Descriptor,
		strings.Join(profile.Instruments, ", "),
		cfg.Instrumentation,
	}
	if !cfg.IsInstrumental() {
		parts = append(parts, cfg.VocalStyle)
	}
	switch {
	case strings.TrimSpace(cfg.Production) != "":
		parts = append(parts, cfg.Production)
	case !cfg.IsInstrumental():
		parts = append(parts, fallbackProduction)
	}
	return uniq(fragments(parts))
}

func tempoString(tempo *int, profile GenreProfile) string {
	if tempo != nil && *tempo != 0 {
		return fmt.Sprintf("%d BPM", *tempo)
	}
	return fmt.Sprintf("%d BPM", randomTempo(profile))
}

func randomTempo(p GenreProfile) int {
	span := p.MaxTempo - p.MinTempo + 1
	if span <= 1 {
		return p.MinTempo
	}
	return p.MinTempo + rand.IntN(span)
}

func energyDescriptor(energy *float64) string {
	if energy == nil {
		return "mid energy"
	}
	switch {
	case *energy > 0.8:
		return "high energy"
	case *energy < 0.4:
		return "low energy"
	default:
		return "mid energy"
	}
}

// joinStyle joins deduplicated parts and repeats the genre at the end so it
// carries extra weight, unless the genre is the only part. The trailing
// anchor is the only fragment allowed to appear twice.
func joinStyle(genre string, parts []string) string {
	out := strings.Join(parts, ", ")
	genre = strings.TrimSpace(genre)
	if genre != "" && len(parts) > 1 {
		out += ", " + genre
	}
	return out
}

// fragments splits multi-descriptor entries such as "synth, bass" so that
// deduplication works on single comma fragments.
func fragments(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for _, p := range parts {
		out = append(out, strings.Split(p, ",")...)
	}
	return out
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
