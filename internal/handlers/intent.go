package handlers

import (
	"slices"
	"strings"

	"suno-forge/internal/forge"
)

// mutationIntents is checked in order; the first keyword found wins.
var mutationIntents = []struct {
	keywords []string
	mutation forge.MutationType
}{
	{[]string{"no vocals", "without vocals", "no voice", "instrumental version", "remove vocals"}, forge.MutationInstrumental},
	{[]string{"faster", "speed up", "speed it up", "uptempo"}, forge.MutationTempoShiftUp},
	{[]string{"slower", "slow down", "slow it down", "downtempo"}, forge.MutationTempoShiftDown},
	{[]string{"opposite mood", "flip the mood", "flip mood", "invert mood", "invert the mood"}, forge.MutationMoodInvert},
	{[]string{"viral", "catchy", "catchier", "earworm"}, forge.MutationViral},
	{[]string{"emotional", "heartfelt", "sadder"}, forge.MutationEmotional},
	{[]string{"energy", "energetic", "harder", "hype", "intense", "louder"}, forge.MutationEnergy},
	{[]string{"blend", "mix genres", "cross-genre", "genre fusion"}, forge.MutationGenreBlend},
}

// standalone keywords read as edits even without a cue like "make it".
var standalone = []string{
	"no vocals", "without vocals", "remove vocals",
	"faster", "speed up", "slower", "slow down",
	"opposite mood", "flip the mood", "invert mood",
	"catchier", "sadder", "louder",
	"mix genres",
}

var editPhrases = []string{"make it", "make this", "make the", "turn it", "can you", "could you", "a bit", "a little"}

var editWords = []string{"more", "less", "now", "please", "again", "too", "bit"}

// mutationIntent maps a short request like "make it faster" to a mutation.
// Long messages and plain descriptions ("aggressive metal") are left to the
// prompt builder.
func mutationIntent(text string) (forge.MutationType, bool) {
	p := strings.ToLower(strings.TrimSpace(strings.Trim(text, "!.?")))
	words := strings.Fields(p)
	if len(words) == 0 || len(words) > 8 {
		return "", false
	}

	if t := forge.MutationType(p); t.Valid() {
		return t, true
	}

	cued := hasEditCue(p, words)
	for _, in := range mutationIntents {
		for _, kw := range in.keywords {
			if !strings.Contains(p, kw) {
				continue
			}
			if cued || p == kw || slices.Contains(standalone, kw) {
				return in.mutation, true
			}
		}
	}
	return "", false
}

func hasEditCue(p string, words []string) bool {
	for _, ph := range editPhrases {
		if strings.Contains(p, ph) {
			return true
		}
	}
	for _, w := range words {
		if slices.Contains(editWords, w) {
			return true
		}
	}
	return false
}
