package forge

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type MutationType string

const (
	MutationViral          MutationType = "viral"
	MutationEmotional      MutationType = "emotional"
	MutationEnergy         MutationType = "energy"
	MutationInstrumental   MutationType = "instrumental"
	MutationTempoShiftUp   MutationType = "tempo-shift-up"
	MutationTempoShiftDown MutationType = "tempo-shift-down"
	MutationMoodInvert     MutationType = "mood-invert"
	MutationGenreBlend     MutationType = "genre-blend"
)

// ErrUnknownMutation matches any UnknownMutationError via errors.Is.
var ErrUnknownMutation = errors.New("forge: unknown mutation type")

// UnknownMutationError reports a mutation type outside the fixed set. Callers
// are expected to validate first, so this indicates a caller bug.
type UnknownMutationError struct {
	Type string
}

func (e UnknownMutationError) Error() string {
	return fmt.Sprintf("forge: unknown mutation type %q", e.Type)
}

func (e UnknownMutationError) Is(target error) bool {
	return target == ErrUnknownMutation
}

var mutationOrder = []MutationType{
	MutationViral,
	MutationEmotional,
	MutationEnergy,
	MutationInstrumental,
	MutationTempoShiftUp,
	MutationTempoShiftDown,
	MutationMoodInvert,
	MutationGenreBlend,
}

func MutationTypes() []MutationType {
	return append([]MutationType(nil), mutationOrder...)
}

func (t MutationType) Valid() bool {
	_, ok := mutations[t]
	return ok
}

var mutations = map[MutationType]func(string) string{
	MutationViral:          appendMutation("short, repetitive, catchy hook, high recall, earworm melody"),
	MutationEmotional:      appendMutation("deep, vulnerable, expressive lyrics, heartfelt delivery, emotional resonance"),
	MutationEnergy:         appendMutation("fast tempo, aggressive delivery, high energy, intense, driving rhythm"),
	MutationInstrumental:   stripVocals,
	MutationTempoShiftUp:   shiftTempo(20, "uptempo, faster pace"),
	MutationTempoShiftDown: shiftTempo(-20, "downtempo, slower pace"),
	MutationMoodInvert:     invertMood,
	MutationGenreBlend:     appendMutation("genre fusion, experimental blend, cross-genre elements"),
}

func MutatePrompt(prompt string, t MutationType) (string, error) {
	fn, ok := mutations[t]
	if !ok {
		return "", UnknownMutationError{Type: string(t)}
	}
	return fn(prompt), nil
}

func appendMutation(suffix string) func(string) string {
	return func(prompt string) string {
		return prompt + ", " + suffix
	}
}

// vocalWord matches a vocal word and the rest of its comma fragment. Words
// before it in the same fragment are kept.
var vocalWord = regexp.MustCompile(`(?i)\b(?:vocals?|singing|lyrics|voice|sung)\b[^,]*`)

func stripVocals(prompt string) string {
	kept := make([]string, 0, strings.Count(prompt, ",")+2)
	for _, frag := range strings.Split(vocalWord.ReplaceAllString(prompt, ""), ",") {
		if frag = strings.TrimSpace(frag); frag != "" {
			kept = append(kept, frag)
		}
	}
	return strings.Join(append(kept, instrumentalTag), ", ")
}

const (
	maxShiftedTempo = 200
	minShiftedTempo = 40
)

var bpmPattern = regexp.MustCompile(`(?i)\b(\d{1,9})\s*BPM\b`)

func shiftTempo(delta int, fallback string) func(string) string {
	return func(prompt string) string {
		loc := bpmPattern.FindStringSubmatchIndex(prompt)
		if loc == nil {
			return prompt + ", " + fallback
		}
		value, _ := strconv.Atoi(prompt[loc[2]:loc[3]])
		value += delta
		if delta > 0 {
			value = min(value, maxShiftedTempo)
		} else {
			value = max(value, minShiftedTempo)
		}
		return prompt[:loc[0]] + strconv.Itoa(value) + " BPM" + prompt[loc[1]:]
	}
}

// moodInversions is not symmetric: happy becomes melancholic but
// melancholic becomes joyful.
var moodInversions = []struct{ from, to string }{
	{"happy", "melancholic"},
	{"sad", "uplifting"},
	{"dark", "bright"},
	{"light", "dark"},
	{"uplifting", "somber"},
	{"melancholic", "joyful"},
	{"energetic", "calm"},
	{"calm", "energetic"},
	{"aggressive", "gentle"},
	{"gentle", "intense"},
}

var moodPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(moodInversions))
	for i, inv := range moodInversions {
		out[i] = regexp.MustCompile(`(?i)\b` + inv.from + `\b`)
	}
	return out
}()

const (
	sentinelOpen  = "\uE000"
	sentinelClose = "\uE001"
	escapedOpen   = sentinelOpen + "e" + sentinelClose
)

var sentinelPattern = regexp.MustCompile(sentinelOpen + `(?:(e)|(\d+)(u?))` + sentinelClose)

// invertMood swaps mood words in two passes through sentinel tokens so a word
// replaced in this call is never replaced again. Sentinel runes already in
// the prompt are escaped first and restored on the second pass.
func invertMood(prompt string) string {
	out := strings.ReplaceAll(prompt, sentinelOpen, escapedOpen)
	for i, re := range moodPatterns {
		idx := i
		out = re.ReplaceAllStringFunc(out, func(word string) string {
			upper := ""
			if r, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(r) {
				upper = "u"
			}
			return sentinelOpen + strconv.Itoa(idx) + upper + sentinelClose
		})
	}
	return sentinelPattern.ReplaceAllStringFunc(out, func(tok string) string {
		m := sentinelPattern.FindStringSubmatch(tok)
		if m[1] != "" {
			return sentinelOpen
		}
		idx, _ := strconv.Atoi(m[2])
		target := moodInversions[idx].to
		if m[3] == "u" {
			r, size := utf8.DecodeRuneInString(target)
			target = string(unicode.ToUpper(r)) + target[size:]
		}
		return target
	})
}

func ParseMutationType(s string) (MutationType, error) {
	t := MutationType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", UnknownMutationError{Type: s}
	}
	return t, nil
}
