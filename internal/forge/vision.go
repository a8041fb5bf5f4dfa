package forge

import "strings"

type keywordMood struct {
	keyword string
	genre   string
	mood    string
}

// visionKeywords is scanned in order; the first keyword found wins.
var visionKeywords = []keywordMood{
	{"party", "pop", "upbeat"},
	{"dance", "edm", "energetic"},
	{"club", "house", "thumping"},
	{"sad", "acoustic", "melancholic"},
	{"rain", "lofi", "chill"},
	{"night", "jazz", "smooth"},
	{"forest", "folk", "earthy"},
	{"ocean", "ambient", "peaceful"},
	{"cyber", "synthwave", "futuristic"},
	{"neon", "retrowave", "glossy"},
	{"rock", "rock", "rebellious"},
	{"metal", "metal", "heavy"},
	{"dark", "industrial", "dark"},
	{"light", "classical", "bright"},
	{"happy", "pop", "cheerful"},
	{"love", "r&b", "passionate"},
	{"epic", "orchestral", "epic"},
	{"battle", "metal", "aggressive"},
}

var defaultVision = keywordMood{genre: "ambient", mood: "cinematic"}

// ImageToPrompt infers a starting genre and mood from a free-text image
// description by substring keyword match. The description itself becomes
// the theme, unmodified.
func ImageToPrompt(description string) VisionResult {
	desc := strings.ToLower(description)
	match := defaultVision
	for _, kw := range visionKeywords {
		if strings.Contains(desc, kw.keyword) {
			match = kw
			break
		}
	}
	return VisionResult{
		Genre: match.genre,
		Mood:  match.mood,
		Theme: description,
	}
}
