package forge

// PromptConfig is the structured input a prompt is assembled from.
// Empty strings and nil pointers mean "not provided".
type PromptConfig struct {
	Title           string   `json:"title,omitempty" yaml:"title,omitempty"`
	Genre           string   `json:"genre,omitempty" yaml:"genre,omitempty"`
	Mood            string   `json:"mood,omitempty" yaml:"mood,omitempty"`
	Tempo           *int     `json:"tempo,omitempty" yaml:"tempo,omitempty"` // BPM
	Instrumentation string   `json:"instrumentation,omitempty" yaml:"instrumentation,omitempty"`
	VocalStyle      string   `json:"vocalStyle,omitempty" yaml:"vocalStyle,omitempty"`
	Production      string   `json:"production,omitempty" yaml:"production,omitempty"`
	Energy          *float64 `json:"energy,omitempty" yaml:"energy,omitempty"` // 0.0 - 1.0
	Theme           string   `json:"theme,omitempty" yaml:"theme,omitempty"`
	Lyrics          string   `json:"lyrics,omitempty" yaml:"lyrics,omitempty"`
	Language        string   `json:"language,omitempty" yaml:"language,omitempty"`
	Instrumental    *bool    `json:"instrumental,omitempty" yaml:"instrumental,omitempty"`
	StyleTags       []string `json:"styleTags,omitempty" yaml:"styleTags,omitempty"`
	NegativePrompt  string   `json:"negativePrompt,omitempty" yaml:"negativePrompt,omitempty"`
}

func (c PromptConfig) IsInstrumental() bool {
	return c.Instrumental != nil && *c.Instrumental
}

func (c PromptConfig) Clone() PromptConfig {
	out := c
	if c.Tempo != nil {
		out.Tempo = Int(*c.Tempo)
	}
	if c.Energy != nil {
		out.Energy = Float(*c.Energy)
	}
	if c.Instrumental != nil {
		out.Instrumental = Bool(*c.Instrumental)
	}
	out.StyleTags = append([]string(nil), c.StyleTags...)
	return out
}

type Prompt struct {
	Title         string `json:"title" yaml:"title"`
	TechnicalName string `json:"technicalName" yaml:"technicalName"`
	Style         string `json:"style" yaml:"style"`
	Lyrics        string `json:"lyrics" yaml:"lyrics"`
}

type GenreProfile struct {
	Instruments []string `json:"instruments" yaml:"instruments"`
	MinTempo    int      `json:"minTempo" yaml:"minTempo"`
	MaxTempo    int      `json:"maxTempo" yaml:"maxTempo"`
	Descriptor  string   `json:"descriptor" yaml:"descriptor"`
}

type VisionResult struct {
	Genre string `json:"genre" yaml:"genre"`
	Mood  string `json:"mood" yaml:"mood"`
	Theme string `json:"theme" yaml:"theme"`
}

func (v VisionResult) Config() PromptConfig {
	return PromptConfig{Genre: v.Genre, Mood: v.Mood, Theme: v.Theme}
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

func Bool(v bool) *bool { return &v }
