package forge

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

type EnergyLabel string

const (
	EnergyLow      EnergyLabel = "low"
	EnergyMedium   EnergyLabel = "medium"
	EnergyHigh     EnergyLabel = "high"
	EnergyVeryHigh EnergyLabel = "very high"
)

var energyLevels = map[EnergyLabel]float64{
	EnergyLow:      0.3,
	EnergyMedium:   0.6,
	EnergyHigh:     0.85,
	EnergyVeryHigh: 0.95,
}

// EnergyLabels lists the labels from calmest to most intense.
func EnergyLabels() []EnergyLabel {
	return []EnergyLabel{EnergyLow, EnergyMedium, EnergyHigh, EnergyVeryHigh}
}

func (l EnergyLabel) Level() (float64, bool) {
	v, ok := energyLevels[l]
	return v, ok
}

// PromptPack is a named preset that can seed a prompt.
type PromptPack struct {
	ID              string      `json:"id" yaml:"id"`
	Name            string      `json:"name" yaml:"name"`
	Genre           string      `json:"genre" yaml:"genre"`
	Mood            string      `json:"mood" yaml:"mood"`
	Tempo           int         `json:"tempo" yaml:"tempo"`
	Instrumentation string      `json:"instrumentation" yaml:"instrumentation"`
	VocalStyle      string      `json:"vocalStyle" yaml:"vocalStyle"`
	Production      string      `json:"production" yaml:"production"`
	LyricsSeed      string      `json:"lyricsSeed" yaml:"lyricsSeed"`
	EnergyLabel     EnergyLabel `json:"energyLabel" yaml:"energyLabel"`
	UseCase         string      `json:"useCase" yaml:"useCase"`
}

func (p PromptPack) Config() PromptConfig {
	cfg := PromptConfig{
		Title:           p.Name,
		Genre:           p.Genre,
		Mood:            p.Mood,
		Instrumentation: p.Instrumentation,
		VocalStyle:      p.VocalStyle,
		Production:      p.Production,
		Lyrics:          p.LyricsSeed,
	}
	if p.Tempo > 0 {
		cfg.Tempo = Int(p.Tempo)
	}
	if e, ok := p.EnergyLabel.Level(); ok {
		cfg.Energy = Float(e)
	}
	return cfg
}

//go:embed packs.yaml
var packsYAML []byte

var promptPacks = mustLoadPacks(packsYAML)

func mustLoadPacks(data []byte) []PromptPack {
	packs, err := loadPacks(data)
	if err != nil {
		panic(err)
	}
	return packs
}

// loadPacks decodes and checks a pack catalog. An empty catalog, duplicate
// ids and unknown energy labels are rejected.
func loadPacks(data []byte) ([]PromptPack, error) {
	var packs []PromptPack
	if err := yaml.Unmarshal(data, &packs); err != nil {
		return nil, fmt.Errorf("forge: decode packs: %w", err)
	}
	if len(packs) == 0 {
		return nil, fmt.Errorf("forge: pack catalog is empty")
	}

	seen := make(map[string]struct{}, len(packs))
	for i, p := range packs {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("forge: pack %d has no id", i)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("forge: duplicate pack id %q", id)
		}
		seen[id] = struct{}{}
		if _, ok := energyLevels[p.EnergyLabel]; !ok {
			return nil, fmt.Errorf("forge: pack %q has unknown energy label %q", id, p.EnergyLabel)
		}
	}
	return packs, nil
}

func PromptPacks() []PromptPack {
	return append([]PromptPack(nil), promptPacks...)
}

func RandomPromptPack() PromptPack {
	return promptPacks[rand.IntN(len(promptPacks))]
}

func PromptPackByID(id string) (PromptPack, bool) {
	id = strings.TrimSpace(id)
	for _, p := range promptPacks {
		if p.ID == id {
			return p, true
		}
	}
	return PromptPack{}, false
}
