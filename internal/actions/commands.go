package actions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"suno-forge/internal/forge"
	"suno-forge/internal/validation"
)

var (
	errInvalidConfig   = errors.New("invalid prompt configuration")
	errInvalidBatch    = errors.New("invalid batch request")
	errInvalidMutation = errors.New("invalid mutation request")
	errInvalidVision   = errors.New("invalid vision request")
	errInvalidLyrics   = errors.New("invalid lyrics request")
)

type batchResult struct {
	BatchID string         `json:"batchId" yaml:"batchId"`
	Count   int            `json:"count" yaml:"count"`
	Prompts []forge.Prompt `json:"prompts" yaml:"prompts"`
}

type mutateResult struct {
	Type    forge.MutationType `json:"type" yaml:"type"`
	Mutated string             `json:"mutated" yaml:"mutated"`
}

type visionResult struct {
	Config forge.VisionResult `json:"config" yaml:"config"`
	Prompt forge.Prompt       `json:"prompt" yaml:"prompt"`
}

type genreResult struct {
	Name    string             `json:"name" yaml:"name"`
	Profile forge.GenreProfile `json:"profile" yaml:"profile"`
}

// configFromFlags reads the config flags, then applies positional args in
// the chat argument syntax on top.
func configFromFlags(c *cli.Context) (forge.PromptConfig, error) {
	cfg := forge.PromptConfig{
		Title:           c.String("title"),
		Genre:           c.String("genre"),
		Mood:            c.String("mood"),
		Instrumentation: c.String("instrumentation"),
		VocalStyle:      c.String("vocal"),
		Production:      c.String("production"),
		Theme:           c.String("theme"),
		Language:        c.String("language"),
		NegativePrompt:  c.String("avoid"),
		StyleTags:       c.StringSlice("tag"),
	}
	if c.IsSet("tempo") {
		cfg.Tempo = forge.Int(c.Int("tempo"))
	}
	if c.IsSet("energy") {
		cfg.Energy = forge.Float(c.Float64("energy"))
	}
	if c.IsSet("instrumental") {
		cfg.Instrumental = forge.Bool(c.Bool("instrumental"))
	}
	if path := c.String("lyrics-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return forge.PromptConfig{}, fmt.Errorf("read lyrics: %w", err)
		}
		cfg.Lyrics = string(data)
	}

	if c.Args().Len() > 0 {
		cfg = forge.ParseArgs(strings.Join(c.Args().Slice(), " "), cfg)
	}
	return cfg, nil
}

func (r *runner) generate(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	if !validation.ValidateConfig(cfg) {
		return errInvalidConfig
	}

	p := forge.BuildPrompt(cfg)
	r.logger.Debug("prompt built", "name", p.TechnicalName)
	return write(r.out, format, p, promptText(p))
}

func (r *runner) batch(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	n := c.Int("count")
	if !validation.ValidateBatchRequest(map[string]any{"config": validation.ConfigMap(cfg), "count": n}) {
		return errInvalidBatch
	}

	ctx, cancel := context.WithTimeout(c.Context, r.requestTimeout)
	defer cancel()

	var prompts []forge.Prompt
	build := func(ctx context.Context) error {
		var err error
		prompts, err = forge.BuildBatch(ctx, cfg, n, r.batchWorkers)
		return err
	}
	if c.Bool("plain") {
		err = build(ctx)
	} else {
		err = spinner.New().Title("Forging prompts...").Context(ctx).ActionWithErr(build).Run()
	}
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}

	res := batchResult{BatchID: uuid.NewString(), Count: len(prompts), Prompts: prompts}
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s (%d prompts)\n", res.BatchID, res.Count)
	for i, p := range prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Style)
	}
	return write(r.out, format, res, b.String())
}

func (r *runner) mutate(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	prompt := strings.Join(c.Args().Slice(), " ")
	typ := c.String("type")

	if !c.Bool("plain") {
		if typ == "" {
			if err := huh.NewSelect[string]().
				Title("Choose a mutation").
				Options(mutationOptions()...).
				Value(&typ).
				Run(); err != nil {
				return err
			}
		}
		if strings.TrimSpace(prompt) == "" {
			if err := huh.NewInput().
				Title("Paste the style prompt to mutate").
				Value(&prompt).
				Run(); err != nil {
				return err
			}
		}
	}

	if !validation.ValidateMutateRequest(map[string]any{"prompt": prompt, "type": typ}) {
		return errInvalidMutation
	}
	t := forge.MutationType(typ)
	mutated, err := forge.MutatePrompt(prompt, t)
	if err != nil {
		r.logger.Error("mutation failed", "type", typ, "err", err)
		return err
	}
	return write(r.out, format, mutateResult{Type: t, Mutated: mutated}, mutated)
}

func (r *runner) vision(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	desc := strings.Join(c.Args().Slice(), " ")
	if !validation.ValidateVisionRequest(map[string]any{"description": desc}) {
		return errInvalidVision
	}

	res := forge.ImageToPrompt(desc)
	p := forge.BuildPrompt(res.Config())
	text := fmt.Sprintf("Genre: %s\nMood: %s\n\n%s", res.Genre, res.Mood, promptText(p))
	return write(r.out, format, visionResult{Config: res, Prompt: p}, text)
}

func (r *runner) lyrics(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	genre, theme := c.String("genre"), c.String("theme")
	if !validation.ValidateLyricsRequest(map[string]any{"genre": genre, "theme": theme}) {
		return errInvalidLyrics
	}

	lyrics := forge.GenerateLyrics(genre, theme)
	return write(r.out, format, map[string]string{"lyrics": lyrics}, lyrics)
}

func (r *runner) packs(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	var pack forge.PromptPack
	switch id := c.String("id"); {
	case c.Bool("random"):
		pack = forge.RandomPromptPack()
	case id != "":
		var ok bool
		if pack, ok = forge.PromptPackByID(id); !ok {
			return fmt.Errorf("pack %q not found", id)
		}
	default:
		packs := forge.PromptPacks()
		var b strings.Builder
		for _, p := range packs {
			fmt.Fprintf(&b, "%-22s %-28s %3d BPM  %-9s %s\n", p.ID, p.Name, p.Tempo, p.EnergyLabel, p.UseCase)
		}
		return write(r.out, format, packs, b.String())
	}

	if c.Bool("generate") {
		p := forge.BuildPrompt(pack.Config())
		return write(r.out, format, p, promptText(p))
	}
	text := fmt.Sprintf("%s (%s)\n%s, %s, %d BPM, %s energy\n%s\n\n%s",
		pack.Name, pack.ID, pack.Genre, pack.Mood, pack.Tempo, pack.EnergyLabel, pack.UseCase, pack.LyricsSeed)
	return write(r.out, format, pack, text)
}

func (r *runner) genres(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	if name := c.String("name"); name != "" {
		profile, err := forge.GetGenreProfile(name)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("%s: %d-%d BPM, %s\ninstruments: %s",
			name, profile.MinTempo, profile.MaxTempo, profile.Descriptor, strings.Join(profile.Instruments, ", "))
		return write(r.out, format, genreResult{Name: name, Profile: profile}, text)
	}

	names := forge.GenreNames()
	return write(r.out, format, names, strings.Join(names, "\n"))
}

func (r *runner) mutations(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	types := forge.MutationTypes()
	lines := make([]string, len(types))
	for i, t := range types {
		lines[i] = string(t)
	}
	return write(r.out, format, types, strings.Join(lines, "\n"))
}

func mutationOptions() []huh.Option[string] {
	types := forge.MutationTypes()
	opts := make([]huh.Option[string], len(types))
	for i, t := range types {
		opts[i] = huh.NewOption(string(t), string(t))
	}
	return opts
}
