package actions

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v2"

	"suno-forge/internal/forge"
	"suno-forge/internal/studio"
	"suno-forge/internal/validation"
)

const noMutation = "none"

func (r *runner) studio(c *cli.Context) error {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	if c.Bool("plain") {
		return errors.New("studio is interactive; drop --plain or use generate")
	}

	st := studio.UIState{Genre: "pop", Energy: forge.EnergyMedium}
	energy := string(st.Energy)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Genre").
				Height(8).
				Options(huh.NewOptions(forge.GenreNames()...)...).
				Value(&st.Genre),
			huh.NewSelect[string]().
				Title("Mood").
				Options(append([]huh.Option[string]{huh.NewOption("(none)", "")}, huh.NewOptions(studio.Moods()...)...)...).
				Value(&st.Mood),
			huh.NewSelect[string]().
				Title("Energy").
				Options(energyOptions()...).
				Value(&energy),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Instrumental?").
				Affirmative("Yes").
				Negative("No").
				Value(&st.Instrumental),
			huh.NewInput().
				Title("Theme").
				Placeholder("what is the song about?").
				Value(&st.Theme),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !st.SetEnergy(forge.EnergyLabel(energy)) {
		return fmt.Errorf("unknown energy %q", energy)
	}

	cfg := st.Config()
	if !validation.ValidateConfig(cfg) {
		return errInvalidConfig
	}
	p := forge.BuildPrompt(cfg)

	typ := noMutation
	if err := huh.NewSelect[string]().
		Title("Mutate the result?").
		Options(append([]huh.Option[string]{huh.NewOption("No, keep it", noMutation)}, mutationOptions()...)...).
		Value(&typ).
		Run(); err != nil {
		return err
	}
	if typ != noMutation {
		mutated, err := forge.MutatePrompt(p.Style, forge.MutationType(typ))
		if err != nil {
			return err
		}
		p.Style = mutated
	}

	return write(r.out, format, p, promptText(p))
}

func energyOptions() []huh.Option[string] {
	labels := forge.EnergyLabels()
	opts := make([]huh.Option[string], len(labels))
	for i, l := range labels {
		opts[i] = huh.NewOption(string(l), string(l))
	}
	return opts
}
