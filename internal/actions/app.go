// Package actions implements the forge terminal commands.
package actions

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

type Options struct {
	Out            io.Writer
	Logger         *slog.Logger
	BatchWorkers   int
	RequestTimeout time.Duration
}

type runner struct {
	out            io.Writer
	logger         *slog.Logger
	batchWorkers   int
	requestTimeout time.Duration
}

// NewApp builds the forge command tree.
func NewApp(opts Options) *cli.App {
	r := &runner{
		out:            opts.Out,
		logger:         opts.Logger,
		batchWorkers:   opts.BatchWorkers,
		requestTimeout: opts.RequestTimeout,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.batchWorkers < 1 {
		r.batchWorkers = 1
	}
	if r.requestTimeout <= 0 {
		r.requestTimeout = 30 * time.Second
	}

	return &cli.App{
		Name:   "forge",
		Usage:  "Build, mutate and explore prompts for AI music generators.",
		Writer: r.out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "plain",
				Usage:   "never prompt interactively or show spinners",
				EnvVars: []string{"FORGE_PLAIN"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"gen"},
				Usage:     "Build one prompt from flags and free-form args",
				ArgsUsage: "[genre=... mood=... 120bpm instrumental theme words]",
				Flags:     append(configFlags(), formatFlag()),
				Action:    r.generate,
			},
			{
				Name:      "batch",
				Usage:     "Build several prompt variations in parallel",
				ArgsUsage: "[args]",
				Flags: append(configFlags(), formatFlag(),
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 5, Usage: "number of prompts (1-50)"},
				),
				Action: r.batch,
			},
			{
				Name:      "mutate",
				Usage:     "Apply a mutation to a style prompt",
				ArgsUsage: "<prompt>",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "mutation type"},
				},
				Action: r.mutate,
			},
			{
				Name:      "vision",
				Usage:     "Infer genre and mood from an image description",
				ArgsUsage: "<description>",
				Flags:     []cli.Flag{formatFlag()},
				Action:    r.vision,
			},
			{
				Name:  "lyrics",
				Usage: "Print a lyric blueprint",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}},
					&cli.StringFlag{Name: "theme"},
				},
				Action: r.lyrics,
			},
			{
				Name:  "packs",
				Usage: "List prompt packs or build a prompt from one",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.BoolFlag{Name: "random", Usage: "pick a random pack"},
					&cli.StringFlag{Name: "id", Usage: "show one pack"},
					&cli.BoolFlag{Name: "generate", Usage: "build a prompt from the chosen pack"},
				},
				Action: r.packs,
			},
			{
				Name:  "genres",
				Usage: "List genres or show one genre profile",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{Name: "name", Usage: "genre to show"},
				},
				Action: r.genres,
			},
			{
				Name:   "mutations",
				Usage:  "List mutation types",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.mutations,
			},
			{
				Name:   "studio",
				Usage:  "Pick genre, mood and energy interactively",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.studio,
			},
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   string(FormatText),
		Usage:   "output format: text, json or yaml",
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "genre", Aliases: []string{"g"}},
		&cli.StringFlag{Name: "mood", Aliases: []string{"m"}},
		&cli.IntFlag{Name: "tempo", Aliases: []string{"bpm"}},
		&cli.Float64Flag{Name: "energy", Aliases: []string{"e"}, Usage: "0.0 - 1.0"},
		&cli.StringFlag{Name: "instrumentation"},
		&cli.StringFlag{Name: "vocal", Usage: "vocal style"},
		&cli.StringFlag{Name: "production"},
		&cli.StringFlag{Name: "theme"},
		&cli.StringFlag{Name: "lyrics-file", Usage: "read raw lyrics from a file"},
		&cli.StringFlag{Name: "language", Aliases: []string{"lang"}},
		&cli.BoolFlag{Name: "instrumental"},
		&cli.StringSliceFlag{Name: "tag", Usage: "style tag, repeatable"},
		&cli.StringFlag{Name: "avoid", Usage: "negative prompt"},
	}
}
