package forge

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BuildBatch builds n prompts from cfg on at most workers goroutines. It
// fails only when ctx ends first.
func BuildBatch(ctx context.Context, cfg PromptConfig, n, workers int) ([]Prompt, error) {
	if n < 1 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]Prompt, n)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range out {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out[i] = BuildPrompt(cfg.Clone())
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
