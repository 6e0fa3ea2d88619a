package parserutil

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Samstix636/duel-value-betting-bot/internal/parser/parsers"
)

// RunOptions configures how parsers are run.
type RunOptions struct {
	// LogStart logs when each parser starts.
	LogStart bool
	// OnError is called when a parser returns an error while ctx is still live. If nil, errors are logged.
	OnError func(p parsers.Parser, err error)
}

// RunParsers runs every parser in parallel and blocks until all of them return.
// A failing parser does not stop the others; Stop is called on each parser once ctx ends.
func RunParsers(ctx context.Context, ps []parsers.Parser, opts RunOptions) error {
	if len(ps) == 0 {
		return nil
	}

	onError := opts.OnError
	if onError == nil {
		onError = func(p parsers.Parser, err error) {
			slog.Error("Parser failed", "parser", p.GetName(), "error", err)
		}
	}

	var g errgroup.Group
	for _, p := range ps {
		p := p
		g.Go(func() error {
			if opts.LogStart {
				slog.Info("Starting parser", "parser", p.GetName())
			}
			err := p.Start(ctx)
			if err != nil && ctx.Err() == nil {
				onError(p, err)
			}
			if err := p.Stop(); err != nil {
				slog.Warn("Parser stop failed", "parser", p.GetName(), "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
