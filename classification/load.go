package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulhiggs/dvb-i-tools-sub001/source"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/paulhiggs/dvb-i-tools-sub001/classification")

const maxParallelLoads = 4

// Load fetches and merges the classification schemes at refs. A source that
// cannot be loaded is logged and skipped; the scheme is built from the
// remaining sources and the joined failures are returned alongside it.
func Load(ctx context.Context, mode source.Mode, f *source.Fetcher, opts Options, refs ...source.Ref) *source.Future[*Scheme] {
	if f == nil {
		f = source.NewFetcher()
	}
	return source.Start(ctx, mode, func(ctx context.Context) (*Scheme, error) {
		return load(ctx, f, opts, refs)
	})
}

func load(ctx context.Context, f *source.Fetcher, opts Options, refs []source.Ref) (*Scheme, error) {
	ctx, span := tracer.Start(ctx, "classification.Load",
		trace.WithAttributes(
			attribute.Int("sources", len(refs)),
			attribute.Bool("leaf_only", opts.LeafNodesOnly),
		))
	defer span.End()

	results := make([][]Term, len(refs))
	failures := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, ref := range refs {
		g.Go(func() error {
			data, err := f.Fetch(gctx, ref)
			if err == nil {
				results[i], err = parseTerms(data)
			}
			if err != nil {
				failures[i] = fmt.Errorf("classification scheme %s: %w", ref, err)
				slog.Warn("[CS_LOADER] failed to load classification scheme", "source", ref.String(), "error", err)
				return nil
			}
			slog.Debug("[CS_LOADER] loaded classification scheme", "source", ref.String(), "terms", len(results[i]))
			return nil
		})
	}
	_ = g.Wait()

	var terms []Term
	for _, r := range results {
		terms = append(terms, r...)
	}
	s := New(opts, terms...)
	for _, err := range failures {
		if err != nil {
			s.failures = append(s.failures, err)
		}
	}
	span.SetAttributes(attribute.Int("terms", s.Count()), attribute.Int("failures", len(s.failures)))
	slog.Info("[CS_LOADER] classification scheme ready", "terms", s.Count(), "failed_sources", len(s.failures))

	err := errors.Join(s.failures...)
	if err != nil {
		span.RecordError(err)
	}
	return s, err
}
