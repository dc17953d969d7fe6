package language

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/paulhiggs/dvb-i-tools-sub001/source"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/paulhiggs/dvb-i-tools-sub001/language")

// Load fetches and parses the registry at ref. On failure the future
// resolves to an empty registry, under which every lookup is Unknown, along
// with the error.
func Load(ctx context.Context, mode source.Mode, f *source.Fetcher, ref source.Ref) *source.Future[*Registry] {
	if f == nil {
		f = source.NewFetcher()
	}
	return source.Start(ctx, mode, func(ctx context.Context) (*Registry, error) {
		ctx, span := tracer.Start(ctx, "language.Load",
			trace.WithAttributes(attribute.String("source", ref.String())))
		defer span.End()

		data, err := f.Fetch(ctx, ref)
		if err != nil {
			span.RecordError(err)
			slog.Warn("[LANG_LOADER] failed to load language registry", "source", ref.String(), "error", err)
			return newRegistry(), fmt.Errorf("language registry %s: %w", ref, err)
		}
		reg, err := Parse(bytes.NewReader(data))
		if err != nil {
			span.RecordError(err)
			slog.Warn("[LANG_LOADER] failed to parse language registry", "source", ref.String(), "error", err)
			return newRegistry(), fmt.Errorf("language registry %s: %w", ref, err)
		}
		span.SetAttributes(attribute.Int("subtags", reg.Count()), attribute.String("file_date", reg.FileDate()))
		slog.Info("[LANG_LOADER] language registry ready", "source", ref.String(), "subtags", reg.Count(), "file_date", reg.FileDate())
		return reg, nil
	})
}
