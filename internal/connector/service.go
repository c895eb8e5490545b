// Package connector is the dispatcher between the terminal-facing HTTP
// surface and the provider. It owns the query pipeline: resolve the widget,
// validate parameters, call the provider (through the optional cache) and
// translate the result into the shape the widget type promises.
package connector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/internal/cache"
	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/internal/translate"
	"github.com/vianexus/terminal-connector/internal/upstream"
	"github.com/vianexus/terminal-connector/pkg/errors"
	"github.com/vianexus/terminal-connector/pkg/metrics"
)

// Result is one widget query answer. Exactly one of Table, Metrics or
// Markdown is populated, selected by Type.
type Result struct {
	Widget   string
	Type     registry.WidgetType
	Table    *translate.Table
	Metrics  []translate.Metric
	Markdown string
}

// Service wires the registry, provider client and cache behind the two
// operations the HTTP layer exposes: discovery and query.
type Service struct {
	registry *registry.Registry
	provider upstream.Fetcher
	cache    *cache.ResponseCache
	logger   *zap.Logger
}

// NewService builds the dispatcher. The cache may be nil (disabled).
func NewService(reg *registry.Registry, provider upstream.Fetcher, rc *cache.ResponseCache, logger *zap.Logger) *Service {
	return &Service{
		registry: reg,
		provider: provider,
		cache:    rc,
		logger:   logger,
	}
}

// Widgets returns the discovery document for the terminal.
func (s *Service) Widgets() map[string]registry.WidgetConfig {
	return s.registry.Manifest()
}

// Query runs one widget data request. Unknown ids fail before validation,
// validation fails before any provider traffic, and every error carries a
// taxonomy kind for the HTTP layer to map.
func (s *Service) Query(ctx context.Context, id string, raw map[string]string) (*Result, error) {
	start := time.Now()
	result, err := s.query(ctx, id, raw)
	metrics.WidgetQueries.WithLabelValues(id, outcome(err)).Inc()
	metrics.QueryLatency.WithLabelValues(id).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Info("widget query failed",
			zap.String("widget", id),
			zap.String("kind", string(errors.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (s *Service) query(ctx context.Context, id string, raw map[string]string) (*Result, error) {
	desc, ok := s.registry.Get(id)
	if !ok {
		return nil, errors.UnknownWidget(id)
	}

	values, err := translate.ValidateParams(&desc, raw)
	if err != nil {
		return nil, err
	}

	if desc.Type == registry.TypeMarkdown {
		md, err := translate.Render(&desc, values)
		if err != nil {
			return nil, err
		}
		return &Result{Widget: id, Type: desc.Type, Markdown: md}, nil
	}

	req, err := translate.BuildRequest(&desc, values)
	if err != nil {
		return nil, err
	}

	records, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	table, err := translate.TranslateRows(&desc, records)
	if err != nil {
		return nil, err
	}

	result := &Result{Widget: id, Type: desc.Type}
	if desc.Type == registry.TypeMetric {
		result.Metrics = translate.Pivot(table)
	} else {
		result.Table = table
	}
	return result, nil
}

// fetch consults the cache before the provider. Only successful responses
// are cached; errors always reflect a live provider attempt.
func (s *Service) fetch(ctx context.Context, req upstream.Request) ([]upstream.Record, error) {
	if records, ok := s.cache.Get(req); ok {
		return records, nil
	}
	records, err := s.provider.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.Put(req, records)
	return records, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(errors.KindOf(err))
}
