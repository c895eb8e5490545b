package connector

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/internal/cache"
	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/internal/upstream"
	"github.com/vianexus/terminal-connector/pkg/errors"
)

// spyFetcher counts provider calls and replays a canned response.
type spyFetcher struct {
	calls   int
	lastReq upstream.Request
	records []upstream.Record
	err     error
}

func (s *spyFetcher) Fetch(ctx context.Context, req upstream.Request) ([]upstream.Record, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func newService(fetcher upstream.Fetcher, rc *cache.ResponseCache) *Service {
	return NewService(registry.BuiltIn(), fetcher, rc, zap.NewNop())
}

func TestWidgetsMatchesRegistry(t *testing.T) {
	svc := newService(&spyFetcher{}, nil)
	manifest := svc.Widgets()
	assert.Len(t, manifest, registry.BuiltIn().Len())
	assert.Contains(t, manifest, "quote")
}

func TestQueryUnknownWidgetSkipsProvider(t *testing.T) {
	spy := &spyFetcher{}
	svc := newService(spy, nil)

	_, err := svc.Query(context.Background(), "nonexistent", nil)
	assert.Equal(t, errors.KindUnknownWidget, errors.KindOf(err))
	assert.Zero(t, spy.calls)
}

func TestQueryValidationFailureSkipsProvider(t *testing.T) {
	tests := []struct {
		widget string
		field  string
	}{
		{"quote", "symbol"},
		{"quote_board", "symbols"},
	}
	for _, tt := range tests {
		t.Run(tt.widget, func(t *testing.T) {
			spy := &spyFetcher{}
			svc := newService(spy, nil)

			_, err := svc.Query(context.Background(), tt.widget, map[string]string{})
			assert.Equal(t, errors.KindValidation, errors.KindOf(err))
			assert.Equal(t, tt.field, errors.FieldOf(err))
			assert.Zero(t, spy.calls)
		})
	}
}

func TestQueryQuoteReturnsSymbolRow(t *testing.T) {
	spy := &spyFetcher{records: []upstream.Record{{
		"vnxSymbol":    "AAPL",
		"vnxPrice":     json.Number("189.5"),
		"vnxTimestamp": json.Number("1755700200000"),
	}}}
	svc := newService(spy, nil)

	result, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, registry.TypeTable, result.Type)
	require.NotNil(t, result.Table)
	require.Len(t, result.Table.Rows, 1)
	assert.Equal(t, "AAPL", result.Table.Rows[0]["symbol"])
	assert.Equal(t, json.Number("189.5"), result.Table.Rows[0]["price"])

	assert.Equal(t, 1, spy.calls)
	assert.Equal(t, []string{"AAPL"}, spy.lastReq.Symbols)
	assert.Equal(t, "EDGE", spy.lastReq.Namespace)
	assert.Equal(t, "VNX_QUOTE", spy.lastReq.Dataset)
}

func TestQueryRepeatedShapeIsStable(t *testing.T) {
	spy := &spyFetcher{records: []upstream.Record{{"vnxSymbol": "AAPL", "vnxPrice": json.Number("1")}}}
	svc := newService(spy, nil)

	first, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)

	spy.records = []upstream.Record{{"vnxSymbol": "AAPL", "vnxPrice": json.Number("2")}}
	second, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)

	assert.Equal(t, first.Table.Columns, second.Table.Columns)
	assert.NotEqual(t, first.Table.Rows[0]["price"], second.Table.Rows[0]["price"])
}

func TestQueryEmptyProviderResultIsNotAnError(t *testing.T) {
	spy := &spyFetcher{records: []upstream.Record{}}
	svc := newService(spy, nil)

	result, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.Empty(t, result.Table.Rows)
	assert.NotEmpty(t, result.Table.Columns)
}

func TestQueryPropagatesUpstreamErrors(t *testing.T) {
	for _, kindErr := range []error{
		errors.UpstreamTimeout(nil),
		errors.UpstreamUnavailable(nil),
		errors.UpstreamRejected("bad symbols"),
	} {
		spy := &spyFetcher{err: kindErr}
		svc := newService(spy, nil)

		_, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
		assert.Equal(t, errors.KindOf(kindErr), errors.KindOf(err))
	}
}

func TestQueryMetricWidgetPivots(t *testing.T) {
	spy := &spyFetcher{records: []upstream.Record{{
		"issuerName": "Apple Inc",
		"symbol":     "AAPL",
		"peRatioTtm": json.Number("31.2"),
	}}}
	svc := newService(spy, nil)

	result, err := svc.Query(context.Background(), "stock_stats", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, registry.TypeMetric, result.Type)
	assert.Nil(t, result.Table)
	require.NotEmpty(t, result.Metrics)
	assert.Equal(t, "Company", result.Metrics[0].Label)
	assert.Equal(t, "Apple Inc", result.Metrics[0].Value)
}

func TestQueryMarkdownWidgetSkipsProvider(t *testing.T) {
	spy := &spyFetcher{}
	svc := newService(spy, nil)

	result, err := svc.Query(context.Background(), "hello_world", map[string]string{"name": "trader"})
	require.NoError(t, err)
	assert.Equal(t, registry.TypeMarkdown, result.Type)
	assert.Contains(t, result.Markdown, "Hello, trader")
	assert.Zero(t, spy.calls)
}

func TestQueryServesRepeatsFromCache(t *testing.T) {
	spy := &spyFetcher{records: []upstream.Record{{"vnxSymbol": "AAPL"}}}
	svc := newService(spy, cache.New(time.Minute))

	for i := 0; i < 3; i++ {
		_, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, spy.calls, "repeat queries hit the cache")

	// A different parameter set is a different cache key.
	_, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 2, spy.calls)
}

func TestQueryDoesNotCacheErrors(t *testing.T) {
	spy := &spyFetcher{err: errors.UpstreamUnavailable(nil)}
	svc := newService(spy, cache.New(time.Minute))

	_, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
	require.Error(t, err)

	spy.err = nil
	spy.records = []upstream.Record{{"vnxSymbol": "AAPL"}}
	result, err := svc.Query(context.Background(), "quote", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.Len(t, result.Table.Rows, 1)
	assert.Equal(t, 2, spy.calls)
}
