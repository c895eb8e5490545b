package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableWidget(id string) Descriptor {
	return Descriptor{
		ID:   id,
		Name: "Test",
		Type: TypeTable,
		Params: []ParamSpec{
			{Name: "symbol", Type: ParamString, Required: true},
		},
		Columns: []ColumnSpec{
			{Name: "symbol", Label: "Symbol", Type: ColumnString},
		},
		Source: &Binding{Namespace: "EDGE", Dataset: "VNX_QUOTE", SymbolsParam: "symbol"},
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(tableWidget("quote")))
	err := r.Register(tableWidget("quote"))
	assert.ErrorContains(t, err, "already registered")
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Descriptor)
		wantErr string
	}{
		{"empty id", func(d *Descriptor) { d.ID = "" }, "empty id"},
		{"bad widget type", func(d *Descriptor) { d.Type = "chart" }, "unknown widget type"},
		{"bad param type", func(d *Descriptor) { d.Params[0].Type = "float" }, "unknown type"},
		{"duplicate param", func(d *Descriptor) {
			d.Params = append(d.Params, ParamSpec{Name: "symbol", Type: ParamString})
		}, "duplicate parameter"},
		{"enum without choices", func(d *Descriptor) {
			d.Params = append(d.Params, ParamSpec{Name: "mode", Type: ParamEnum})
		}, "no choices"},
		{"table without binding", func(d *Descriptor) { d.Source = nil }, "provider binding"},
		{"table without columns", func(d *Descriptor) { d.Columns = nil }, "no columns"},
		{"duplicate column", func(d *Descriptor) {
			d.Columns = append(d.Columns, ColumnSpec{Name: "symbol", Type: ColumnString})
		}, "duplicate column"},
		{"bad column type", func(d *Descriptor) { d.Columns[0].Type = "bool" }, "unknown type"},
		{"undeclared symbols param", func(d *Descriptor) { d.Source.SymbolsParam = "ticker" }, "not declared"},
		{"undeclared query param", func(d *Descriptor) {
			d.Source.Query = map[string]string{"on": "as_of"}
		}, "undeclared parameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tableWidget("w")
			tt.mutate(&d)
			err := New().Register(d)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRegisterRejectsBadTemplate(t *testing.T) {
	err := New().Register(Descriptor{
		ID:       "md",
		Type:     TypeMarkdown,
		Template: "{{.name",
	})
	assert.ErrorContains(t, err, "template")
}

func TestListIsSortedByID(t *testing.T) {
	r := New()
	for _, id := range []string{"zebra", "alpha", "mid"} {
		require.NoError(t, r.Register(tableWidget(id)))
	}
	var ids []string
	for _, d := range r.List() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, ids)
}

func TestColumnFieldDefaultsToName(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(tableWidget("quote")))
	d, ok := r.Get("quote")
	require.True(t, ok)
	assert.Equal(t, "symbol", d.Columns[0].Field)
}

func TestBuiltInRegistry(t *testing.T) {
	r := BuiltIn()
	assert.Equal(t, 5, r.Len())
	for _, id := range []string{"quote", "quote_board", "stock_stats", "stock_history", "hello_world"} {
		_, ok := r.Get(id)
		assert.True(t, ok, "missing built-in widget %q", id)
	}
}

func TestManifestShape(t *testing.T) {
	manifest := BuiltIn().Manifest()

	quote, ok := manifest["quote"]
	require.True(t, ok)
	assert.Equal(t, "quote", quote.WidgetID)
	assert.Equal(t, "widgets/quote", quote.Endpoint)
	assert.Equal(t, "table", quote.Type)
	require.NotNil(t, quote.Data)
	require.NotNil(t, quote.Data.Table)
	assert.Equal(t, "symbol", quote.Data.Table.ColumnsDefs[0].Field)

	// Enum params ride the text type with an options list.
	var priceType *ParamConfig
	for i := range quote.Params {
		if quote.Params[i].ParamName == "price_type" {
			priceType = &quote.Params[i]
		}
	}
	require.NotNil(t, priceType)
	assert.Equal(t, "text", priceType.Type)
	assert.Len(t, priceType.Options, 3)
	assert.Equal(t, "real_time", priceType.Value)

	// Number defaults serialize as JSON numbers.
	history := manifest["stock_history"]
	for _, p := range history.Params {
		if p.ParamName == "days" {
			assert.Equal(t, float64(30), p.Value)
		}
	}

	// Metric widgets carry no table render hints.
	stats := manifest["stock_stats"]
	assert.Nil(t, stats.Data)
}
