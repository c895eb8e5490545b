package translate

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/internal/upstream"
	"github.com/vianexus/terminal-connector/pkg/errors"
)

// Column is one output column's metadata.
type Column struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Row maps column names to cell values. Cells are strings, json.Number, or
// nil for fields the provider omitted.
type Row map[string]any

// Table is the tabular result payload. Columns carries the full declared
// schema even when Rows is empty, and its order fixes the render order.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Metric is one label/value pair for metric-type widgets.
type Metric struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// TranslateRows reshapes provider records into the widget's declared table.
// Every declared column appears in every row; fields the provider omitted
// become explicit nulls. A value that contradicts the declared column type
// fails the whole response.
func TranslateRows(desc *registry.Descriptor, records []upstream.Record) (*Table, error) {
	table := &Table{
		Columns: make([]Column, 0, len(desc.Columns)),
		Rows:    make([]Row, 0, len(records)),
	}
	for _, col := range desc.Columns {
		table.Columns = append(table.Columns, Column{
			Name:  col.Name,
			Label: col.Label,
			Type:  string(col.Type),
		})
	}
	for _, record := range records {
		row := make(Row, len(desc.Columns))
		for _, col := range desc.Columns {
			raw, ok := record[col.Field]
			if !ok || raw == nil {
				row[col.Name] = nil
				continue
			}
			cell, err := convertCell(col, raw)
			if err != nil {
				return nil, err
			}
			row[col.Name] = cell
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// convertCell normalizes one provider value to the declared column type.
func convertCell(col registry.ColumnSpec, raw any) (any, error) {
	switch col.Type {
	case registry.ColumnString:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(col, raw)
		}
		return s, nil

	case registry.ColumnNumber:
		num, err := toDecimal(raw)
		if err != nil {
			return nil, mismatch(col, raw)
		}
		// json.Number serializes unquoted, so the terminal sees a JSON
		// number with the decimal's exact digits.
		return json.Number(num.String()), nil

	case registry.ColumnDate:
		t, err := toTime(raw)
		if err != nil {
			return nil, mismatch(col, raw)
		}
		return t.UTC().Format(time.RFC3339), nil
	}
	return nil, mismatch(col, raw)
}

func mismatch(col registry.ColumnSpec, raw any) error {
	return errors.Translation(col.Name, "column %q expects %s, provider sent %T", col.Name, col.Type, raw)
}

// toDecimal accepts the numeric encodings providers actually send: JSON
// numbers (json.Number from the client's decoder, float64 from plain
// decoding) and numeric strings.
func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Decimal{}, errors.Translation("", "not a number: %T", raw)
	}
}

// toTime accepts RFC 3339 and YYYY-MM-DD strings plus unix timestamps
// (milliseconds when the magnitude says so, seconds otherwise).
func toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case string:
		for _, layout := range []string{time.RFC3339, dateLayout} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errors.Translation("", "unparseable date %q", v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return fromUnix(i), nil
	case float64:
		return fromUnix(int64(v)), nil
	case int64:
		return fromUnix(v), nil
	case int:
		return fromUnix(int64(v)), nil
	default:
		return time.Time{}, errors.Translation("", "not a date: %T", raw)
	}
}

// fromUnix guesses the unit by magnitude: epoch seconds stay under 1e11
// until the year 5138, so anything larger is milliseconds.
func fromUnix(i int64) time.Time {
	if i > 1e11 || i < -1e11 {
		return time.UnixMilli(i)
	}
	return time.Unix(i, 0)
}

// Pivot turns the first table row into label/value metric pairs, keeping
// the declared column order. Metric widgets render a single record as a
// vertical list.
func Pivot(table *Table) []Metric {
	metrics := make([]Metric, 0, len(table.Columns))
	if len(table.Rows) == 0 {
		return metrics
	}
	row := table.Rows[0]
	for _, col := range table.Columns {
		metrics = append(metrics, Metric{Label: col.Label, Value: row[col.Name]})
	}
	return metrics
}
