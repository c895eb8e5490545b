package registry

import "strconv"

// WidgetConfig is one discovery-document entry in the shape the terminal
// consumes from GET /widgets.json.
type WidgetConfig struct {
	WidgetID    string        `json:"widgetId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Type        string        `json:"type"`
	Endpoint    string        `json:"endpoint"`
	GridData    GridData      `json:"gridData"`
	Params      []ParamConfig `json:"params"`
	Data        *DataConfig   `json:"data,omitempty"`
}

// GridData is the widget's default terminal grid footprint.
type GridData struct {
	W int `json:"w"`
	H int `json:"h"`
}

// ParamConfig describes one query parameter to the terminal's form builder.
type ParamConfig struct {
	ParamName   string   `json:"paramName"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Value       any      `json:"value"`
	Options     []Option `json:"options,omitempty"`
}

// Option is a dropdown entry for enum parameters.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DataConfig carries render hints for the terminal.
type DataConfig struct {
	Table *TableConfig `json:"table,omitempty"`
}

// TableConfig pre-declares table columns so the terminal renders headers
// before the first data response arrives.
type TableConfig struct {
	ColumnsDefs []ColumnDef `json:"columnsDefs"`
}

// ColumnDef is one column header definition.
type ColumnDef struct {
	Field      string `json:"field"`
	HeaderName string `json:"headerName"`
}

// Manifest renders the discovery document keyed by widget id. JSON object
// keys serialize sorted, so the document is stable across restarts.
func (r *Registry) Manifest() map[string]WidgetConfig {
	out := make(map[string]WidgetConfig, len(r.widgets))
	for _, d := range r.List() {
		out[d.ID] = configFor(d)
	}
	return out
}

func configFor(d Descriptor) WidgetConfig {
	cfg := WidgetConfig{
		WidgetID:    d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Type:        string(d.Type),
		Endpoint:    "widgets/" + d.ID,
		GridData:    GridData{W: d.Grid.W, H: d.Grid.H},
		Params:      make([]ParamConfig, 0, len(d.Params)),
	}
	for _, p := range d.Params {
		cfg.Params = append(cfg.Params, paramConfig(p))
	}
	if d.Type == TypeTable {
		defs := make([]ColumnDef, 0, len(d.Columns))
		for _, c := range d.Columns {
			defs = append(defs, ColumnDef{Field: c.Name, HeaderName: c.Label})
		}
		cfg.Data = &DataConfig{Table: &TableConfig{ColumnsDefs: defs}}
	}
	return cfg
}

func paramConfig(p ParamSpec) ParamConfig {
	cfg := ParamConfig{
		ParamName:   p.Name,
		Label:       p.Label,
		Description: p.Description,
		Value:       paramValue(p),
	}
	switch p.Type {
	case ParamNumber:
		cfg.Type = "number"
	case ParamDate:
		cfg.Type = "date"
	default:
		// Enums ride the text type with an options list attached.
		cfg.Type = "text"
	}
	if p.Type == ParamEnum {
		cfg.Options = make([]Option, 0, len(p.Choices))
		for _, c := range p.Choices {
			cfg.Options = append(cfg.Options, Option{Label: c, Value: c})
		}
	}
	return cfg
}

// paramValue types the default for the wire: numbers as JSON numbers,
// everything else as strings, nil when there is no default.
func paramValue(p ParamSpec) any {
	if p.Default == "" {
		return nil
	}
	if p.Type == ParamNumber {
		if f, err := strconv.ParseFloat(p.Default, 64); err == nil {
			return f
		}
	}
	return p.Default
}
