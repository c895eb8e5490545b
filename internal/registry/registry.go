// Package registry holds the widget catalog: what each widget is called,
// which parameters it takes, which provider dataset feeds it and which
// columns it promises the terminal. Descriptors are registered once during
// startup and read-only afterwards.
package registry

import (
	"fmt"
	"sort"
	"text/template"
)

// WidgetType selects how a widget's query result is shaped.
type WidgetType string

const (
	TypeTable    WidgetType = "table"
	TypeMetric   WidgetType = "metric"
	TypeMarkdown WidgetType = "markdown"
)

// ParamType tags a request parameter with its validation rule.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
	ParamDate   ParamType = "date"
	ParamEnum   ParamType = "enum"
)

// ColumnType tags an output column with its translation rule.
type ColumnType string

const (
	ColumnString ColumnType = "string"
	ColumnNumber ColumnType = "number"
	ColumnDate   ColumnType = "date"
)

// ParamSpec declares one request parameter of a widget.
type ParamSpec struct {
	Name        string
	Label       string
	Description string
	Type        ParamType
	Required    bool

	// Default fills an absent optional parameter, in the same textual
	// form the terminal would send.
	Default string

	// Choices constrains enum parameters.
	Choices []string

	// Min and Max bound number parameters inclusively when set.
	Min *float64
	Max *float64
}

// ColumnSpec declares one output column. Slice order in the Descriptor
// fixes the column order of every response.
type ColumnSpec struct {
	Name  string
	Label string
	Type  ColumnType

	// Field is the provider payload key the column maps from. Empty means
	// the column name itself.
	Field string
}

// Binding ties a widget to a provider dataset.
type Binding struct {
	Namespace string
	Dataset   string

	// SymbolsParam names the widget parameter carrying the ticker or
	// comma-separated ticker list for the request path.
	SymbolsParam string

	// Query maps provider query keys to widget parameter names.
	Query map[string]string

	// Static carries fixed provider query arguments.
	Static map[string]string
}

// Descriptor is the complete definition of one widget.
type Descriptor struct {
	ID          string
	Name        string
	Description string
	Category    string
	Type        WidgetType
	Grid        Grid
	Params      []ParamSpec

	// Columns applies to table and metric widgets.
	Columns []ColumnSpec

	// Source is nil for widgets computed locally.
	Source *Binding

	// Template renders markdown widgets. text/template syntax with the
	// validated parameter values as dot.
	Template string
}

// Grid is the widget's default size on the terminal grid.
type Grid struct {
	W int
	H int
}

// Param looks up a parameter spec by name.
func (d *Descriptor) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Registry maps widget ids to descriptors.
type Registry struct {
	widgets map[string]Descriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{widgets: make(map[string]Descriptor)}
}

// Register adds a descriptor after structural validation. Ids are unique;
// a duplicate registration is a programming error surfaced at startup.
func (r *Registry) Register(d Descriptor) error {
	if err := validate(&d); err != nil {
		return fmt.Errorf("widget %q: %w", d.ID, err)
	}
	if _, exists := r.widgets[d.ID]; exists {
		return fmt.Errorf("widget %q: already registered", d.ID)
	}
	for i, c := range d.Columns {
		if c.Field == "" {
			d.Columns[i].Field = c.Name
		}
	}
	r.widgets[d.ID] = d
	return nil
}

// MustRegister panics on registration failure. Built-in widgets use it at
// startup where a bad descriptor must stop the process.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	d, ok := r.widgets[id]
	return d, ok
}

// List returns all descriptors ordered by id, so the discovery document is
// byte-stable across restarts.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.widgets))
	for _, d := range r.widgets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of registered widgets.
func (r *Registry) Len() int { return len(r.widgets) }

func validate(d *Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("empty id")
	}
	switch d.Type {
	case TypeTable, TypeMetric, TypeMarkdown:
	default:
		return fmt.Errorf("unknown widget type %q", d.Type)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case ParamString, ParamNumber, ParamDate:
		case ParamEnum:
			if len(p.Choices) == 0 {
				return fmt.Errorf("enum parameter %q has no choices", p.Name)
			}
		default:
			return fmt.Errorf("parameter %q: unknown type %q", p.Name, p.Type)
		}
	}
	switch d.Type {
	case TypeTable, TypeMetric:
		if d.Source == nil {
			return fmt.Errorf("%s widget needs a provider binding", d.Type)
		}
		if len(d.Columns) == 0 {
			return fmt.Errorf("%s widget declares no columns", d.Type)
		}
		cols := make(map[string]bool, len(d.Columns))
		for _, c := range d.Columns {
			if c.Name == "" {
				return fmt.Errorf("column with empty name")
			}
			if cols[c.Name] {
				return fmt.Errorf("duplicate column %q", c.Name)
			}
			cols[c.Name] = true
			switch c.Type {
			case ColumnString, ColumnNumber, ColumnDate:
			default:
				return fmt.Errorf("column %q: unknown type %q", c.Name, c.Type)
			}
		}
	case TypeMarkdown:
		if d.Template == "" {
			return fmt.Errorf("markdown widget needs a template")
		}
		if _, err := template.New(d.ID).Parse(d.Template); err != nil {
			return fmt.Errorf("template: %w", err)
		}
	}
	if d.Source != nil {
		if d.Source.Namespace == "" || d.Source.Dataset == "" {
			return fmt.Errorf("binding needs namespace and dataset")
		}
		if d.Source.SymbolsParam != "" {
			if _, ok := paramByName(d.Params, d.Source.SymbolsParam); !ok {
				return fmt.Errorf("binding symbols parameter %q not declared", d.Source.SymbolsParam)
			}
		}
		for key, param := range d.Source.Query {
			if _, ok := paramByName(d.Params, param); !ok {
				return fmt.Errorf("binding query %q references undeclared parameter %q", key, param)
			}
		}
	}
	return nil
}

func paramByName(params []ParamSpec, name string) (ParamSpec, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}
