package translate

import (
	"strings"
	"text/template"

	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/pkg/errors"
)

// Render executes a markdown widget's template against the validated
// parameter values. Templates are authored in-process and checked at
// registration, so failures here are internal, not client errors.
func Render(desc *registry.Descriptor, values Values) (string, error) {
	tmpl, err := template.New(desc.ID).Option("missingkey=zero").Parse(desc.Template)
	if err != nil {
		return "", errors.Internal(err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, values.TemplateData()); err != nil {
		return "", errors.Internal(err)
	}
	return sb.String(), nil
}
