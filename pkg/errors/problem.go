package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ProblemContentType is the media type for error response bodies.
const ProblemContentType = "application/problem+json"

// problemTypeBase prefixes the RFC 7807 type URI for every kind.
const problemTypeBase = "https://connector.vianexus.com/problems/"

// Problem is the RFC 7807 Problem Details document serialized on every
// error response. Kind and Field are extension members the terminal keys
// its retry and form-highlighting logic on.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Kind     Kind   `json:"kind"`
	Field    string `json:"field,omitempty"`
	TraceID  string `json:"traceId,omitempty"`
}

var titles = map[Kind]string{
	KindUnauthorized:        "Unauthorized",
	KindUnknownWidget:       "Unknown Widget",
	KindValidation:          "Invalid Parameter",
	KindTranslation:         "Untranslatable Provider Response",
	KindUpstreamTimeout:     "Provider Timeout",
	KindUpstreamUnavailable: "Provider Unavailable",
	KindUpstreamRejected:    "Provider Rejected Request",
	KindInternal:            "Internal Error",
}

// TypeURI returns the problem type URI for a kind, e.g.
// https://connector.vianexus.com/problems/validation-error.
func TypeURI(kind Kind) string {
	slug := make([]byte, 0, len(kind)+2)
	for i, r := range string(kind) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				slug = append(slug, '-')
			}
			slug = append(slug, byte(r-'A'+'a'))
			continue
		}
		slug = append(slug, byte(r))
	}
	return problemTypeBase + string(slug)
}

// WriteProblem serializes a problem document onto the response with the
// RFC 7807 media type.
func WriteProblem(w http.ResponseWriter, p *Problem) {
	body, err := json.Marshal(p)
	if err != nil {
		http.Error(w, p.Title, p.Status)
		return
	}
	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(p.Status)
	w.Write(body)
}

// AsProblem converts any error into its wire document. Errors outside the
// taxonomy collapse to InternalError with a generic detail so internals
// never leak to the client.
func AsProblem(err error, instance, traceID string) *Problem {
	kind := KindOf(err)
	detail := "internal error"
	field := ""
	var e *Error
	if As(err, &e) {
		detail = e.Message
		field = e.Field
	}
	title, ok := titles[kind]
	if !ok {
		title = strings.ReplaceAll(string(kind), "_", " ")
	}
	return &Problem{
		Type:     TypeURI(kind),
		Title:    title,
		Status:   HTTPStatus(kind),
		Detail:   detail,
		Instance: instance,
		Kind:     kind,
		Field:    field,
		TraceID:  traceID,
	}
}
