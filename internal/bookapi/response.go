// Package bookapi holds wire helpers shared by the catalogue HTTP backend and
// the development sandbox.
package bookapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FieldIssue is one field-level rejection reported by the catalogue service.
type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ErrorEnvelope is the error body returned by the catalogue service:
// {"error": "...", "message": "..."} where message may also be a list of
// field issues.
type ErrorEnvelope struct {
	Code    string
	Message string
	Fields  []FieldIssue
}

// DecodeError parses an error body. Bodies that are not JSON objects yield a
// zero envelope and ok=false.
func DecodeError(body []byte) (env ErrorEnvelope, ok bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrorEnvelope{}, false
	}

	var raw struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return ErrorEnvelope{}, false
	}

	env.Code = rawString(raw.Error)
	if msg := rawString(raw.Message); msg != "" {
		env.Message = msg
		return env, true
	}

	var issues []FieldIssue
	if err := json.Unmarshal(raw.Message, &issues); err == nil && len(issues) > 0 {
		env.Fields = issues
		env.Message = FormatIssues(issues)
		return env, true
	}

	var lines []string
	if err := json.Unmarshal(raw.Message, &lines); err == nil && len(lines) > 0 {
		env.Message = strings.Join(lines, "; ")
	}
	return env, true
}

// FormatIssues renders field issues as "field: rule, field: rule".
func FormatIssues(issues []FieldIssue) string {
	parts := make([]string, 0, len(issues))
	for _, is := range issues {
		switch {
		case is.Field == "":
			parts = append(parts, is.Rule)
		case is.Rule == "":
			parts = append(parts, is.Field)
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Rule))
		}
	}
	return strings.Join(parts, ", ")
}

// Decode unmarshals a JSON response body into out. An empty body decodes as
// JSON null.
func Decode(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}
	return json.Unmarshal(trimmed, out)
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
