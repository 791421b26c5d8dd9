// Package projection describes which derived fields a caller wants in a job dispatch view
// and how collection entries are filtered and shaped.
package projection

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Field names a derived (lazily computed) field of a job dispatch view.
type Field string

const (
	// FieldLogs is the raw log text of the running audit request.
	FieldLogs Field = "logs"
	// FieldErrors is the error-log entries of the running audit request.
	FieldErrors Field = "errors"
	// FieldAPILogs is the API-call log entries of the running audit request.
	FieldAPILogs Field = "apiLogs"
)

var fieldAliases = map[string]Field{
	"logs":      FieldLogs,
	"errors":    FieldErrors,
	"apilogs":   FieldAPILogs,
	"api_logs":  FieldAPILogs,
	"error_log": FieldErrors,
}

// Selection describes how one requested field is rendered.
type Selection struct {
	// SubFields restricts collection entries to these keys; empty keeps every key.
	SubFields []string
	// Filter is an optional JMESPath expression applied to the collection before shaping.
	Filter string
}

// FieldSet is the set of derived fields requested by a caller. Unknown names are ignored.
type FieldSet map[Field]*Selection

// ParseFields parses a comma separated list such as "logs,errors.message,errors.level,apiLogs".
// A bare collection name selects every sub-field; dotted names select individual sub-fields.
func ParseFields(raw string) FieldSet {
	fs := FieldSet{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, sub, _ := strings.Cut(part, ".")
		field, ok := fieldAliases[strings.ToLower(name)]
		if !ok {
			continue
		}
		sel := fs[field]
		if sel == nil {
			sel = &Selection{}
			fs[field] = sel
		}
		if sub = strings.TrimSpace(sub); sub != "" && field != FieldLogs {
			sel.SubFields = appendUnique(sel.SubFields, sub)
		}
	}
	return fs
}

// Has reports whether the field was requested.
func (fs FieldSet) Has(f Field) bool {
	_, ok := fs[f]
	return ok
}

// Names returns the requested field names, sorted.
func (fs FieldSet) Names() []string {
	names := make([]string, 0, len(fs))
	for f := range fs {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// SetFilter attaches a JMESPath filter to a requested collection field. The expression is
// compiled eagerly so malformed filters are reported before any data is loaded.
func (fs FieldSet) SetFilter(name, expr string) error {
	field, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok || field == FieldLogs {
		return fmt.Errorf("filters are only supported on %s and %s", FieldErrors, FieldAPILogs)
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("invalid filter for %s: %w", field, err)
	}
	sel := fs[field]
	if sel == nil {
		sel = &Selection{}
		fs[field] = sel
	}
	sel.Filter = expr
	return nil
}

// Apply filters and shapes a collection of entries.
// Entries are normalized to JSON values first so filters see the same types a client would.
func (s *Selection) Apply(entries []map[string]any) ([]map[string]any, error) {
	docs, err := normalize(entries)
	if err != nil {
		return nil, err
	}

	if s != nil && s.Filter != "" {
		result, searchErr := jmespath.Search(s.Filter, docs)
		if searchErr != nil {
			return nil, fmt.Errorf("apply filter: %w", searchErr)
		}
		docs = asObjects(result)
	}

	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		obj, ok := doc.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, s.shape(obj))
	}
	return out, nil
}

func (s *Selection) shape(entry map[string]any) map[string]any {
	if s == nil || len(s.SubFields) == 0 {
		return entry
	}
	shaped := make(map[string]any, len(s.SubFields))
	for _, key := range s.SubFields {
		if v, ok := entry[key]; ok {
			shaped[key] = v
		}
	}
	return shaped
}

func normalize(entries []map[string]any) ([]any, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	var docs []any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return docs, nil
}

// asObjects keeps filter results that are lists; a filter that yields a scalar selects nothing.
func asObjects(result any) []any {
	switch v := result.(type) {
	case []any:
		return v
	case map[string]any:
		return []any{v}
	default:
		return nil
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
