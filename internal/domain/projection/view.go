package projection

import (
	"encoding/json"
	"fmt"

	"github.com/target/jobdispatch/internal/domain/model"
)

// View is the read-only projection of a job dispatch. Base fields and audit counts are filled
// eagerly by BuildView; derived fields are added by a Resolver only when requested.
type View struct {
	Dispatch      *model.JobDispatch
	APILogCount   int
	ErrorLogCount int
	LogLineCount  int

	derived map[Field]any
}

// BuildView builds the eager phase of the projection. running is the summary of the dispatch's
// running audit request, or nil when none is linked or the linked row does not exist; counts
// default to zero in that case. A summary for a different audit request is ignored.
func BuildView(d *model.JobDispatch, running *model.AuditRequestSummary) *View {
	v := &View{Dispatch: d}
	if !d.HasRunningAuditRequest() || running == nil || running.ID != *d.RunningAuditRequestID {
		return v
	}
	v.APILogCount = running.APILogCount
	v.ErrorLogCount = running.ErrorLogCount
	v.LogLineCount = running.LogLineCount
	return v
}

// Derived returns a resolved derived field.
func (v *View) Derived(f Field) (any, bool) {
	val, ok := v.derived[f]
	return val, ok
}

// Logs returns the resolved log text, or "" when logs were not resolved or are absent.
func (v *View) Logs() string {
	s, _ := v.derived[FieldLogs].(string)
	return s
}

// Entries returns a resolved collection field.
func (v *View) Entries(f Field) []map[string]any {
	entries, _ := v.derived[f].([]map[string]any)
	return entries
}

func (v *View) setDerived(f Field, val any) {
	if v.derived == nil {
		v.derived = make(map[Field]any, 3)
	}
	v.derived[f] = val
}

// MarshalJSON renders the base fields, the counts and any resolved derived fields as one object.
func (v *View) MarshalJSON() ([]byte, error) {
	if v == nil || v.Dispatch == nil {
		return []byte("null"), nil
	}
	base, err := json.Marshal(v.Dispatch)
	if err != nil {
		return nil, err
	}
	out := map[string]json.RawMessage{}
	if err = json.Unmarshal(base, &out); err != nil {
		return nil, fmt.Errorf("decode job dispatch: %w", err)
	}

	extra := map[string]any{
		"api_log_count":   v.APILogCount,
		"error_log_count": v.ErrorLogCount,
		"log_line_count":  v.LogLineCount,
	}
	for f, val := range v.derived {
		extra[string(f)] = val
	}
	for k, val := range extra {
		raw, marshalErr := json.Marshal(val)
		if marshalErr != nil {
			return nil, fmt.Errorf("encode %s: %w", k, marshalErr)
		}
		out[k] = raw
	}
	return json.Marshal(out)
}
