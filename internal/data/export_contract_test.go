package data

import (
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/target/jobdispatch/internal/core"
	"github.com/target/jobdispatch/internal/domain/ref"
)

var (
	_ core.JobDispatchRepository = (*JobDispatchRepo)(nil)
	_ core.AuditRequestReader    = (*AuditRequestRepo)(nil)
	_ core.RefSequenceRepository = (*RefSequenceRepo)(nil)
	_ core.RefSequenceRepository = (*RedisRefCounter)(nil)
	_ core.RefCounterSyncer      = (*RedisRefCounter)(nil)
	_ ref.Counter                = (*RefSequenceRepo)(nil)
	_ ref.Counter                = (*RedisRefCounter)(nil)
)

func exportedMethods(v any) []string {
	typ := reflect.TypeOf(v)
	var names []string
	for i := range typ.NumMethod() {
		if m := typ.Method(i); m.IsExported() {
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Repositories should only grow methods that a port in core needs.
func TestRepoExportedMethodsMatchAllowlist(t *testing.T) {
	tests := []struct {
		name string
		repo any
		want []string
	}{
		{
			name: "JobDispatchRepo",
			repo: &JobDispatchRepo{},
			want: []string{
				"Abort", "AssignRef", "Create", "Finish", "GetByID", "GetByRef",
				"List", "MarkRunning", "MarkTimedOut", "Stats",
			},
		},
		{
			name: "AuditRequestRepo",
			repo: &AuditRequestRepo{},
			want: []string{"GetLogs", "GetSummary", "ListAPILogs", "ListErrorLogEntries", "ListSummaries"},
		},
		{
			name: "RefSequenceRepo",
			repo: &RefSequenceRepo{},
			want: []string{"Current", "Next"},
		},
		{
			name: "RedisRefCounter",
			repo: &RedisRefCounter{},
			want: []string{"Current", "Next", "Ping", "SyncAtLeast"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportedMethods(tt.repo))
		})
	}
}
