package model

import (
	"encoding/json"
	"time"
)

// AuditRequestSummary holds the counters the audit subsystem maintains for one request.
// The raw log text is loaded separately because it can be large.
type AuditRequestSummary struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	APILogCount   int       `json:"api_log_count"`
	ErrorLogCount int       `json:"error_log_count"`
	LogLineCount  int       `json:"log_line_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// APILog is one outbound API call recorded against an audit request.
type APILog struct {
	ID             string          `json:"id"`
	AuditRequestID string          `json:"audit_request_id"`
	ServiceName    string          `json:"service_name"`
	Method         string          `json:"method"`
	URL            string          `json:"url"`
	StatusCode     int             `json:"status_code"`
	Request        json.RawMessage `json:"request,omitempty"`
	Response       json.RawMessage `json:"response,omitempty"`
	RunTimeMs      *int64          `json:"run_time_ms,omitempty"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Fields returns the entry keyed by its JSON field names.
func (l *APILog) Fields() map[string]any {
	return map[string]any{
		"id":           l.ID,
		"service_name": l.ServiceName,
		"method":       l.Method,
		"url":          l.URL,
		"status_code":  l.StatusCode,
		"request":      rawOrNil(l.Request),
		"response":     rawOrNil(l.Response),
		"run_time_ms":  l.RunTimeMs,
		"started_at":   l.StartedAt,
		"created_at":   l.CreatedAt,
	}
}

// ErrorLogEntry is one structured error raised while serving an audit request.
type ErrorLogEntry struct {
	ID             string          `json:"id"`
	AuditRequestID string          `json:"audit_request_id"`
	ErrorClass     string          `json:"error_class"`
	Code           string          `json:"code"`
	Level          string          `json:"level"`
	Message        string          `json:"message"`
	File           string          `json:"file"`
	Line           int             `json:"line"`
	StackTrace     json.RawMessage `json:"stack_trace,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Fields returns the entry keyed by its JSON field names.
func (e *ErrorLogEntry) Fields() map[string]any {
	return map[string]any{
		"id":          e.ID,
		"error_class": e.ErrorClass,
		"code":        e.Code,
		"level":       e.Level,
		"message":     e.Message,
		"file":        e.File,
		"line":        e.Line,
		"stack_trace": rawOrNil(e.StackTrace),
		"created_at":  e.CreatedAt,
	}
}

// rawOrNil decodes a JSON document so it serializes inline and can be filtered; invalid documents pass through as strings.
func rawOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
