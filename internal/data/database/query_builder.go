// Package database builds parameterized list queries with sanitized identifiers.
package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison used by a WHERE condition.
type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThanOrEqual ConditionType = ">="
	LessThan           ConditionType = "<"
	ILike              ConditionType = "ILIKE"
	In                 ConditionType = "IN"
	IsNull             ConditionType = "IS NULL"

	unset = -1
)

// Condition is one AND-ed predicate of a list query.
type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

// WhereCond builds a condition on field.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// OrderTerm is one ORDER BY column.
type OrderTerm struct {
	Column string
	Desc   bool
}

// ListQueryOptions describes a SELECT over a single table.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	Order      []OrderTerm
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions returns options for table with the given modifiers applied.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy appends an ordering column. Direction is ASC unless it equals "DESC" (any case).
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Order = append(o.Order, OrderTerm{Column: column, Desc: strings.EqualFold(direction, "DESC")})
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// sanitizeIdentifier quotes identifiers like "column" or "table.column".
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// BuildListQuery renders the query and its positional arguments.
//
//	opts := NewListQueryOptions("job_dispatches",
//		WithColumns("id", "ref"),
//		WithCondition(WhereCond("status", Equal, "failed")),
//		WithOrderBy("created_at", "DESC"),
//		WithLimit(50),
//	)
//	query, args := BuildListQuery(opts)
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	switch {
	case len(options.Columns) == 0:
		query.WriteString("SELECT *")
	default:
		cols := make([]string, len(options.Columns))
		for i, c := range options.Columns {
			cols[i] = sanitizeIdentifier(c)
		}
		query.WriteString("SELECT " + strings.Join(cols, ", "))
	}
	query.WriteString(" FROM " + sanitizeIdentifier(options.Table))

	where, args := buildWhereClause(options.Conditions)
	query.WriteString(where)
	if len(options.Order) > 0 {
		terms := make([]string, len(options.Order))
		for i, t := range options.Order {
			terms[i] = sanitizeIdentifier(t.Column)
			if t.Desc {
				terms[i] += " DESC"
			}
		}
		query.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}
	if options.Limit != unset {
		args = append(args, options.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}
	if options.Offset != unset {
		args = append(args, options.Offset)
		fmt.Fprintf(&query, " OFFSET $%d", len(args))
	}
	return query.String(), args
}

func buildWhereClause(conds []Condition) (string, []any) {
	parts := make([]string, 0, len(conds))
	var args []any
	for _, cond := range conds {
		if cond.Field == "" {
			continue
		}
		field := sanitizeIdentifier(cond.Field)
		switch cond.Type {
		case IsNull:
			parts = append(parts, field+" IS NULL")
		case In:
			rv := reflect.ValueOf(cond.Value)
			if rv.Kind() != reflect.Slice || rv.Len() == 0 {
				continue
			}
			placeholders := make([]string, rv.Len())
			for i := range rv.Len() {
				args = append(args, rv.Index(i).Interface())
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ", ")))
		case Equal, NotEqual, GreaterThanOrEqual, LessThan, ILike:
			args = append(args, cond.Value)
			parts = append(parts, fmt.Sprintf("%s %s $%d", field, cond.Type, len(args)))
		}
	}
	if len(parts) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}
