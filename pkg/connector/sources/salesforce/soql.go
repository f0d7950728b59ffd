package salesforce

import (
	"strconv"
	"strings"
)

// QueryBuilder renders SOQL statements. Fields are emitted in the order they
// were added and are not deduplicated.
type QueryBuilder struct {
	table   string
	fields  []string
	where   string
	orderBy string
	limit   int
}

// NewQueryBuilder starts a query against the given SObject type.
func NewQueryBuilder(table string) *QueryBuilder {
	return &QueryBuilder{table: table}
}

// WithID selects the record id.
func (q *QueryBuilder) WithID() *QueryBuilder {
	q.fields = append(q.fields, "Id")
	return q
}

// WithDefaultMetafields selects the creation and modification timestamps.
func (q *QueryBuilder) WithDefaultMetafields() *QueryBuilder {
	q.fields = append(q.fields, "CreatedDate", "LastModifiedDate")
	return q
}

// WithFields selects additional fields, including relationship paths such
// as Owner.Name.
func (q *QueryBuilder) WithFields(fields ...string) *QueryBuilder {
	q.fields = append(q.fields, fields...)
	return q
}

// WithJoin adds a parenthesized relationship sub-select.
func (q *QueryBuilder) WithJoin(subquery string) *QueryBuilder {
	if subquery != "" {
		q.fields = append(q.fields, "(\n"+subquery+"\n)")
	}
	return q
}

func (q *QueryBuilder) WithWhere(clause string) *QueryBuilder {
	q.where = clause
	return q
}

func (q *QueryBuilder) WithOrderBy(clause string) *QueryBuilder {
	q.orderBy = clause
	return q
}

// WithLimit caps the row count; zero or less means no limit.
func (q *QueryBuilder) WithLimit(limit int) *QueryBuilder {
	q.limit = limit
	return q
}

// Build renders the statement. Optional clauses each take their own line.
func (q *QueryBuilder) Build() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.fields, ",\n"))
	b.WriteString("\nFROM ")
	b.WriteString(q.table)
	if q.where != "" {
		b.WriteString("\nWHERE ")
		b.WriteString(q.where)
	}
	if q.orderBy != "" {
		b.WriteString("\nORDER BY ")
		b.WriteString(q.orderBy)
	}
	if q.limit > 0 {
		b.WriteString("\nLIMIT ")
		b.WriteString(strconv.Itoa(q.limit))
	}
	return b.String()
}

// quote renders a SOQL string literal.
func quote(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(value) + "'"
}

// inList renders a parenthesized list of string literals for an IN clause.
func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}
