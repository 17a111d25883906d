// Package querybuilder renders the small set of postgres statements the
// repositories need, with $n placeholders numbered in argument order.
package querybuilder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// params collects bound arguments and hands out their placeholders.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// expand replaces each '?' in expr with the next bound argument. Extra
// question marks with no argument left are kept as-is.
func (p *params) expand(expr string, exprArgs []any) string {
	if len(exprArgs) == 0 {
		return expr
	}
	var out strings.Builder
	next := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && next < len(exprArgs) {
			out.WriteString(p.bind(exprArgs[next]))
			next++
			continue
		}
		out.WriteByte(expr[i])
	}
	return out.String()
}

type Condition interface {
	render(p *params) string
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) render(p *params) string {
	return c.column + " = " + p.bind(c.value)
}

type anyCondition struct {
	column string
	values any
}

// Any matches column against a postgres array parameter, e.g. pq.Array(ids).
func Any(column string, values any) Condition {
	return anyCondition{column: column, values: values}
}

func (c anyCondition) render(p *params) string {
	return c.column + " = ANY(" + p.bind(c.values) + ")"
}

type exprCondition struct {
	expr string
	args []any
}

// Expr is a raw predicate with '?' placeholders.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) render(p *params) string {
	return p.expand(c.expr, c.args)
}

func writeWhere(buf *strings.Builder, p *params, conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(c.render(p))
	}
}

type SelectBuilder struct {
	columns   []string
	table     string
	where     []Condition
	orderBy   []string
	forUpdate bool
	lockOf    []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// ForUpdate appends a row lock held until the surrounding transaction ends.
// Naming tables restricts the lock to rows of those tables in a join.
func (b *SelectBuilder) ForUpdate(of ...string) *SelectBuilder {
	b.forUpdate = true
	b.lockOf = append(b.lockOf, of...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var (
		buf strings.Builder
		p   params
	)
	fmt.Fprintf(&buf, "SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	writeWhere(&buf, &p, b.where)
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.forUpdate {
		buf.WriteString(" FOR UPDATE")
		if len(b.lockOf) > 0 {
			buf.WriteString(" OF ")
			buf.WriteString(strings.Join(b.lockOf, ", "))
		}
	}
	return buf.String(), p.args, nil
}

type conflictClause struct {
	target  []string
	updates []string
}

type InsertBuilder struct {
	table    string
	columns  []string
	rows     [][]any
	conflict *conflictClause
	err      error
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// InsertModel inserts one row from the exported `db`-tagged fields of model.
func InsertModel(table string, model any) *InsertBuilder {
	b := InsertInto(table)
	cols, vals, err := columnsAndValues(model)
	if err != nil {
		b.err = err
		return b
	}
	return b.Columns(cols...).Values(vals...)
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflictUpdate turns the insert into an upsert that overwrites columns
// from the proposed row when target collides.
func (b *InsertBuilder) OnConflictUpdate(target []string, columns ...string) *InsertBuilder {
	b.conflict = &conflictClause{target: append([]string(nil), target...), updates: append([]string(nil), columns...)}
	return b
}

// OnConflictDoNothing skips rows that collide on target.
func (b *InsertBuilder) OnConflictDoNothing(target ...string) *InsertBuilder {
	b.conflict = &conflictClause{target: append([]string(nil), target...)}
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var (
		buf strings.Builder
		p   params
	)
	fmt.Fprintf(&buf, "INSERT INTO %s (%s) VALUES ", b.table, strings.Join(b.columns, ", "))
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		placeholders := make([]string, len(row))
		for i, v := range row {
			placeholders[i] = p.bind(v)
		}
		buf.WriteString("(" + strings.Join(placeholders, ", ") + ")")
	}

	if c := b.conflict; c != nil {
		if len(c.target) == 0 {
			return "", nil, fmt.Errorf("conflict target is required")
		}
		fmt.Fprintf(&buf, " ON CONFLICT (%s) ", strings.Join(c.target, ", "))
		if len(c.updates) == 0 {
			buf.WriteString("DO NOTHING")
		} else {
			sets := make([]string, len(c.updates))
			for i, col := range c.updates {
				sets[i] = col + " = EXCLUDED." + col
			}
			buf.WriteString("DO UPDATE SET " + strings.Join(sets, ", "))
		}
	}
	return buf.String(), p.args, nil
}

type setClause struct {
	column string
	value  any
	expr   *exprCondition
}

type UpdateBuilder struct {
	table string
	sets  []setClause
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression with '?' placeholders.
func (b *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, expr: &exprCondition{expr: expr, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update requires at least one condition")
	}

	var (
		buf strings.Builder
		p   params
	)
	sets := make([]string, len(b.sets))
	for i, s := range b.sets {
		if s.expr != nil {
			sets[i] = s.column + " = " + s.expr.render(&p)
			continue
		}
		sets[i] = s.column + " = " + p.bind(s.value)
	}
	fmt.Fprintf(&buf, "UPDATE %s SET %s", b.table, strings.Join(sets, ", "))
	writeWhere(&buf, &p, b.where)
	return buf.String(), p.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete requires at least one condition")
	}

	var (
		buf strings.Builder
		p   params
	)
	buf.WriteString("DELETE FROM " + b.table)
	writeWhere(&buf, &p, b.where)
	return buf.String(), p.args, nil
}

func columnsAndValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
