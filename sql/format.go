package sql

import (
	"strings"

	"github.com/nickyhof/sqlfp/dialect"
)

// Format renders stmt as canonical SQL text. Keywords are upper-case, list
// items are separated by ", " and every token is separated by a single space.
// Identifiers keep their spelling and quoting and numbers keep their source text.
func Format(stmt Statement) string {
	var f formatter
	f.statement(stmt)
	return f.String()
}

func FormatQuery(query *Query) string {
	var f formatter
	f.query(query)
	return f.String()
}

func FormatExpr(expr Expr) string {
	var f formatter
	f.expr(expr)
	return f.String()
}

func (ident Ident) String() string {
	if ident.Quote == 0 {
		return ident.Value
	}
	closing := string(dialect.ClosingQuote(ident.Quote))
	return string(ident.Quote) + strings.ReplaceAll(ident.Value, closing, closing+closing) + closing
}

func (name ObjectName) String() string {
	parts := make([]string, len(name))
	for i, ident := range name {
		parts[i] = ident.String()
	}
	return strings.Join(parts, ".")
}

func (dataType *DataType) String() string {
	name := dataType.Name
	if dataType.Quote != 0 {
		name = Ident{Value: dataType.Name, Quote: dataType.Quote}.String()
	}
	if len(dataType.Args) > 0 {
		args := "(" + strings.Join(dataType.Args, ", ") + ")"
		if base, ok := strings.CutSuffix(name, " UNSIGNED"); ok && dataType.Quote == 0 && base != "" {
			name = base + args + " UNSIGNED"
		} else {
			name += args
		}
	}
	return name + strings.Repeat("[]", dataType.Array)
}

type formatter struct {
	strings.Builder
}

func (f *formatter) statement(stmt Statement) {
	switch stmt := stmt.(type) {
	case *Query:
		f.query(stmt)
	case *Insert:
		f.insert(stmt)
	case *Update:
		f.update(stmt)
	case *Delete:
		f.delete(stmt)
	}
}

func (f *formatter) insert(insert *Insert) {
	if insert.Replace {
		f.WriteString("REPLACE")
	} else {
		f.WriteString("INSERT")
	}
	if insert.Or != "" {
		f.WriteString(" OR " + insert.Or)
	}
	if insert.Ignore {
		f.WriteString(" IGNORE")
	}
	if insert.Into {
		f.WriteString(" INTO")
	}
	f.WriteString(" " + insert.Table.String())
	if insert.Alias != nil {
		f.tableAlias(insert.Alias)
	}
	if len(insert.Columns) > 0 {
		f.WriteString(" (")
		f.idents(insert.Columns)
		f.WriteString(")")
	}

	if insert.DefaultValues {
		f.WriteString(" DEFAULT VALUES")
	} else if insert.Source != nil {
		f.WriteString(" ")
		f.query(insert.Source)
	}

	if conflict := insert.OnConflict; conflict != nil {
		f.WriteString(" ON CONFLICT")
		if len(conflict.OnConstraint) > 0 {
			f.WriteString(" ON CONSTRAINT " + conflict.OnConstraint.String())
		} else if len(conflict.Columns) > 0 {
			f.WriteString(" (")
			f.idents(conflict.Columns)
			f.WriteString(")")
		}
		if conflict.DoNothing {
			f.WriteString(" DO NOTHING")
		} else {
			f.WriteString(" DO UPDATE SET ")
			f.assignments(conflict.Updates)
			if conflict.Where != nil {
				f.WriteString(" WHERE ")
				f.expr(conflict.Where)
			}
		}
	}
	if len(insert.OnDuplicate) > 0 {
		f.WriteString(" ON DUPLICATE KEY UPDATE ")
		f.assignments(insert.OnDuplicate)
	}
	f.returning(insert.Returning)
}

func (f *formatter) update(update *Update) {
	f.WriteString("UPDATE ")
	f.tableWithJoins(update.Table)
	f.WriteString(" SET ")
	f.assignments(update.Assignments)
	if len(update.From) > 0 {
		f.WriteString(" FROM ")
		f.from(update.From)
	}
	f.where(update.Where)
	f.returning(update.Returning)
	f.orderBy(update.OrderBy)
	if update.Limit != nil {
		f.WriteString(" LIMIT ")
		f.expr(update.Limit)
	}
}

func (f *formatter) delete(del *Delete) {
	f.WriteString("DELETE")
	for i, table := range del.Tables {
		if i == 0 {
			f.WriteString(" ")
		} else {
			f.WriteString(", ")
		}
		f.WriteString(table.String())
	}
	f.WriteString(" FROM ")
	f.from(del.From)
	if len(del.Using) > 0 {
		f.WriteString(" USING ")
		f.from(del.Using)
	}
	f.where(del.Where)
	f.returning(del.Returning)
	f.orderBy(del.OrderBy)
	if del.Limit != nil {
		f.WriteString(" LIMIT ")
		f.expr(del.Limit)
	}
}

func (f *formatter) assignments(assignments []*Assignment) {
	for i, assignment := range assignments {
		if i > 0 {
			f.WriteString(", ")
		}
		f.WriteString(assignment.Target.String() + " = ")
		f.expr(assignment.Value)
	}
}

func (f *formatter) where(where Expr) {
	if where != nil {
		f.WriteString(" WHERE ")
		f.expr(where)
	}
}

func (f *formatter) returning(items []*SelectItem) {
	if len(items) > 0 {
		f.WriteString(" RETURNING ")
		f.selectItems(items)
	}
}

func (f *formatter) query(query *Query) {
	if query.With != nil {
		f.WriteString("WITH ")
		if query.With.Recursive {
			f.WriteString("RECURSIVE ")
		}
		for i, cte := range query.With.CTEs {
			if i > 0 {
				f.WriteString(", ")
			}
			f.WriteString(cte.Name.String())
			if len(cte.Columns) > 0 {
				f.WriteString(" (")
				f.idents(cte.Columns)
				f.WriteString(")")
			}
			f.WriteString(" AS ")
			if cte.Materialized != "" {
				f.WriteString(cte.Materialized + " ")
			}
			f.WriteString("(")
			f.query(cte.Query)
			f.WriteString(")")
		}
		f.WriteString(" ")
	}

	f.setExpr(query.Body)
	f.orderBy(query.OrderBy)

	if limit := query.Limit; limit != nil {
		switch {
		case limit.Kind == OffsetCommaLimit:
			f.WriteString(" LIMIT ")
			f.expr(limit.Offset.Value)
			f.WriteString(", ")
			f.expr(limit.Count)
		default:
			if limit.All {
				f.WriteString(" LIMIT ALL")
			} else if limit.Count != nil {
				f.WriteString(" LIMIT ")
				f.expr(limit.Count)
			}
			if limit.Offset != nil {
				f.WriteString(" OFFSET ")
				f.expr(limit.Offset.Value)
				switch limit.Offset.Rows {
				case OffsetRow:
					f.WriteString(" ROW")
				case OffsetRowsKeyword:
					f.WriteString(" ROWS")
				}
			}
		}
	}

	if fetch := query.Fetch; fetch != nil {
		f.WriteString(" FETCH FIRST ")
		if fetch.Quantity != nil {
			f.expr(fetch.Quantity)
			if fetch.Percent {
				f.WriteString(" PERCENT")
			}
			f.WriteString(" ")
		}
		if fetch.WithTies {
			f.WriteString("ROWS WITH TIES")
		} else {
			f.WriteString("ROWS ONLY")
		}
	}

	for _, lock := range query.Locks {
		if lock.Share {
			f.WriteString(" FOR SHARE")
		} else {
			f.WriteString(" FOR UPDATE")
		}
		for i, name := range lock.Of {
			if i == 0 {
				f.WriteString(" OF ")
			} else {
				f.WriteString(", ")
			}
			f.WriteString(name.String())
		}
		if lock.Wait != "" {
			f.WriteString(" " + lock.Wait)
		}
	}
}

func (f *formatter) setExpr(body SetExpr) {
	switch body := body.(type) {
	case *Select:
		f.selectBody(body)
	case *SetOperation:
		f.setExpr(body.Left)
		f.WriteString(" " + body.Op.String())
		switch body.Quantifier {
		case QuantifierAll:
			f.WriteString(" ALL")
		case QuantifierDistinct:
			f.WriteString(" DISTINCT")
		}
		f.WriteString(" ")
		f.setExpr(body.Right)
	case *QueryBody:
		f.WriteString("(")
		f.query(body.Query)
		f.WriteString(")")
	case *Values:
		f.WriteString("VALUES ")
		for i, row := range body.Rows {
			if i > 0 {
				f.WriteString(", ")
			}
			if body.ExplicitRow {
				f.WriteString("ROW")
			}
			f.WriteString("(")
			f.exprs(row)
			f.WriteString(")")
		}
	}
}

func (f *formatter) selectBody(sel *Select) {
	f.WriteString("SELECT")
	switch sel.Distinct {
	case DistinctRows:
		f.WriteString(" DISTINCT")
		if len(sel.DistinctOn) > 0 {
			f.WriteString(" ON (")
			f.exprs(sel.DistinctOn)
			f.WriteString(")")
		}
	case AllRows:
		f.WriteString(" ALL")
	}
	if top := sel.Top; top != nil {
		f.WriteString(" TOP ")
		if top.Parens {
			f.WriteString("(")
			f.expr(top.Quantity)
			f.WriteString(")")
		} else {
			f.expr(top.Quantity)
		}
		if top.Percent {
			f.WriteString(" PERCENT")
		}
		if top.WithTies {
			f.WriteString(" WITH TIES")
		}
	}

	f.WriteString(" ")
	f.selectItems(sel.Projection)
	if len(sel.From) > 0 {
		f.WriteString(" FROM ")
		f.from(sel.From)
	}
	f.where(sel.Where)
	if len(sel.GroupBy) > 0 {
		f.WriteString(" GROUP BY ")
		f.exprs(sel.GroupBy)
	}
	if sel.Having != nil {
		f.WriteString(" HAVING ")
		f.expr(sel.Having)
	}
	for i, window := range sel.NamedWindows {
		if i == 0 {
			f.WriteString(" WINDOW ")
		} else {
			f.WriteString(", ")
		}
		f.WriteString(window.Name.String() + " AS ")
		f.windowSpec(window.Spec)
	}
	if sel.Qualify != nil {
		f.WriteString(" QUALIFY ")
		f.expr(sel.Qualify)
	}
}

func (f *formatter) selectItems(items []*SelectItem) {
	for i, item := range items {
		if i > 0 {
			f.WriteString(", ")
		}
		f.expr(item.Expr)
		if item.Alias != nil {
			f.WriteString(" AS " + item.Alias.String())
		}
	}
}

func (f *formatter) from(tables []*TableWithJoins) {
	for i, table := range tables {
		if i > 0 {
			f.WriteString(", ")
		}
		f.tableWithJoins(table)
	}
}

func (f *formatter) tableWithJoins(table *TableWithJoins) {
	f.tableFactor(table.Relation)
	for _, join := range table.Joins {
		f.WriteString(" ")
		if join.Constraint.Kind == NaturalConstraint {
			f.WriteString("NATURAL ")
		}
		f.WriteString(join.Kind.String() + " ")
		f.tableFactor(join.Relation)
		switch join.Constraint.Kind {
		case OnConstraint:
			f.WriteString(" ON ")
			f.expr(join.Constraint.On)
		case UsingConstraint:
			f.WriteString(" USING (")
			f.idents(join.Constraint.Using)
			f.WriteString(")")
		}
	}
}

func (f *formatter) tableFactor(factor TableFactor) {
	switch factor := factor.(type) {
	case *Table:
		f.WriteString(factor.Name.String())
		if factor.Args != nil {
			f.WriteString("(")
			f.functionArgs(factor.Args)
			f.WriteString(")")
		}
		f.tableAlias(factor.Alias)
		if len(factor.WithHints) > 0 {
			f.WriteString(" WITH (")
			f.exprs(factor.WithHints)
			f.WriteString(")")
		}
	case *Derived:
		if factor.Lateral {
			f.WriteString("LATERAL ")
		}
		f.WriteString("(")
		f.query(factor.Subquery)
		f.WriteString(")")
		f.tableAlias(factor.Alias)
	case *TableFunction:
		f.WriteString("TABLE(")
		f.expr(factor.Expr)
		f.WriteString(")")
		f.tableAlias(factor.Alias)
	case *Unnest:
		f.WriteString("UNNEST(")
		f.exprs(factor.Exprs)
		f.WriteString(")")
		if factor.WithOrdinality {
			f.WriteString(" WITH ORDINALITY")
		}
		f.tableAlias(factor.Alias)
	case *NestedJoin:
		f.WriteString("(")
		f.tableWithJoins(factor.Join)
		f.WriteString(")")
		f.tableAlias(factor.Alias)
	case *Pivot:
		f.tableFactor(factor.Table)
		f.WriteString(" PIVOT(")
		f.selectItems(factor.Aggregates)
		f.WriteString(" FOR ")
		if len(factor.For) == 1 {
			f.WriteString(factor.For[0].String())
		} else {
			f.WriteString("(")
			f.idents(factor.For)
			f.WriteString(")")
		}
		f.WriteString(" IN (")
		f.selectItems(factor.In)
		f.WriteString("))")
		f.tableAlias(factor.Alias)
	case *Unpivot:
		f.tableFactor(factor.Table)
		f.WriteString(" UNPIVOT(" + factor.Value.String() + " FOR " + factor.Name.String() + " IN (")
		f.idents(factor.Columns)
		f.WriteString("))")
		f.tableAlias(factor.Alias)
	}
}

func (f *formatter) tableAlias(alias *TableAlias) {
	if alias == nil {
		return
	}
	if alias.Explicit {
		f.WriteString(" AS ")
	} else {
		f.WriteString(" ")
	}
	f.WriteString(alias.Name.String())
	if len(alias.Columns) > 0 {
		f.WriteString(" (")
		f.idents(alias.Columns)
		f.WriteString(")")
	}
}

func (f *formatter) orderBy(list []*OrderByExpr) {
	if len(list) > 0 {
		f.WriteString(" ORDER BY ")
		f.orderByList(list)
	}
}

func (f *formatter) orderByList(list []*OrderByExpr) {
	for i, item := range list {
		if i > 0 {
			f.WriteString(", ")
		}
		f.expr(item.Expr)
		switch item.Direction {
		case Ascending:
			f.WriteString(" ASC")
		case Descending:
			f.WriteString(" DESC")
		}
		switch item.Nulls {
		case NullsFirst:
			f.WriteString(" NULLS FIRST")
		case NullsLast:
			f.WriteString(" NULLS LAST")
		}
	}
}

func (f *formatter) idents(idents []Ident) {
	for i, ident := range idents {
		if i > 0 {
			f.WriteString(", ")
		}
		f.WriteString(ident.String())
	}
}

func (f *formatter) exprs(exprs []Expr) {
	for i, expr := range exprs {
		if i > 0 {
			f.WriteString(", ")
		}
		f.expr(expr)
	}
}

func (f *formatter) negated(negated bool, keyword string) {
	if negated {
		f.WriteString(" NOT")
	}
	f.WriteString(" " + keyword + " ")
}

func (f *formatter) expr(expr Expr) {
	switch expr := expr.(type) {
	case *Identifier:
		f.WriteString(expr.Ident.String())
	case *CompoundIdentifier:
		f.WriteString(ObjectName(expr.Parts).String())
	case *Literal:
		f.WriteString(expr.Text())
	case *BinaryOp:
		f.expr(expr.Left)
		f.WriteString(" " + expr.Op.String() + " ")
		f.expr(expr.Right)
	case *UnaryOp:
		if expr.Op == OpNot {
			f.WriteString("NOT ")
			f.expr(expr.Expr)
			return
		}
		operand := FormatExpr(expr.Expr)
		f.WriteString(expr.Op.String())
		if strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+") {
			f.WriteString(" ")
		}
		f.WriteString(operand)
	case *Nested:
		f.WriteString("(")
		f.expr(expr.Expr)
		f.WriteString(")")
	case *Tuple:
		f.WriteString("(")
		f.exprs(expr.Exprs)
		f.WriteString(")")
	case *IsCheck:
		f.expr(expr.Expr)
		f.WriteString(" " + expr.Kind.String())
	case *IsDistinctFrom:
		f.expr(expr.Left)
		if expr.Negated {
			f.WriteString(" IS NOT DISTINCT FROM ")
		} else {
			f.WriteString(" IS DISTINCT FROM ")
		}
		f.expr(expr.Right)
	case *InList:
		f.expr(expr.Expr)
		f.negated(expr.Negated, "IN")
		f.WriteString("(")
		f.exprs(expr.List)
		f.WriteString(")")
	case *InSubquery:
		f.expr(expr.Expr)
		f.negated(expr.Negated, "IN")
		f.WriteString("(")
		f.query(expr.Subquery)
		f.WriteString(")")
	case *Between:
		f.expr(expr.Expr)
		f.negated(expr.Negated, "BETWEEN")
		f.expr(expr.Low)
		f.WriteString(" AND ")
		f.expr(expr.High)
	case *Like:
		f.expr(expr.Expr)
		f.negated(expr.Negated, expr.Kind.String())
		f.expr(expr.Pattern)
		if expr.Escape != nil {
			f.WriteString(" ESCAPE ")
			f.expr(expr.Escape)
		}
	case *Case:
		f.WriteString("CASE")
		if expr.Operand != nil {
			f.WriteString(" ")
			f.expr(expr.Operand)
		}
		for _, when := range expr.Whens {
			f.WriteString(" WHEN ")
			f.expr(when.Condition)
			f.WriteString(" THEN ")
			f.expr(when.Result)
		}
		if expr.Else != nil {
			f.WriteString(" ELSE ")
			f.expr(expr.Else)
		}
		f.WriteString(" END")
	case *Cast:
		switch expr.Kind {
		case DoubleColonCast:
			f.expr(expr.Expr)
			f.WriteString("::" + expr.DataType.String())
			return
		case TryCastFunction:
			f.WriteString("TRY_CAST(")
		case SafeCastFunction:
			f.WriteString("SAFE_CAST(")
		default:
			f.WriteString("CAST(")
		}
		f.expr(expr.Expr)
		f.WriteString(" AS " + expr.DataType.String() + ")")
	case *Extract:
		f.WriteString("EXTRACT(" + expr.Field + " FROM ")
		f.expr(expr.Expr)
		f.WriteString(")")
	case *Substring:
		f.WriteString("SUBSTRING(")
		f.expr(expr.Expr)
		if expr.From != nil {
			f.WriteString(" FROM ")
			f.expr(expr.From)
		}
		if expr.For != nil {
			f.WriteString(" FOR ")
			f.expr(expr.For)
		}
		f.WriteString(")")
	case *Trim:
		f.WriteString("TRIM(")
		if expr.Where != "" {
			f.WriteString(expr.Where + " ")
		}
		if expr.What != nil {
			f.expr(expr.What)
			f.WriteString(" ")
		}
		if expr.Where != "" || expr.What != nil {
			f.WriteString("FROM ")
		}
		f.expr(expr.Expr)
		f.WriteString(")")
	case *Position:
		f.WriteString("POSITION(")
		f.expr(expr.Expr)
		f.WriteString(" IN ")
		f.expr(expr.In)
		f.WriteString(")")
	case *Interval:
		f.WriteString("INTERVAL ")
		f.expr(expr.Value)
		if expr.Field != "" {
			f.WriteString(" " + expr.Field)
		}
	case *TypedString:
		f.WriteString(expr.DataType.String() + " '" + expr.Value + "'")
	case *Collate:
		f.expr(expr.Expr)
		f.WriteString(" COLLATE " + expr.Collation.String())
	case *AtTimeZone:
		f.expr(expr.Timestamp)
		f.WriteString(" AT TIME ZONE ")
		f.expr(expr.Zone)
	case *Array:
		if expr.Named {
			f.WriteString("ARRAY")
		}
		f.WriteString("[")
		f.exprs(expr.Elems)
		f.WriteString("]")
	case *Subscript:
		f.expr(expr.Expr)
		f.WriteString("[")
		f.expr(expr.Index)
		f.WriteString("]")
	case *Subquery:
		f.WriteString("(")
		f.query(expr.Query)
		f.WriteString(")")
	case *Exists:
		if expr.Negated {
			f.WriteString("NOT ")
		}
		f.WriteString("EXISTS (")
		f.query(expr.Subquery)
		f.WriteString(")")
	case *Quantified:
		f.expr(expr.Left)
		f.WriteString(" " + expr.Op.String() + " " + expr.Kind.String() + "(")
		if subquery, ok := expr.Right.(*Subquery); ok {
			f.query(subquery.Query)
		} else {
			f.expr(expr.Right)
		}
		f.WriteString(")")
	case *Wildcard:
		if len(expr.Qualifier) > 0 {
			f.WriteString(expr.Qualifier.String() + ".")
		}
		f.WriteString("*")
	case *Function:
		f.function(expr)
	}
}

func (f *formatter) function(function *Function) {
	f.WriteString(function.Name.String())
	if function.Args == nil {
		return
	}

	f.WriteString("(")
	if function.Args.Distinct {
		f.WriteString("DISTINCT ")
	} else if function.Args.All {
		f.WriteString("ALL ")
	}
	args := function.Args.Args
	if len(args) == 1 && args[0].Name == nil && len(function.Args.OrderBy) == 0 {
		// f(SELECT ...) re-parses to the same single subquery argument
		if subquery, ok := args[0].Value.(*Subquery); ok {
			f.query(subquery.Query)
			args = nil
		}
	}
	f.functionArgs(args)
	if len(function.Args.OrderBy) > 0 {
		f.WriteString(" ORDER BY ")
		f.orderByList(function.Args.OrderBy)
	}
	f.WriteString(")")

	if len(function.WithinGroup) > 0 {
		f.WriteString(" WITHIN GROUP (ORDER BY ")
		f.orderByList(function.WithinGroup)
		f.WriteString(")")
	}
	if function.Filter != nil {
		f.WriteString(" FILTER (WHERE ")
		f.expr(function.Filter)
		f.WriteString(")")
	}
	if function.Over != nil {
		f.WriteString(" OVER ")
		f.windowSpec(function.Over)
	} else if function.OverName != nil {
		f.WriteString(" OVER " + function.OverName.String())
	}
}

func (f *formatter) functionArgs(args []*FunctionArg) {
	for i, arg := range args {
		if i > 0 {
			f.WriteString(", ")
		}
		if arg.Name != nil {
			f.WriteString(arg.Name.String() + " => ")
		}
		f.expr(arg.Value)
	}
}

func (f *formatter) windowSpec(spec *WindowSpec) {
	var parts []string
	if spec.Name != nil {
		parts = append(parts, spec.Name.String())
	}
	if len(spec.PartitionBy) > 0 {
		var part formatter
		part.WriteString("PARTITION BY ")
		part.exprs(spec.PartitionBy)
		parts = append(parts, part.String())
	}
	if len(spec.OrderBy) > 0 {
		var part formatter
		part.WriteString("ORDER BY ")
		part.orderByList(spec.OrderBy)
		parts = append(parts, part.String())
	}
	if frame := spec.Frame; frame != nil {
		text := frame.Units.String() + " "
		if frame.End != nil {
			text += "BETWEEN " + frameBound(frame.Start) + " AND " + frameBound(frame.End)
		} else {
			text += frameBound(frame.Start)
		}
		parts = append(parts, text)
	}
	f.WriteString("(" + strings.Join(parts, " ") + ")")
}

func frameBound(bound *FrameBound) string {
	if bound.Kind == CurrentRow {
		return "CURRENT ROW"
	}
	offset := "UNBOUNDED"
	if bound.Offset != nil {
		offset = FormatExpr(bound.Offset)
	}
	if bound.Kind == Preceding {
		return offset + " PRECEDING"
	}
	return offset + " FOLLOWING"
}
