package sql

// WalkStatement calls fn for every expression slot in stmt, including those
// inside subqueries. Slots are visited post-order with children in rendered
// left-to-right order, and fn may replace the expression in place.
func WalkStatement(stmt Statement, fn func(*Expr)) {
	w := walker{fn: fn}
	switch stmt := stmt.(type) {
	case *Query:
		w.query(stmt)
	case *Insert:
		w.insert(stmt)
	case *Update:
		w.update(stmt)
	case *Delete:
		w.delete(stmt)
	}
}

// WalkQuery is WalkStatement for a bare query, such as a subquery or the
// source of an INSERT.
func WalkQuery(query *Query, fn func(*Expr)) {
	w := walker{fn: fn}
	w.query(query)
}

// WalkExpr visits slot and every expression nested below it, children first.
func WalkExpr(slot *Expr, fn func(*Expr)) {
	w := walker{fn: fn}
	w.expr(slot)
}

type walker struct {
	fn func(*Expr)
}

func (w walker) insert(insert *Insert) {
	if insert.Source != nil {
		w.query(insert.Source)
	}
	if conflict := insert.OnConflict; conflict != nil {
		w.assignments(conflict.Updates)
		w.optional(&conflict.Where)
	}
	w.assignments(insert.OnDuplicate)
	w.selectItems(insert.Returning)
}

func (w walker) update(update *Update) {
	w.tableWithJoins(update.Table)
	w.assignments(update.Assignments)
	w.from(update.From)
	w.optional(&update.Where)
	w.selectItems(update.Returning)
	w.orderBy(update.OrderBy)
	w.optional(&update.Limit)
}

func (w walker) delete(del *Delete) {
	w.from(del.From)
	w.from(del.Using)
	w.optional(&del.Where)
	w.selectItems(del.Returning)
	w.orderBy(del.OrderBy)
	w.optional(&del.Limit)
}

func (w walker) assignments(assignments []*Assignment) {
	for _, assignment := range assignments {
		w.expr(&assignment.Value)
	}
}

func (w walker) query(query *Query) {
	if query.With != nil {
		for _, cte := range query.With.CTEs {
			w.query(cte.Query)
		}
	}
	w.setExpr(query.Body)
	w.orderBy(query.OrderBy)

	if limit := query.Limit; limit != nil {
		if limit.Kind == OffsetCommaLimit {
			w.expr(&limit.Offset.Value)
			w.expr(&limit.Count)
		} else {
			w.optional(&limit.Count)
			if limit.Offset != nil {
				w.expr(&limit.Offset.Value)
			}
		}
	}
	if query.Fetch != nil {
		w.optional(&query.Fetch.Quantity)
	}
}

func (w walker) setExpr(body SetExpr) {
	switch body := body.(type) {
	case *Select:
		w.selectBody(body)
	case *SetOperation:
		w.setExpr(body.Left)
		w.setExpr(body.Right)
	case *QueryBody:
		w.query(body.Query)
	case *Values:
		for _, row := range body.Rows {
			w.exprs(row)
		}
	}
}

func (w walker) selectBody(sel *Select) {
	w.exprs(sel.DistinctOn)
	if sel.Top != nil {
		w.expr(&sel.Top.Quantity)
	}
	w.selectItems(sel.Projection)
	w.from(sel.From)
	w.optional(&sel.Where)
	w.exprs(sel.GroupBy)
	w.optional(&sel.Having)
	for _, window := range sel.NamedWindows {
		w.windowSpec(window.Spec)
	}
	w.optional(&sel.Qualify)
}

func (w walker) selectItems(items []*SelectItem) {
	for _, item := range items {
		w.expr(&item.Expr)
	}
}

func (w walker) from(tables []*TableWithJoins) {
	for _, table := range tables {
		w.tableWithJoins(table)
	}
}

func (w walker) tableWithJoins(table *TableWithJoins) {
	w.tableFactor(table.Relation)
	for _, join := range table.Joins {
		w.tableFactor(join.Relation)
		if join.Constraint.Kind == OnConstraint {
			w.expr(&join.Constraint.On)
		}
	}
}

func (w walker) tableFactor(factor TableFactor) {
	switch factor := factor.(type) {
	case *Table:
		w.functionArgs(factor.Args)
		w.exprs(factor.WithHints)
	case *Derived:
		w.query(factor.Subquery)
	case *TableFunction:
		w.expr(&factor.Expr)
	case *Unnest:
		w.exprs(factor.Exprs)
	case *NestedJoin:
		w.tableWithJoins(factor.Join)
	case *Pivot:
		w.tableFactor(factor.Table)
		w.selectItems(factor.Aggregates)
		w.selectItems(factor.In)
	case *Unpivot:
		w.tableFactor(factor.Table)
	}
}

func (w walker) orderBy(list []*OrderByExpr) {
	for _, item := range list {
		w.expr(&item.Expr)
	}
}

func (w walker) exprs(exprs []Expr) {
	for i := range exprs {
		w.expr(&exprs[i])
	}
}

func (w walker) optional(slot *Expr) {
	if *slot != nil {
		w.expr(slot)
	}
}

func (w walker) functionArgs(args []*FunctionArg) {
	for _, arg := range args {
		w.expr(&arg.Value)
	}
}

func (w walker) windowSpec(spec *WindowSpec) {
	w.exprs(spec.PartitionBy)
	w.orderBy(spec.OrderBy)
	if frame := spec.Frame; frame != nil {
		if frame.Start != nil {
			w.optional(&frame.Start.Offset)
		}
		if frame.End != nil {
			w.optional(&frame.End.Offset)
		}
	}
}

func (w walker) expr(slot *Expr) {
	switch expr := (*slot).(type) {
	case *BinaryOp:
		w.expr(&expr.Left)
		w.expr(&expr.Right)
	case *UnaryOp:
		w.expr(&expr.Expr)
	case *Nested:
		w.expr(&expr.Expr)
	case *Tuple:
		w.exprs(expr.Exprs)
	case *IsCheck:
		w.expr(&expr.Expr)
	case *IsDistinctFrom:
		w.expr(&expr.Left)
		w.expr(&expr.Right)
	case *InList:
		w.expr(&expr.Expr)
		w.exprs(expr.List)
	case *InSubquery:
		w.expr(&expr.Expr)
		w.query(expr.Subquery)
	case *Between:
		w.expr(&expr.Expr)
		w.expr(&expr.Low)
		w.expr(&expr.High)
	case *Like:
		w.expr(&expr.Expr)
		w.expr(&expr.Pattern)
		w.optional(&expr.Escape)
	case *Case:
		w.optional(&expr.Operand)
		for _, when := range expr.Whens {
			w.expr(&when.Condition)
			w.expr(&when.Result)
		}
		w.optional(&expr.Else)
	case *Cast:
		w.expr(&expr.Expr)
	case *Extract:
		w.expr(&expr.Expr)
	case *Substring:
		w.expr(&expr.Expr)
		w.optional(&expr.From)
		w.optional(&expr.For)
	case *Trim:
		w.optional(&expr.What)
		w.expr(&expr.Expr)
	case *Position:
		w.expr(&expr.Expr)
		w.expr(&expr.In)
	case *Interval:
		w.expr(&expr.Value)
	case *Collate:
		w.expr(&expr.Expr)
	case *AtTimeZone:
		w.expr(&expr.Timestamp)
		w.expr(&expr.Zone)
	case *Array:
		w.exprs(expr.Elems)
	case *Subscript:
		w.expr(&expr.Expr)
		w.expr(&expr.Index)
	case *Subquery:
		w.query(expr.Query)
	case *Exists:
		w.query(expr.Subquery)
	case *Quantified:
		w.expr(&expr.Left)
		w.expr(&expr.Right)
	case *Function:
		if expr.Args != nil {
			w.functionArgs(expr.Args.Args)
			w.orderBy(expr.Args.OrderBy)
		}
		w.orderBy(expr.WithinGroup)
		w.optional(&expr.Filter)
		if expr.Over != nil {
			w.windowSpec(expr.Over)
		}
	}
	w.fn(slot)
}
