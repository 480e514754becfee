package sql

import "strings"

func ParseQuery(parser *Parser) (Statement, error) {
	return parseQuery(parser)
}

func parseQuery(parser *Parser) (*Query, error) {
	if err := parser.enter(); err != nil {
		return nil, err
	}
	defer parser.leave()

	query := &Query{}
	if parser.parseKeyword("WITH") {
		with, err := parser.parseWith()
		if err != nil {
			return nil, err
		}
		query.With = with
	}

	body, err := parser.parseSetExpr(0)
	if err != nil {
		return nil, err
	}
	query.Body = body

	if parser.parseKeywords("ORDER", "BY") {
		if query.OrderBy, err = parser.parseOrderByList(); err != nil {
			return nil, err
		}
	}

	// LIMIT and OFFSET may come in either order
	for {
		if (query.Limit == nil || query.Limit.Count == nil && !query.Limit.All) && parser.parseKeyword("LIMIT") {
			if err := parser.parseLimit(query); err != nil {
				return nil, err
			}
			continue
		}
		if parser.peek().IsKeyword("OFFSET") && (query.Limit == nil || query.Limit.Offset == nil) {
			parser.next()
			offset, err := parser.parseOffset()
			if err != nil {
				return nil, err
			}
			if query.Limit == nil {
				query.Limit = &Limit{}
			}
			query.Limit.Offset = offset
			continue
		}
		break
	}

	if parser.parseKeyword("FETCH") {
		if query.Fetch, err = parser.parseFetch(); err != nil {
			return nil, err
		}
	}

	for parser.peek().IsKeyword("FOR") {
		lock, err := parser.parseLock()
		if err != nil {
			return nil, err
		}
		query.Locks = append(query.Locks, lock)
	}
	return query, nil
}

func (parser *Parser) parseWith() (*With, error) {
	with := &With{Recursive: parser.parseKeyword("RECURSIVE")}
	for {
		cte := &CTE{}
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		cte.Name = name

		if parser.consume(ParenOpen) {
			if cte.Columns, err = parser.parseIdentifierList(); err != nil {
				return nil, err
			}
			if err := parser.expect(ParenClose); err != nil {
				return nil, err
			}
		}
		if err := parser.expectKeyword("AS"); err != nil {
			return nil, err
		}
		if parser.parseKeyword("MATERIALIZED") {
			cte.Materialized = "MATERIALIZED"
		} else if parser.parseKeywords("NOT", "MATERIALIZED") {
			cte.Materialized = "NOT MATERIALIZED"
		}

		if err := parser.expect(ParenOpen); err != nil {
			return nil, err
		}
		if cte.Query, err = parseQuery(parser); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}

		with.CTEs = append(with.CTEs, cte)
		if !parser.consume(Comma) {
			return with, nil
		}
	}
}

func setOperatorPrecedence(token Token) (SetOperator, int, bool) {
	switch {
	case token.IsKeyword("UNION"):
		return Union, 10, true
	case token.IsKeyword("EXCEPT"), token.IsKeyword("MINUS"):
		return Except, 10, true
	case token.IsKeyword("INTERSECT"):
		return Intersect, 20, true
	}
	return 0, 0, false
}

func (parser *Parser) parseSetExpr(minPrec int) (SetExpr, error) {
	left, err := parser.parseSetOperand()
	if err != nil {
		return nil, err
	}

	for {
		op, prec, ok := setOperatorPrecedence(parser.peek())
		if !ok || prec <= minPrec {
			return left, nil
		}
		parser.next()

		quantifier := NoQuantifier
		if parser.parseKeyword("ALL") {
			quantifier = QuantifierAll
		} else if parser.parseKeyword("DISTINCT") {
			quantifier = QuantifierDistinct
		}

		right, err := parser.parseSetExpr(prec)
		if err != nil {
			return nil, err
		}
		left = &SetOperation{Op: op, Quantifier: quantifier, Left: left, Right: right}
	}
}

func (parser *Parser) parseSetOperand() (SetExpr, error) {
	token := parser.peek()
	switch {
	case token.IsKeyword("SELECT"):
		return parser.parseSelect()
	case token.IsKeyword("VALUES"):
		return parser.parseValues()
	case token.Type == ParenOpen:
		parser.next()
		query, err := parseQuery(parser)
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		return &QueryBody{Query: query}, nil
	default:
		return nil, parser.expected("SELECT, VALUES, or a subquery in the query body", token)
	}
}

func (parser *Parser) parseValues() (*Values, error) {
	if err := parser.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	values := &Values{}
	for {
		if parser.parseKeyword("ROW") {
			values.ExplicitRow = true
		}
		if err := parser.expect(ParenOpen); err != nil {
			return nil, err
		}
		var row []Expr
		if parser.peek().Type != ParenClose {
			exprs, err := parser.parseExprList()
			if err != nil {
				return nil, err
			}
			row = exprs
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		values.Rows = append(values.Rows, row)
		if !parser.consume(Comma) {
			return values, nil
		}
	}
}

func (parser *Parser) parseSelect() (*Select, error) {
	if err := parser.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	sel := &Select{}

	if parser.parseKeyword("ALL") {
		sel.Distinct = AllRows
	} else if parser.parseKeyword("DISTINCT") {
		sel.Distinct = DistinctRows
		if parser.dialect.SupportsDistinctOn && parser.parseKeyword("ON") {
			if err := parser.expect(ParenOpen); err != nil {
				return nil, err
			}
			exprs, err := parser.parseExprList()
			if err != nil {
				return nil, err
			}
			if err := parser.expect(ParenClose); err != nil {
				return nil, err
			}
			sel.DistinctOn = exprs
		}
	}

	if parser.dialect.SupportsTop && parser.parseKeyword("TOP") {
		top, err := parser.parseTop()
		if err != nil {
			return nil, err
		}
		sel.Top = top
	}

	// Parse columns
	items, err := parser.parseSelectItems()
	if err != nil {
		return nil, err
	}
	sel.Projection = items

	// Parse FROM
	if parser.parseKeyword("FROM") {
		if sel.From, err = parser.parseFrom(); err != nil {
			return nil, err
		}
	}

	// Parse WHERE
	if sel.Where, err = parser.parseOptionalWhere(); err != nil {
		return nil, err
	}

	// Parse GROUP BY
	if parser.parseKeywords("GROUP", "BY") {
		if sel.GroupBy, err = parser.parseExprList(); err != nil {
			return nil, err
		}
	}

	// Parse HAVING
	if parser.parseKeyword("HAVING") {
		if sel.Having, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}

	if parser.parseKeyword("WINDOW") {
		for {
			name, err := parser.parseIdentifier()
			if err != nil {
				return nil, err
			}
			if err := parser.expectKeyword("AS"); err != nil {
				return nil, err
			}
			if err := parser.expect(ParenOpen); err != nil {
				return nil, err
			}
			spec, err := parser.parseWindowSpec()
			if err != nil {
				return nil, err
			}
			sel.NamedWindows = append(sel.NamedWindows, &NamedWindow{Name: name, Spec: spec})
			if !parser.consume(Comma) {
				break
			}
		}
	}

	if parser.parseKeyword("QUALIFY") {
		if sel.Qualify, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

func (parser *Parser) parseTop() (*Top, error) {
	top := &Top{}
	if parser.consume(ParenOpen) {
		quantity, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		top.Quantity = quantity
		top.Parens = true
	} else {
		token := parser.peek()
		if token.Type != Number && token.Type != Placeholder {
			return nil, parser.expected("a number or parenthesized expression after TOP", token)
		}
		quantity, err := parser.parsePrefix()
		if err != nil {
			return nil, err
		}
		top.Quantity = quantity
	}
	top.Percent = parser.parseKeyword("PERCENT")
	top.WithTies = parser.parseKeywords("WITH", "TIES")
	return top, nil
}

func (parser *Parser) parseSelectItems() ([]*SelectItem, error) {
	var items []*SelectItem
	for {
		item, err := parser.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !parser.consume(Comma) {
			return items, nil
		}
	}
}

func (parser *Parser) parseSelectItem() (*SelectItem, error) {
	if parser.consume(Mul) {
		return &SelectItem{Expr: &Wildcard{}}, nil
	}
	expr, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	item := &SelectItem{Expr: expr}
	if _, ok := expr.(*Wildcard); ok {
		return item, nil
	}

	alias, ok, err := parser.parseOptionalAlias(reservedForColumnAlias)
	if err != nil {
		return nil, err
	}
	if ok {
		item.Alias = &alias
	}
	return item, nil
}

// parseOptionalAlias parses [AS] alias. Without AS, a bare word is an alias
// only when it is not in reserved.
func (parser *Parser) parseOptionalAlias(reserved map[string]struct{}) (Ident, bool, error) {
	if parser.parseKeyword("AS") {
		token := parser.peek()
		switch token.Type {
		case Word:
			parser.next()
			return Ident{Value: token.Value, Quote: token.Quote}, true, nil
		case SingleQuotedString, DoubleQuotedString:
			parser.next()
			return Ident{Value: token.Value, Quote: '"'}, true, nil
		}
		return Ident{}, false, parser.expected("an identifier after AS", token)
	}

	token := parser.peek()
	if token.Type == Word && !isReserved(token, reserved) {
		parser.next()
		return Ident{Value: token.Value, Quote: token.Quote}, true, nil
	}
	return Ident{}, false, nil
}

func (parser *Parser) parseTableAlias() (*TableAlias, error) {
	explicit := parser.peek().IsKeyword("AS")
	name, ok, err := parser.parseOptionalAlias(reservedForTableAlias)
	if err != nil || !ok {
		return nil, err
	}
	alias := &TableAlias{Explicit: explicit, Name: name}
	if parser.peek().Type == ParenOpen && parser.peekN(1).Type == Word {
		parser.next()
		if alias.Columns, err = parser.parseIdentifierList(); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
	}
	return alias, nil
}

func (parser *Parser) parseFrom() ([]*TableWithJoins, error) {
	var from []*TableWithJoins
	for {
		table, err := parser.parseTableWithJoins()
		if err != nil {
			return nil, err
		}
		from = append(from, table)
		if !parser.consume(Comma) {
			return from, nil
		}
	}
}

func (parser *Parser) parseTableWithJoins() (*TableWithJoins, error) {
	relation, err := parser.parseTableFactor()
	if err != nil {
		return nil, err
	}
	table := &TableWithJoins{Relation: relation}

	for {
		join, ok, err := parser.parseJoin()
		if err != nil {
			return nil, err
		}
		if !ok {
			return table, nil
		}
		table.Joins = append(table.Joins, join)
	}
}

// parseJoinKind consumes a join operator and reports whether it takes a
// constraint.
func (parser *Parser) parseJoinKind() (JoinKind, bool, bool) {
	switch {
	case parser.parseKeyword("JOIN"):
		return PlainJoin, true, true
	case parser.parseKeywords("INNER", "JOIN"):
		return InnerJoin, true, true
	case parser.parseKeywords("LEFT", "OUTER", "JOIN"):
		return LeftOuterJoin, true, true
	case parser.parseKeywords("LEFT", "JOIN"):
		return LeftJoin, true, true
	case parser.parseKeywords("RIGHT", "OUTER", "JOIN"):
		return RightOuterJoin, true, true
	case parser.parseKeywords("RIGHT", "JOIN"):
		return RightJoin, true, true
	case parser.parseKeywords("FULL", "OUTER", "JOIN"):
		return FullOuterJoin, true, true
	case parser.parseKeywords("FULL", "JOIN"):
		return FullJoin, true, true
	case parser.parseKeywords("CROSS", "JOIN"):
		return CrossJoin, false, true
	case parser.dialect.SupportsApply && parser.parseKeywords("CROSS", "APPLY"):
		return CrossApply, false, true
	case parser.dialect.SupportsApply && parser.parseKeywords("OUTER", "APPLY"):
		return OuterApply, false, true
	}
	return 0, false, false
}

func (parser *Parser) parseJoin() (*Join, bool, error) {
	natural := parser.parseKeyword("NATURAL")
	kind, constrained, ok := parser.parseJoinKind()
	if !ok {
		if natural {
			return nil, false, parser.expected("a join type after NATURAL", parser.peek())
		}
		return nil, false, nil
	}
	if natural && !constrained {
		return nil, false, parser.expected("a join type after NATURAL", parser.peek())
	}

	relation, err := parser.parseTableFactor()
	if err != nil {
		return nil, false, err
	}
	join := &Join{Kind: kind, Relation: relation}

	switch {
	case natural:
		join.Constraint.Kind = NaturalConstraint
	case !constrained:
	case parser.parseKeyword("ON"):
		on, err := parser.parseExpr()
		if err != nil {
			return nil, false, err
		}
		join.Constraint = JoinConstraint{Kind: OnConstraint, On: on}
	case parser.parseKeyword("USING"):
		if err := parser.expect(ParenOpen); err != nil {
			return nil, false, err
		}
		columns, err := parser.parseIdentifierList()
		if err != nil {
			return nil, false, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, false, err
		}
		join.Constraint = JoinConstraint{Kind: UsingConstraint, Using: columns}
	}
	return join, true, nil
}

func (parser *Parser) parseTableFactor() (TableFactor, error) {
	if err := parser.enter(); err != nil {
		return nil, err
	}
	defer parser.leave()

	factor, err := parser.parseTableFactorBase()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case parser.parseKeyword("PIVOT"):
			factor, err = parser.parsePivot(factor)
		case parser.parseKeyword("UNPIVOT"):
			factor, err = parser.parseUnpivot(factor)
		default:
			return factor, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (parser *Parser) parseTableFactorBase() (TableFactor, error) {
	var err error

	if parser.parseKeyword("LATERAL") {
		if err := parser.expect(ParenOpen); err != nil {
			return nil, err
		}
		derived := &Derived{Lateral: true}
		if derived.Subquery, err = parseQuery(parser); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		derived.Alias, err = parser.parseTableAlias()
		return derived, err
	}

	if parser.peek().Type == ParenOpen {
		parser.next()
		if t := parser.peek(); parser.startsQuery(t) || t.Type == ParenOpen && parser.parenthesizedQueryAhead() {
			start := parser.index
			derived, err := parser.parseDerived()
			if err == nil || parser.startsQuery(t) {
				return derived, err
			}
			// ((SELECT ...) AS a JOIN b ON ...) is a nested join
			parser.index = start
		}

		nested := &NestedJoin{}
		if nested.Join, err = parser.parseTableWithJoins(); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		nested.Alias, err = parser.parseTableAlias()
		return nested, err
	}

	if parser.peek().IsKeyword("UNNEST") && parser.peekN(1).Type == ParenOpen {
		parser.index += 2
		unnest := &Unnest{}
		if unnest.Exprs, err = parser.parseExprList(); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		unnest.WithOrdinality = parser.parseKeywords("WITH", "ORDINALITY")
		unnest.Alias, err = parser.parseTableAlias()
		return unnest, err
	}

	if parser.peek().IsKeyword("TABLE") && parser.peekN(1).Type == ParenOpen {
		parser.index += 2
		function := &TableFunction{}
		if function.Expr, err = parser.parseExpr(); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		function.Alias, err = parser.parseTableAlias()
		return function, err
	}

	// Parse table name
	name, err := parser.parseObjectName()
	if err != nil {
		return nil, err
	}
	table := &Table{Name: name}

	if parser.consume(ParenOpen) {
		table.Args = []*FunctionArg{}
		if parser.peek().Type != ParenClose {
			if table.Args, err = parser.parseFunctionArgList(); err != nil {
				return nil, err
			}
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
	}

	if table.Alias, err = parser.parseTableAlias(); err != nil {
		return nil, err
	}

	// MSSQL table hints: t WITH (NOLOCK)
	if parser.peek().IsKeyword("WITH") && parser.peekN(1).Type == ParenOpen {
		parser.index += 2
		if table.WithHints, err = parser.parseExprList(); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (parser *Parser) parseDerived() (TableFactor, error) {
	derived := &Derived{}
	var err error
	if derived.Subquery, err = parseQuery(parser); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	if derived.Alias, err = parser.parseTableAlias(); err != nil {
		return nil, err
	}
	return derived, nil
}

// parenthesizedQueryAhead reports whether the tokens after the current run of
// opening parentheses begin a query.
func (parser *Parser) parenthesizedQueryAhead() bool {
	for i := 0; ; i++ {
		token := parser.peekN(i)
		if token.Type != ParenOpen {
			return parser.startsQuery(token)
		}
	}
}

func (parser *Parser) parsePivot(table TableFactor) (TableFactor, error) {
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	pivot := &Pivot{Table: table}
	aggregates, err := parser.parseSelectItems()
	if err != nil {
		return nil, err
	}
	pivot.Aggregates = aggregates

	if err := parser.expectKeyword("FOR"); err != nil {
		return nil, err
	}
	if parser.consume(ParenOpen) {
		if pivot.For, err = parser.parseIdentifierList(); err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
	} else {
		column, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		pivot.For = []Ident{column}
	}

	if err := parser.expectKeyword("IN"); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	if pivot.In, err = parser.parseSelectItems(); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	pivot.Alias, err = parser.parseTableAlias()
	return pivot, err
}

func (parser *Parser) parseUnpivot(table TableFactor) (TableFactor, error) {
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	unpivot := &Unpivot{Table: table}
	var err error
	if unpivot.Value, err = parser.parseIdentifier(); err != nil {
		return nil, err
	}
	if err := parser.expectKeyword("FOR"); err != nil {
		return nil, err
	}
	if unpivot.Name, err = parser.parseIdentifier(); err != nil {
		return nil, err
	}
	if err := parser.expectKeyword("IN"); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	if unpivot.Columns, err = parser.parseIdentifierList(); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	unpivot.Alias, err = parser.parseTableAlias()
	return unpivot, err
}

func (parser *Parser) parseOrderByList() ([]*OrderByExpr, error) {
	var list []*OrderByExpr
	for {
		expr, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		item := &OrderByExpr{Expr: expr}
		if parser.parseKeyword("ASC") {
			item.Direction = Ascending
		} else if parser.parseKeyword("DESC") {
			item.Direction = Descending
		}
		if parser.parseKeywords("NULLS", "FIRST") {
			item.Nulls = NullsFirst
		} else if parser.parseKeywords("NULLS", "LAST") {
			item.Nulls = NullsLast
		}
		list = append(list, item)
		if !parser.consume(Comma) {
			return list, nil
		}
	}
}

func (parser *Parser) parseLimit(query *Query) error {
	if query.Limit == nil {
		query.Limit = &Limit{}
	}
	limit := query.Limit

	if parser.parseKeyword("ALL") {
		limit.All = true
		return nil
	}
	count, err := parser.parseExpr()
	if err != nil {
		return err
	}

	if parser.dialect.SupportsLimitComma && limit.Offset == nil && parser.consume(Comma) {
		value, err := parser.parseExpr()
		if err != nil {
			return err
		}
		limit.Kind = OffsetCommaLimit
		limit.Offset = &Offset{Value: count}
		limit.Count = value
		return nil
	}
	limit.Count = count
	return nil
}

func (parser *Parser) parseOffset() (*Offset, error) {
	value, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	offset := &Offset{Value: value}
	if parser.parseKeyword("ROW") {
		offset.Rows = OffsetRow
	} else if parser.parseKeyword("ROWS") {
		offset.Rows = OffsetRowsKeyword
	}
	return offset, nil
}

func (parser *Parser) parseFetch() (*Fetch, error) {
	if !parser.parseKeyword("FIRST") && !parser.parseKeyword("NEXT") {
		return nil, parser.expected("FIRST or NEXT", parser.peek())
	}
	fetch := &Fetch{}
	if !parser.peek().IsKeyword("ROW") && !parser.peek().IsKeyword("ROWS") {
		quantity, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		fetch.Quantity = quantity
		fetch.Percent = parser.parseKeyword("PERCENT")
	}
	if !parser.parseKeyword("ROW") && !parser.parseKeyword("ROWS") {
		return nil, parser.expected("ROW or ROWS", parser.peek())
	}
	if parser.parseKeyword("ONLY") {
		return fetch, nil
	}
	if parser.parseKeywords("WITH", "TIES") {
		fetch.WithTies = true
		return fetch, nil
	}
	return nil, parser.expected("ONLY or WITH TIES", parser.peek())
}

func (parser *Parser) parseLock() (*LockClause, error) {
	if err := parser.expectKeyword("FOR"); err != nil {
		return nil, err
	}
	lock := &LockClause{}
	switch {
	case parser.parseKeyword("UPDATE"):
	case parser.parseKeyword("SHARE"):
		lock.Share = true
	default:
		return nil, parser.expected("UPDATE or SHARE after FOR", parser.peek())
	}

	if parser.parseKeyword("OF") {
		for {
			name, err := parser.parseObjectName()
			if err != nil {
				return nil, err
			}
			lock.Of = append(lock.Of, name)
			if !parser.consume(Comma) {
				break
			}
		}
	}
	if parser.parseKeyword("NOWAIT") {
		lock.Wait = "NOWAIT"
	} else if parser.parseKeywords("SKIP", "LOCKED") {
		lock.Wait = "SKIP LOCKED"
	}
	return lock, nil
}

// parseWindowSpec parses the body of OVER (...) after the opening parenthesis
// and consumes the closing one.
func (parser *Parser) parseWindowSpec() (*WindowSpec, error) {
	spec := &WindowSpec{}
	var err error

	if token := parser.peek(); token.Type == Word && !isWindowClauseStart(token) {
		name := Ident{Value: token.Value, Quote: token.Quote}
		parser.next()
		spec.Name = &name
	}
	if parser.parseKeywords("PARTITION", "BY") {
		if spec.PartitionBy, err = parser.parseExprList(); err != nil {
			return nil, err
		}
	}
	if parser.parseKeywords("ORDER", "BY") {
		if spec.OrderBy, err = parser.parseOrderByList(); err != nil {
			return nil, err
		}
	}

	var units FrameUnits
	framed := true
	switch {
	case parser.parseKeyword("ROWS"):
		units = RowsFrame
	case parser.parseKeyword("RANGE"):
		units = RangeFrame
	case parser.parseKeyword("GROUPS"):
		units = GroupsFrame
	default:
		framed = false
	}
	if framed {
		frame := &WindowFrame{Units: units}
		if parser.parseKeyword("BETWEEN") {
			if frame.Start, err = parser.parseFrameBound(); err != nil {
				return nil, err
			}
			if err := parser.expectKeyword("AND"); err != nil {
				return nil, err
			}
			if frame.End, err = parser.parseFrameBound(); err != nil {
				return nil, err
			}
		} else if frame.Start, err = parser.parseFrameBound(); err != nil {
			return nil, err
		}
		spec.Frame = frame
	}

	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return spec, nil
}

func isWindowClauseStart(token Token) bool {
	if token.Quote != 0 {
		return false
	}
	switch strings.ToUpper(token.Value) {
	case "PARTITION", "ORDER", "ROWS", "RANGE", "GROUPS":
		return true
	}
	return false
}

func (parser *Parser) parseFrameBound() (*FrameBound, error) {
	if parser.parseKeywords("CURRENT", "ROW") {
		return &FrameBound{Kind: CurrentRow}, nil
	}
	bound := &FrameBound{}
	if !parser.parseKeyword("UNBOUNDED") {
		offset, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		bound.Offset = offset
	}
	switch {
	case parser.parseKeyword("PRECEDING"):
		bound.Kind = Preceding
	case parser.parseKeyword("FOLLOWING"):
		bound.Kind = Following
	default:
		return nil, parser.expected("PRECEDING or FOLLOWING", parser.peek())
	}
	return bound, nil
}
