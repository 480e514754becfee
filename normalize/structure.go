package normalize

import "github.com/nickyhof/sqlfp/sql"

// Structure canonicalizes the statement's query blocks in place: verbose join
// keywords collapse to their short forms, every table alias loses its AS
// marker and explicit ASC in ORDER BY is dropped. Query blocks reached through
// CTEs, set operations, derived tables, nested joins, INSERT sources and the
// join lists of UPDATE and DELETE are all visited.
func Structure(stmt sql.Statement) {
	switch stmt := stmt.(type) {
	case *sql.Query:
		Query(stmt)
	case *sql.Insert:
		// INSERT INTO t AS x only parses with AS, so the target alias keeps it.
		if stmt.Source != nil {
			Query(stmt.Source)
		}
	case *sql.Update:
		tableWithJoins(stmt.Table)
		from(stmt.From)
	case *sql.Delete:
		from(stmt.From)
		from(stmt.Using)
	}
}

// Query applies the structural rules to one query and every query block
// nested in its FROM clauses and set operations.
func Query(query *sql.Query) {
	if query.With != nil {
		for _, cte := range query.With.CTEs {
			Query(cte.Query)
		}
	}
	setExpr(query.Body)
	elideAscending(query.OrderBy)
}

func setExpr(body sql.SetExpr) {
	switch body := body.(type) {
	case *sql.Select:
		from(body.From)
		for _, window := range body.NamedWindows {
			elideAscending(window.Spec.OrderBy)
		}
	case *sql.SetOperation:
		setExpr(body.Left)
		setExpr(body.Right)
	case *sql.QueryBody:
		Query(body.Query)
	}
}

func from(tables []*sql.TableWithJoins) {
	for _, table := range tables {
		tableWithJoins(table)
	}
}

func tableWithJoins(table *sql.TableWithJoins) {
	tableFactor(table.Relation)
	for _, join := range table.Joins {
		join.Kind = joinKind(join.Kind)
		tableFactor(join.Relation)
	}
}

func joinKind(kind sql.JoinKind) sql.JoinKind {
	switch kind {
	case sql.InnerJoin:
		return sql.PlainJoin
	case sql.LeftOuterJoin:
		return sql.LeftJoin
	case sql.RightOuterJoin:
		return sql.RightJoin
	default:
		return kind
	}
}

func tableFactor(factor sql.TableFactor) {
	var alias *sql.TableAlias
	switch factor := factor.(type) {
	case *sql.Table:
		alias = factor.Alias
	case *sql.Derived:
		Query(factor.Subquery)
		alias = factor.Alias
	case *sql.TableFunction:
		alias = factor.Alias
	case *sql.Unnest:
		alias = factor.Alias
	case *sql.NestedJoin:
		tableWithJoins(factor.Join)
		alias = factor.Alias
	case *sql.Pivot:
		tableFactor(factor.Table)
		alias = factor.Alias
	case *sql.Unpivot:
		tableFactor(factor.Table)
		alias = factor.Alias
	}
	if alias != nil {
		alias.Explicit = false
	}
}

// elideAscending drops explicit ASC markers. DESC and the unspecified
// direction are left alone.
func elideAscending(list []*sql.OrderByExpr) {
	for _, item := range list {
		if item.Direction == sql.Ascending {
			item.Direction = sql.DefaultDirection
		}
	}
}
