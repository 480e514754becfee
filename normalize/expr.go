package normalize

import (
	"strings"

	"github.com/nickyhof/sqlfp/sql"
)

// Expressions canonicalizes every expression in stmt with one post-order
// walk. Grouping parentheses are stripped and then reinstated only where the
// precedence ranks require them, unquoted function names are upper-cased,
// window ORDER BY loses explicit ASC, unquoted true and false identifiers are
// upper-cased and queries nested in expressions get the structural rules.
func Expressions(stmt sql.Statement) {
	sql.WalkStatement(stmt, expression)
}

// Expr applies the expression rules to the tree rooted at slot.
func Expr(slot *sql.Expr) {
	sql.WalkExpr(slot, expression)
}

func expression(slot *sql.Expr) {
	for {
		nested, ok := (*slot).(*sql.Nested)
		if !ok {
			break
		}
		*slot = nested.Expr
	}

	switch expr := (*slot).(type) {
	case *sql.BinaryOp:
		rank := BinaryRank(expr.Op)
		wrapBelow(&expr.Left, rank)
		wrapAtOrBelow(&expr.Right, rank)
	case *sql.UnaryOp:
		wrapBelow(&expr.Expr, UnaryRank(expr.Op))
	case *sql.IsCheck:
		wrapBelow(&expr.Expr, rankIs)
	case *sql.IsDistinctFrom:
		wrapBelow(&expr.Left, rankIs)
		wrapAtOrBelow(&expr.Right, rankIs)
	case *sql.Quantified:
		wrapBelow(&expr.Left, rankComparison)
	case *sql.InList:
		wrapBelow(&expr.Expr, rankPredicate)
	case *sql.InSubquery:
		wrapBelow(&expr.Expr, rankPredicate)
		Query(expr.Subquery)
	case *sql.Between:
		wrapBelow(&expr.Expr, rankPredicate)
		wrapAtOrBelow(&expr.Low, rankPredicate)
		wrapAtOrBelow(&expr.High, rankPredicate)
	case *sql.Like:
		wrapBelow(&expr.Expr, rankPredicate)
		wrapAtOrBelow(&expr.Pattern, rankPredicate)
		if expr.Escape != nil {
			wrapRanked(&expr.Escape)
		}
	case *sql.Position:
		wrapAtOrBelow(&expr.Expr, rankPredicate)
	case *sql.Interval:
		wrapRanked(&expr.Value)
	case *sql.AtTimeZone:
		wrapBelow(&expr.Timestamp, rankAtTimeZone)
		wrapAtOrBelow(&expr.Zone, rankAtTimeZone)
	case *sql.Collate:
		wrapBelow(&expr.Expr, rankPostfix)
	case *sql.Subscript:
		wrapBelow(&expr.Expr, rankPostfix)
	case *sql.Cast:
		if expr.Kind == sql.DoubleColonCast {
			wrapBelow(&expr.Expr, rankPostfix)
		}
	case *sql.Function:
		for i := range expr.Name {
			if expr.Name[i].Quote == 0 {
				expr.Name[i].Value = strings.ToUpper(expr.Name[i].Value)
			}
		}
		if expr.Over != nil {
			elideAscending(expr.Over.OrderBy)
		}
	case *sql.Identifier:
		if upper, ok := booleanIdentifier(expr.Ident); ok {
			expr.Ident.Value = upper
		}
	case *sql.Subquery:
		Query(expr.Query)
	case *sql.Exists:
		Query(expr.Subquery)
	}
}

// wrapBelow parenthesizes a left-hand or prefix operand that binds looser
// than rank.
func wrapBelow(slot *sql.Expr, rank int) {
	if child, ok := Precedence(*slot); ok && child < rank {
		*slot = &sql.Nested{Expr: *slot}
	}
}

// wrapAtOrBelow parenthesizes a right-hand operand that binds no tighter
// than rank. Equal ranks need the parentheses because operators associate
// to the left.
func wrapAtOrBelow(slot *sql.Expr, rank int) {
	if child, ok := Precedence(*slot); ok && child <= rank {
		*slot = &sql.Nested{Expr: *slot}
	}
}

// wrapRanked parenthesizes any operator expression. It guards positions the
// parser fills with a single primary term.
func wrapRanked(slot *sql.Expr) {
	if _, ok := Precedence(*slot); ok {
		*slot = &sql.Nested{Expr: *slot}
	}
}

// booleanIdentifier reports whether ident is an unquoted TRUE or FALSE in
// any letter case, returning the upper-cased spelling.
func booleanIdentifier(ident sql.Ident) (string, bool) {
	if ident.Quote != 0 {
		return "", false
	}
	upper := strings.ToUpper(ident.Value)
	if upper == "TRUE" || upper == "FALSE" {
		return upper, true
	}
	return "", false
}
