package normalize

import "github.com/nickyhof/sqlfp/sql"

// Precedence ranks. A higher rank binds tighter. The ranks above 90 and the
// predicate ranks between 35 and 45 mirror the parser's binding powers so a
// canonical rendering re-parses to the tree it was printed from.
const (
	rankOr           = 10
	rankXor          = 20
	rankAnd          = 30
	rankNot          = 35
	rankIs           = 38
	rankComparison   = 40
	rankPredicate    = 45
	rankBitwiseOr    = 50
	rankBitwiseXor   = 55
	rankBitwiseAnd   = 60
	rankShift        = 65
	rankAdditive     = 70
	rankMultiplicate = 80
	rankUnary        = 85
	rankOther        = 90
	rankAtTimeZone   = 95
	rankPostfix      = 100
)

var binaryRanks = map[sql.BinaryOperator]int{
	sql.OpOr:            rankOr,
	sql.OpXor:           rankXor,
	sql.OpAnd:           rankAnd,
	sql.OpEq:            rankComparison,
	sql.OpNotEq:         rankComparison,
	sql.OpLt:            rankComparison,
	sql.OpLtEq:          rankComparison,
	sql.OpGt:            rankComparison,
	sql.OpGtEq:          rankComparison,
	sql.OpSpaceship:     rankComparison,
	sql.OpBitwiseOr:     rankBitwiseOr,
	sql.OpBitwiseXor:    rankBitwiseXor,
	sql.OpBitwiseAnd:    rankBitwiseAnd,
	sql.OpShiftLeft:     rankShift,
	sql.OpShiftRight:    rankShift,
	sql.OpPlus:          rankAdditive,
	sql.OpMinus:         rankAdditive,
	sql.OpStringConcat:  rankAdditive,
	sql.OpMultiply:      rankMultiplicate,
	sql.OpDivide:        rankMultiplicate,
	sql.OpModulo:        rankMultiplicate,
	sql.OpIntegerDivide: rankMultiplicate,
}

// BinaryRank returns the rank of a binary operator. Operators without an
// entry, such as the JSON arrows, rank 90.
func BinaryRank(op sql.BinaryOperator) int {
	if rank, ok := binaryRanks[op]; ok {
		return rank
	}
	return rankOther
}

// UnaryRank returns 35 for NOT and 85 for every other prefix operator.
func UnaryRank(op sql.UnaryOperator) int {
	if op == sql.OpNot {
		return rankNot
	}
	return rankUnary
}

// Precedence reports the rank of an operator expression. Atoms such as
// identifiers, literals, calls and anything rendered inside its own brackets
// have no rank and never need parentheses; ok is false for them.
func Precedence(expr sql.Expr) (rank int, ok bool) {
	switch expr := expr.(type) {
	case *sql.BinaryOp:
		return BinaryRank(expr.Op), true
	case *sql.UnaryOp:
		return UnaryRank(expr.Op), true
	case *sql.IsCheck, *sql.IsDistinctFrom:
		return rankIs, true
	case *sql.Quantified:
		return rankComparison, true
	case *sql.InList, *sql.InSubquery, *sql.Between, *sql.Like:
		return rankPredicate, true
	case *sql.AtTimeZone:
		return rankAtTimeZone, true
	case *sql.Collate, *sql.Subscript:
		return rankPostfix, true
	case *sql.Cast:
		if expr.Kind == sql.DoubleColonCast {
			return rankPostfix, true
		}
	}
	return 0, false
}
