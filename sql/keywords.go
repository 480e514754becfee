package sql

import "strings"

// Words that end an expression in a projection, so a bare word following an
// expression is only an alias when it is not listed here.
var reservedForColumnAlias = keywordSet(
	"AND", "AS", "ASC", "BETWEEN", "BY", "CLUSTER", "CROSS", "DESC", "DISTRIBUTE", "ELSE",
	"END", "EXCEPT", "FETCH", "FOR", "FROM", "FULL", "GROUP", "HAVING", "ILIKE", "IN",
	"INNER", "INTERSECT", "INTO", "IS", "JOIN", "LATERAL", "LEFT", "LIKE", "LIMIT", "MINUS",
	"NATURAL", "NOT", "OFFSET", "ON", "OR", "ORDER", "OUTER", "QUALIFY", "REGEXP",
	"RETURNING", "RIGHT", "RLIKE", "SELECT", "SET", "SIMILAR", "THEN", "TOP", "UNION",
	"USING", "VALUES", "WHEN", "WHERE", "WINDOW", "WITH", "XOR",
)

// Words that may not be used as an implicit table alias.
var reservedForTableAlias = keywordSet(
	"AND", "ANTI", "APPLY", "AS", "CONNECT", "CROSS", "DO", "END", "EXCEPT", "FETCH",
	"FOR", "FROM", "FULL", "GROUP", "HAVING", "INNER", "INTERSECT", "INTO", "JOIN",
	"LATERAL", "LEFT", "LIMIT", "MINUS", "NATURAL", "OFFSET", "ON", "OR", "ORDER",
	"OUTER", "PIVOT", "QUALIFY", "RETURNING", "RIGHT", "SAMPLE", "SELECT", "SEMI", "SET",
	"START", "TABLESAMPLE", "UNION", "UNPIVOT", "USING", "VALUES", "WHERE", "WINDOW",
	"WITH",
)

// Words that cannot begin an expression.
var reservedForExpression = keywordSet(
	"AND", "AS", "ASC", "BETWEEN", "BY", "CROSS", "DESC", "ELSE", "END", "EXCEPT", "FETCH",
	"FROM", "FULL", "GROUP", "HAVING", "ILIKE", "IN", "INNER", "INTERSECT", "INTO", "IS",
	"JOIN", "LIKE", "LIMIT", "NATURAL", "OFFSET", "ON", "OR", "ORDER", "OUTER", "QUALIFY",
	"RETURNING", "SELECT", "SET", "THEN", "UNION", "USING", "WHEN", "WHERE", "WINDOW",
)

// Keyword functions that may be written without an argument list.
var niladicFunctions = keywordSet(
	"CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP", "CURRENT_USER", "LOCALTIME",
	"LOCALTIMESTAMP", "SESSION_USER",
)

var typedStringPrefixes = keywordSet(
	"DATE", "DATETIME", "TIME", "TIMESTAMP", "TIMESTAMPTZ",
)

var intervalFields = keywordSet(
	"CENTURY", "DAY", "DAYS", "DAY_HOUR", "DAY_MICROSECOND", "DAY_MINUTE", "DAY_SECOND",
	"DECADE", "HOUR", "HOURS", "HOUR_MICROSECOND", "HOUR_MINUTE", "HOUR_SECOND",
	"MICROSECOND", "MICROSECONDS", "MILLENNIUM", "MILLISECOND", "MILLISECONDS", "MINUTE",
	"MINUTES", "MINUTE_MICROSECOND", "MINUTE_SECOND", "MONTH", "MONTHS", "QUARTER",
	"SECOND", "SECONDS", "SECOND_MICROSECOND", "WEEK", "WEEKS", "YEAR", "YEARS",
	"YEAR_MONTH",
)

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// isReserved reports whether token is an unquoted word listed in set.
func isReserved(token Token, set map[string]struct{}) bool {
	if token.Type != Word || token.Quote != 0 {
		return false
	}
	_, ok := set[strings.ToUpper(token.Value)]
	return ok
}
