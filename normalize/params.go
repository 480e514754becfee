package normalize

import "github.com/nickyhof/sqlfp/sql"

// Parameterize replaces every extracted value in stmt with a placeholder
// literal carrying placeholder and returns the extracted texts in rendered
// left-to-right order. Extracted values are non-NULL literals, unquoted
// TRUE and FALSE identifiers (dialects without boolean literals) and plain
// double-quoted identifiers (dialects that quote strings with "). NULL and
// existing placeholders are left in place.
func Parameterize(stmt sql.Statement, placeholder string) []string {
	params := make([]string, 0)
	sql.WalkStatement(stmt, func(slot *sql.Expr) {
		switch expr := (*slot).(type) {
		case *sql.Literal:
			if expr.Kind == sql.NullValue || expr.Kind == sql.PlaceholderValue {
				return
			}
			params = append(params, expr.Text())
		case *sql.Identifier:
			if upper, ok := booleanIdentifier(expr.Ident); ok {
				params = append(params, upper)
			} else if expr.Ident.Quote == '"' {
				params = append(params, `"`+expr.Ident.Value+`"`)
			} else {
				return
			}
		default:
			return
		}
		*slot = sql.NewPlaceholder(placeholder)
	})
	return params
}
