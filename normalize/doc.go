// Package normalize rewrites parsed statements into their canonical
// fingerprint form.
//
// The rewrites run in a fixed order over one tree, each in place:
//
//	normalize.Structure(stmt)   // joins, table aliases, ORDER BY ASC
//	normalize.Expressions(stmt) // parentheses, function names, booleans
//	params := normalize.Parameterize(stmt, "?")
//
// After the three passes sql.Format(stmt) is the normalized text.
package normalize
