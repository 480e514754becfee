// Package sql provides dialect-aware SQL lexing, parsing and rendering for sqlfp.
//
// The package includes a lexer that tokenizes SQL strings, a parser that
// produces abstract syntax trees for query and DML statements, a walker that
// visits every expression slot, and a renderer that prints a tree back as
// canonical SQL text.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer("SELECT * FROM users", dialect.PostgreSQL)
//	for {
//	    token, err := lexer.NextToken()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Printf("Token: %v = %s\n", token.Type, token)
//	}
//
// # Parser Usage
//
//	statements, err := sql.Parse("SELECT * FROM mydb.users WHERE id = 1", dialect.Generic)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sql.Format(statements[0]))
//
// # Supported Statements
//
// The parser supports the following statement types:
//   - Query (SELECT, VALUES, WITH, set operations)
//   - Insert (including REPLACE, ON CONFLICT and ON DUPLICATE KEY UPDATE)
//   - Update (including UPDATE ... FROM)
//   - Delete (including DELETE ... USING)
package sql
