package sql

import (
	"strings"

	"github.com/nickyhof/sqlfp/dialect"
)

// maxDepth bounds expression and query nesting so recursive traversals of the
// resulting tree cannot exhaust the stack.
const maxDepth = 512

type Parser struct {
	lexer   *Lexer
	dialect *dialect.Dialect
	tokens  []Token
	index   int
	depth   int
}

func NewParser(sql string, d *dialect.Dialect) *Parser {
	lexer := NewLexer(sql, d)
	return &Parser{lexer: lexer, dialect: lexer.dialect}
}

// Parse parses every statement in sql. Empty statements between semicolons
// are skipped, so blank or comment-only input yields no statements.
func Parse(sql string, d *dialect.Dialect) ([]Statement, error) {
	return NewParser(sql, d).Parse()
}

func (parser *Parser) Parse() ([]Statement, error) {
	tokens, err := parser.lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	parser.tokens = tokens

	var statements []Statement
	expectSeparator := false
	for {
		for parser.consume(SemiColon) {
			expectSeparator = false
		}
		if parser.peek().Type == EOF {
			return statements, nil
		}
		if expectSeparator {
			return nil, parser.expected("end of statement", parser.peek())
		}

		statement, err := ParseStatement(parser)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
		expectSeparator = true
	}
}

func ParseStatement(parser *Parser) (Statement, error) {
	token := parser.peek()
	switch {
	case token.IsKeyword("SELECT"), token.IsKeyword("WITH"), token.IsKeyword("VALUES"), token.Type == ParenOpen:
		return ParseQuery(parser)
	case token.IsKeyword("INSERT"), token.IsKeyword("REPLACE"):
		return ParseInsert(parser)
	case token.IsKeyword("UPDATE"):
		return ParseUpdate(parser)
	case token.IsKeyword("DELETE"):
		return ParseDelete(parser)
	default:
		return nil, parser.expected("an SQL statement", token)
	}
}

func ParseInsert(parser *Parser) (Statement, error) {
	insert := &Insert{}
	if parser.parseKeyword("REPLACE") {
		insert.Replace = true
	} else if err := parser.expectKeyword("INSERT"); err != nil {
		return nil, err
	}

	// SQLite INSERT OR <action>
	if parser.parseKeyword("OR") {
		action := parser.next()
		if action.Type != Word {
			return nil, parser.expected("REPLACE, ROLLBACK, ABORT, FAIL or IGNORE after INSERT OR", action)
		}
		insert.Or = strings.ToUpper(action.Value)
	}
	insert.Ignore = parser.parseKeyword("IGNORE")
	insert.Into = parser.parseKeyword("INTO")

	// Parse table name
	name, err := parser.parseObjectName()
	if err != nil {
		return nil, err
	}
	insert.Table = name

	if parser.parseKeyword("AS") {
		alias, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		insert.Alias = &TableAlias{Explicit: true, Name: alias}
	}

	// Parse columns
	if parser.peek().Type == ParenOpen && !parser.startsQuery(parser.peekN(1)) {
		parser.next()
		columns, err := parser.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		insert.Columns = columns
	}

	// Parse source
	if parser.parseKeywords("DEFAULT", "VALUES") {
		insert.DefaultValues = true
	} else {
		source, err := parseQuery(parser)
		if err != nil {
			return nil, err
		}
		insert.Source = source
	}

	if parser.parseKeywords("ON", "CONFLICT") {
		conflict, err := parser.parseOnConflict()
		if err != nil {
			return nil, err
		}
		insert.OnConflict = conflict
	} else if parser.parseKeywords("ON", "DUPLICATE", "KEY", "UPDATE") {
		assignments, err := parser.parseAssignments()
		if err != nil {
			return nil, err
		}
		insert.OnDuplicate = assignments
	}

	if parser.parseKeyword("RETURNING") {
		items, err := parser.parseSelectItems()
		if err != nil {
			return nil, err
		}
		insert.Returning = items
	}
	return insert, nil
}

func (parser *Parser) parseOnConflict() (*OnConflict, error) {
	conflict := &OnConflict{}
	if parser.parseKeywords("ON", "CONSTRAINT") {
		name, err := parser.parseObjectName()
		if err != nil {
			return nil, err
		}
		conflict.OnConstraint = name
	} else if parser.consume(ParenOpen) {
		columns, err := parser.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		conflict.Columns = columns
	}

	if err := parser.expectKeyword("DO"); err != nil {
		return nil, err
	}
	if parser.parseKeyword("NOTHING") {
		conflict.DoNothing = true
		return conflict, nil
	}
	if !parser.parseKeywords("UPDATE", "SET") {
		return nil, parser.expected("NOTHING or UPDATE SET after DO", parser.peek())
	}
	assignments, err := parser.parseAssignments()
	if err != nil {
		return nil, err
	}
	conflict.Updates = assignments
	if parser.parseKeyword("WHERE") {
		where, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		conflict.Where = where
	}
	return conflict, nil
}

func ParseUpdate(parser *Parser) (Statement, error) {
	if err := parser.expectKeyword("UPDATE"); err != nil {
		return nil, err
	}
	update := &Update{}

	// Parse table name
	table, err := parser.parseTableWithJoins()
	if err != nil {
		return nil, err
	}
	update.Table = table

	// Parse SET clause
	if err := parser.expectKeyword("SET"); err != nil {
		return nil, err
	}
	assignments, err := parser.parseAssignments()
	if err != nil {
		return nil, err
	}
	update.Assignments = assignments

	if parser.parseKeyword("FROM") {
		from, err := parser.parseFrom()
		if err != nil {
			return nil, err
		}
		update.From = from
	}
	if update.Where, err = parser.parseOptionalWhere(); err != nil {
		return nil, err
	}
	if parser.parseKeyword("RETURNING") {
		if update.Returning, err = parser.parseSelectItems(); err != nil {
			return nil, err
		}
	}
	if parser.parseKeywords("ORDER", "BY") {
		if update.OrderBy, err = parser.parseOrderByList(); err != nil {
			return nil, err
		}
	}
	if parser.parseKeyword("LIMIT") {
		if update.Limit, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}
	return update, nil
}

func ParseDelete(parser *Parser) (Statement, error) {
	if err := parser.expectKeyword("DELETE"); err != nil {
		return nil, err
	}
	del := &Delete{}

	// MySQL multi-table form: DELETE t1, t2 FROM ...
	if !parser.peek().IsKeyword("FROM") {
		for {
			name, err := parser.parseObjectName()
			if err != nil {
				return nil, err
			}
			del.Tables = append(del.Tables, name)
			if !parser.consume(Comma) {
				break
			}
		}
	}

	var err error
	if parser.parseKeyword("FROM") {
		if del.From, err = parser.parseFrom(); err != nil {
			return nil, err
		}
	} else {
		// DELETE t WHERE ...
		for _, name := range del.Tables {
			del.From = append(del.From, &TableWithJoins{Relation: &Table{Name: name}})
		}
		del.Tables = nil
	}

	if parser.parseKeyword("USING") {
		if del.Using, err = parser.parseFrom(); err != nil {
			return nil, err
		}
	}
	if del.Where, err = parser.parseOptionalWhere(); err != nil {
		return nil, err
	}
	if parser.parseKeyword("RETURNING") {
		if del.Returning, err = parser.parseSelectItems(); err != nil {
			return nil, err
		}
	}
	if parser.parseKeywords("ORDER", "BY") {
		if del.OrderBy, err = parser.parseOrderByList(); err != nil {
			return nil, err
		}
	}
	if parser.parseKeyword("LIMIT") {
		if del.Limit, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}
	return del, nil
}

func (parser *Parser) parseAssignments() ([]*Assignment, error) {
	var assignments []*Assignment
	for {
		target, err := parser.parseObjectName()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(Eq); err != nil {
			return nil, err
		}
		value, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, &Assignment{Target: target, Value: value})
		if !parser.consume(Comma) {
			return assignments, nil
		}
	}
}

func (parser *Parser) parseOptionalWhere() (Expr, error) {
	if !parser.parseKeyword("WHERE") {
		return nil, nil
	}
	return parser.parseExpr()
}

// Token cursor

func (parser *Parser) peek() Token {
	return parser.peekN(0)
}

func (parser *Parser) peekN(n int) Token {
	if parser.index+n < len(parser.tokens) {
		return parser.tokens[parser.index+n]
	}
	return parser.tokens[len(parser.tokens)-1]
}

func (parser *Parser) next() Token {
	token := parser.peek()
	if parser.index < len(parser.tokens)-1 {
		parser.index++
	}
	return token
}

func (parser *Parser) consume(tokenType TokenType) bool {
	if parser.peek().Type == tokenType {
		parser.next()
		return true
	}
	return false
}

func (parser *Parser) expect(tokenType TokenType) error {
	if parser.consume(tokenType) {
		return nil
	}
	return parser.expected(Token{Type: tokenType}.String(), parser.peek())
}

func (parser *Parser) parseKeyword(kw string) bool {
	if parser.peek().IsKeyword(kw) {
		parser.next()
		return true
	}
	return false
}

// parseKeywords consumes the whole keyword sequence or nothing.
func (parser *Parser) parseKeywords(kws ...string) bool {
	for i, kw := range kws {
		if !parser.peekN(i).IsKeyword(kw) {
			return false
		}
	}
	parser.index += len(kws)
	return true
}

func (parser *Parser) expectKeyword(kw string) error {
	if parser.parseKeyword(kw) {
		return nil
	}
	return parser.expected(kw, parser.peek())
}

func (parser *Parser) expected(what string, found Token) error {
	return newParseError(found.Line, found.Column, "Expected: %s, found: %s", what, found)
}

func (parser *Parser) enter() error {
	parser.depth++
	if parser.depth > maxDepth {
		token := parser.peek()
		return newParseError(token.Line, token.Column, "Recursion limit exceeded")
	}
	return nil
}

func (parser *Parser) leave() {
	parser.depth--
}

func (parser *Parser) parseIdentifier() (Ident, error) {
	token := parser.peek()
	if token.Type != Word {
		return Ident{}, parser.expected("identifier", token)
	}
	parser.next()
	return Ident{Value: token.Value, Quote: token.Quote}, nil
}

func (parser *Parser) parseIdentifierList() ([]Ident, error) {
	var idents []Ident
	for {
		ident, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		idents = append(idents, ident)
		if !parser.consume(Comma) {
			return idents, nil
		}
	}
}

func (parser *Parser) parseObjectName() (ObjectName, error) {
	var name ObjectName
	for {
		ident, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		name = append(name, ident)
		if parser.peek().Type != Period || parser.peekN(1).Type != Word {
			return name, nil
		}
		parser.next()
	}
}

// startsQuery reports whether token can begin a query expression.
func (parser *Parser) startsQuery(token Token) bool {
	return token.IsKeyword("SELECT") || token.IsKeyword("WITH") || token.IsKeyword("VALUES")
}
