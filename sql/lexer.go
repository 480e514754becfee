package sql

import (
	"strings"
	"unicode/utf8"

	"github.com/nickyhof/sqlfp/dialect"
)

type Token struct {
	Type  TokenType
	Value string
	// Quote is the opening delimiter of a quoted identifier, 0 otherwise.
	Quote byte
	// Tag holds the tag of a dollar-quoted string.
	Tag    string
	Line   int
	Column int
}

type TokenType int

const (
	EOF TokenType = iota
	Word
	Number
	SingleQuotedString
	DoubleQuotedString
	NationalString
	HexString
	BitString
	EscapedString
	DollarQuotedString
	Placeholder
	Comma
	Period
	SemiColon
	ParenOpen
	ParenClose
	BracketOpen
	BracketClose
	Eq
	DoubleEq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	Spaceship
	Plus
	Minus
	Mul
	Div
	Mod
	StringConcat
	Pipe
	Caret
	Ampersand
	Tilde
	ShiftLeft
	ShiftRight
	DoubleColon
	Colon
	Arrow
	LongArrow
	HashArrow
	HashLongArrow
	AtArrow
	ArrowAt
	RightArrow
)

var punctuation = map[TokenType]string{
	EOF:           "EOF",
	Comma:         ",",
	Period:        ".",
	SemiColon:     ";",
	ParenOpen:     "(",
	ParenClose:    ")",
	BracketOpen:   "[",
	BracketClose:  "]",
	Eq:            "=",
	DoubleEq:      "==",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Spaceship:     "<=>",
	Plus:          "+",
	Minus:         "-",
	Mul:           "*",
	Div:           "/",
	Mod:           "%",
	StringConcat:  "||",
	Pipe:          "|",
	Caret:         "^",
	Ampersand:     "&",
	Tilde:         "~",
	ShiftLeft:     "<<",
	ShiftRight:    ">>",
	DoubleColon:   "::",
	Colon:         ":",
	Arrow:         "->",
	LongArrow:     "->>",
	HashArrow:     "#>",
	HashLongArrow: "#>>",
	AtArrow:       "@>",
	ArrowAt:       "<@",
	RightArrow:    "=>",
}

func (token Token) String() string {
	switch token.Type {
	case Word:
		if token.Quote != 0 {
			return string(token.Quote) + token.Value + string(dialect.ClosingQuote(token.Quote))
		}
		return token.Value
	case Number, Placeholder:
		return token.Value
	case SingleQuotedString:
		return "'" + token.Value + "'"
	case DoubleQuotedString:
		return "\"" + token.Value + "\""
	case NationalString:
		return "N'" + token.Value + "'"
	case HexString:
		return "X'" + token.Value + "'"
	case BitString:
		return "B'" + token.Value + "'"
	case EscapedString:
		return "E'" + token.Value + "'"
	case DollarQuotedString:
		return "$" + token.Value + "$"
	case NotEq:
		return token.Value
	}
	if text, ok := punctuation[token.Type]; ok {
		return text
	}
	return token.Value
}

// IsKeyword reports whether the token is the unquoted word kw, ignoring case.
func (token Token) IsKeyword(kw string) bool {
	return token.Type == Word && token.Quote == 0 && strings.EqualFold(token.Value, kw)
}

type Lexer struct {
	sql          string
	dialect      *dialect.Dialect
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
}

func NewLexer(sql string, d *dialect.Dialect) *Lexer {
	if d == nil {
		d = dialect.Generic
	}
	lexer := &Lexer{sql: sql, dialect: d, line: 1}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.ch == '\n' {
		lexer.line++
		lexer.column = 0
	}
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
	lexer.column++
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) peekCharAt(offset int) byte {
	if lexer.readPosition+offset >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition+offset]
}

func (lexer *Lexer) atEnd() bool {
	return lexer.position >= len(lexer.sql)
}

// Tokenize returns every token of the input, terminated by an EOF token.
func (lexer *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		token, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
		if token.Type == EOF {
			return tokens, nil
		}
	}
}

func (lexer *Lexer) NextToken() (Token, error) {
	if err := lexer.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	line, column := lexer.line, lexer.column
	token, err := lexer.readToken()
	if err != nil {
		return Token{}, err
	}
	token.Line, token.Column = line, column
	if err := checkUTF8(token); err != nil {
		return Token{}, err
	}
	return token, nil
}

// checkUTF8 rejects invalid UTF-8 in bare words and placeholders. Quoted
// literals and identifiers keep their bytes as written.
func checkUTF8(token Token) error {
	if token.Type != Word && token.Type != Placeholder || token.Quote != 0 {
		return nil
	}
	for i := 0; i < len(token.Value); {
		r, size := utf8.DecodeRuneInString(token.Value[i:])
		if r == utf8.RuneError && size == 1 {
			return newParseError(token.Line, token.Column+i, "Invalid UTF-8 byte 0x%02x", token.Value[i])
		}
		i += size
	}
	return nil
}

func (lexer *Lexer) readToken() (Token, error) {
	if lexer.atEnd() {
		return Token{Type: EOF}, nil
	}

	ch := lexer.ch
	switch {
	case ch == '\'':
		value, err := lexer.readQuoted('\'')
		return Token{Type: SingleQuotedString, Value: value}, err
	case ch == '"' && lexer.dialect.DoubleQuotedStrings:
		value, err := lexer.readQuoted('"')
		return Token{Type: DoubleQuotedString, Value: value}, err
	case lexer.dialect.IsIdentifierQuote(ch):
		value, err := lexer.readDelimitedIdentifier(ch)
		return Token{Type: Word, Value: value, Quote: ch}, err
	case isDigit(ch) || (ch == '.' && isDigit(lexer.peekChar())):
		return Token{Type: Number, Value: lexer.readNumber()}, nil
	case isIdentifierStart(ch):
		return lexer.readWord()
	case ch == '?':
		return lexer.readPlaceholder(), nil
	case ch == '$':
		return lexer.readDollar()
	case ch == ':' && lexer.peekChar() != ':' && isIdentifierPart(lexer.peekChar()):
		return lexer.readPlaceholder(), nil
	case ch == '@' && isIdentifierPart(lexer.peekChar()):
		return lexer.readPlaceholder(), nil
	}

	if tokenType, width, ok := lexer.matchOperator(); ok {
		value := lexer.sql[lexer.position : lexer.position+width]
		for i := 0; i < width; i++ {
			lexer.readChar()
		}
		return Token{Type: tokenType, Value: value}, nil
	}

	return Token{}, lexer.errorf("Unexpected character '%c'", ch)
}

// matchOperator finds the longest operator at the current position.
func (lexer *Lexer) matchOperator() (TokenType, int, bool) {
	c0, c1, c2 := lexer.ch, lexer.peekChar(), lexer.peekCharAt(1)
	switch c0 {
	case ',':
		return Comma, 1, true
	case '.':
		return Period, 1, true
	case ';':
		return SemiColon, 1, true
	case '(':
		return ParenOpen, 1, true
	case ')':
		return ParenClose, 1, true
	case '[':
		return BracketOpen, 1, true
	case ']':
		return BracketClose, 1, true
	case '+':
		return Plus, 1, true
	case '*':
		return Mul, 1, true
	case '/':
		return Div, 1, true
	case '%':
		return Mod, 1, true
	case '^':
		return Caret, 1, true
	case '&':
		return Ampersand, 1, true
	case '~':
		return Tilde, 1, true
	case '=':
		switch c1 {
		case '=':
			return DoubleEq, 2, true
		case '>':
			return RightArrow, 2, true
		}
		return Eq, 1, true
	case '!':
		if c1 == '=' {
			return NotEq, 2, true
		}
	case '|':
		if c1 == '|' {
			return StringConcat, 2, true
		}
		return Pipe, 1, true
	case '-':
		if c1 == '>' && lexer.dialect.SupportsJSONOperators {
			if c2 == '>' {
				return LongArrow, 3, true
			}
			return Arrow, 2, true
		}
		return Minus, 1, true
	case '<':
		switch {
		case c1 == '=' && c2 == '>' && lexer.dialect.SupportsNullSafeEq:
			return Spaceship, 3, true
		case c1 == '=':
			return LtEq, 2, true
		case c1 == '>':
			return NotEq, 2, true
		case c1 == '<':
			return ShiftLeft, 2, true
		case c1 == '@' && lexer.dialect.SupportsJSONOperators:
			return ArrowAt, 2, true
		}
		return Lt, 1, true
	case '>':
		switch c1 {
		case '=':
			return GtEq, 2, true
		case '>':
			return ShiftRight, 2, true
		}
		return Gt, 1, true
	case ':':
		if c1 == ':' {
			return DoubleColon, 2, true
		}
		return Colon, 1, true
	case '#':
		if c1 == '>' && lexer.dialect.SupportsJSONOperators {
			if c2 == '>' {
				return HashLongArrow, 3, true
			}
			return HashArrow, 2, true
		}
	case '@':
		if c1 == '>' && lexer.dialect.SupportsJSONOperators {
			return AtArrow, 2, true
		}
	}
	return 0, 0, false
}

func (lexer *Lexer) skipWhitespaceAndComments() error {
	for {
		switch {
		case lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' || lexer.ch == '\f':
			lexer.readChar()
		case lexer.ch == '-' && lexer.peekChar() == '-':
			lexer.skipLineComment()
		case lexer.ch == '#' && lexer.dialect.HashComments && lexer.peekChar() != '>':
			lexer.skipLineComment()
		case lexer.ch == '/' && lexer.peekChar() == '*':
			if err := lexer.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (lexer *Lexer) skipLineComment() {
	for !lexer.atEnd() && lexer.ch != '\n' {
		lexer.readChar()
	}
}

func (lexer *Lexer) skipBlockComment() error {
	line, column := lexer.line, lexer.column
	lexer.readChar() // '/'
	lexer.readChar() // '*'
	depth := 1
	for depth > 0 {
		switch {
		case lexer.atEnd():
			return &ParseError{Message: "Unexpected EOF while in a multi-line comment", Line: line, Column: column}
		case lexer.ch == '*' && lexer.peekChar() == '/':
			depth--
			lexer.readChar()
		case lexer.ch == '/' && lexer.peekChar() == '*':
			depth++
			lexer.readChar()
		}
		lexer.readChar()
	}
	return nil
}

func (lexer *Lexer) readWord() (Token, error) {
	// N'..', X'..', B'..' and E'..' prefixed strings
	if lexer.peekChar() == '\'' {
		var tokenType TokenType
		switch lexer.ch {
		case 'N', 'n':
			tokenType = NationalString
		case 'X', 'x':
			tokenType = HexString
		case 'B', 'b':
			tokenType = BitString
		case 'E', 'e':
			if lexer.dialect.SupportsEscapedStrings {
				tokenType = EscapedString
			}
		}
		if tokenType != 0 {
			lexer.readChar()
			value, err := lexer.readQuoted('\'')
			return Token{Type: tokenType, Value: value}, err
		}
	}
	position := lexer.position
	for !lexer.atEnd() && isIdentifierPart(lexer.ch) {
		lexer.readChar()
	}
	return Token{Type: Word, Value: lexer.sql[position:lexer.position]}, nil
}

// readQuoted reads a quoted literal and returns its raw contents. A doubled
// quote is kept as written and does not terminate the literal.
func (lexer *Lexer) readQuoted(quote byte) (string, error) {
	line, column := lexer.line, lexer.column
	lexer.readChar() // opening quote
	var builder strings.Builder
	for {
		if lexer.atEnd() {
			return "", &ParseError{Message: "Unterminated string literal", Line: line, Column: column}
		}
		ch := lexer.ch
		if ch == '\\' && lexer.dialect.BackslashEscapes {
			builder.WriteByte(ch)
			lexer.readChar()
			if lexer.atEnd() {
				continue
			}
			builder.WriteByte(lexer.ch)
			lexer.readChar()
			continue
		}
		if ch == quote {
			if lexer.peekChar() == quote {
				builder.WriteByte(ch)
				builder.WriteByte(ch)
				lexer.readChar()
				lexer.readChar()
				continue
			}
			lexer.readChar()
			return builder.String(), nil
		}
		builder.WriteByte(ch)
		lexer.readChar()
	}
}

func (lexer *Lexer) readDelimitedIdentifier(open byte) (string, error) {
	line, column := lexer.line, lexer.column
	closing := dialect.ClosingQuote(open)
	lexer.readChar()
	var builder strings.Builder
	for {
		if lexer.atEnd() {
			return "", &ParseError{
				Message: "Expected close delimiter '" + string(closing) + "' before EOF",
				Line:    line,
				Column:  column,
			}
		}
		if lexer.ch == closing {
			if lexer.peekChar() == closing {
				builder.WriteByte(closing)
				lexer.readChar()
				lexer.readChar()
				continue
			}
			lexer.readChar()
			return builder.String(), nil
		}
		builder.WriteByte(lexer.ch)
		lexer.readChar()
	}
}

func (lexer *Lexer) readNumber() string {
	position := lexer.position
	if lexer.ch == '0' && (lexer.peekChar() == 'x' || lexer.peekChar() == 'X') && isHexDigit(lexer.peekCharAt(1)) {
		lexer.readChar()
		lexer.readChar()
		for isHexDigit(lexer.ch) {
			lexer.readChar()
		}
		return lexer.sql[position:lexer.position]
	}
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	if lexer.ch == '.' && lexer.peekChar() != '.' {
		lexer.readChar()
		for isDigit(lexer.ch) {
			lexer.readChar()
		}
	}
	if lexer.ch == 'e' || lexer.ch == 'E' {
		next := lexer.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(lexer.peekCharAt(1))) {
			lexer.readChar()
			if lexer.ch == '+' || lexer.ch == '-' {
				lexer.readChar()
			}
			for isDigit(lexer.ch) {
				lexer.readChar()
			}
		}
	}
	return lexer.sql[position:lexer.position]
}

// readPlaceholder reads ?, ?1, :name, :1 and @name forms.
func (lexer *Lexer) readPlaceholder() Token {
	position := lexer.position
	lexer.readChar()
	for !lexer.atEnd() && isIdentifierPart(lexer.ch) {
		lexer.readChar()
	}
	return Token{Type: Placeholder, Value: lexer.sql[position:lexer.position]}
}

// readDollar reads $1 placeholders and $tag$...$tag$ strings.
func (lexer *Lexer) readDollar() (Token, error) {
	position := lexer.position
	next := lexer.peekChar()
	if isDigit(next) {
		lexer.readChar()
		for isDigit(lexer.ch) {
			lexer.readChar()
		}
		return Token{Type: Placeholder, Value: lexer.sql[position:lexer.position]}, nil
	}
	if !lexer.dialect.SupportsDollarQuotes {
		return lexer.readPlaceholder(), nil
	}

	line, column := lexer.line, lexer.column
	lexer.readChar()
	tagStart := lexer.position
	for !lexer.atEnd() && lexer.ch != '$' && isIdentifierPart(lexer.ch) {
		lexer.readChar()
	}
	if lexer.ch != '$' {
		// $name placeholder
		return Token{Type: Placeholder, Value: lexer.sql[position:lexer.position]}, nil
	}
	tag := lexer.sql[tagStart:lexer.position]
	lexer.readChar()
	closing := "$" + tag + "$"
	end := strings.Index(lexer.sql[lexer.position:], closing)
	if end < 0 {
		return Token{}, &ParseError{Message: "Unterminated dollar-quoted string", Line: line, Column: column}
	}
	value := lexer.sql[lexer.position : lexer.position+end]
	for i := 0; i < end+len(closing); i++ {
		lexer.readChar()
	}
	return Token{Type: DollarQuotedString, Value: value, Tag: tag}, nil
}

func (lexer *Lexer) errorf(format string, args ...any) error {
	return newParseError(lexer.line, lexer.column, format, args...)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isIdentifierPart(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch) || ch == '$'
}

// tokenize is a convenience wrapper used by tests.
func tokenize(sql string, d *dialect.Dialect) ([]Token, error) {
	return NewLexer(sql, d).Tokenize()
}
