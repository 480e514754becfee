package sql

import "strings"

// Binding powers. They agree with the canonical parenthesization ranks so a
// rendered tree re-parses into the same shape.
const (
	precOr         = 10
	precXor        = 20
	precAnd        = 30
	precNot        = 35
	precIs         = 38
	precCompare    = 40
	precPredicate  = 45
	precBitOr      = 50
	precBitXor     = 55
	precBitAnd     = 60
	precShift      = 65
	precAdditive   = 70
	precMultiply   = 80
	precUnary      = 85
	precOther      = 90
	precAtTimeZone = 95
	precPostfix    = 100
)

var symbolOperators = map[TokenType]struct {
	op   BinaryOperator
	prec int
}{
	Eq:            {OpEq, precCompare},
	DoubleEq:      {OpEq, precCompare},
	NotEq:         {OpNotEq, precCompare},
	Lt:            {OpLt, precCompare},
	LtEq:          {OpLtEq, precCompare},
	Gt:            {OpGt, precCompare},
	GtEq:          {OpGtEq, precCompare},
	Spaceship:     {OpSpaceship, precCompare},
	Pipe:          {OpBitwiseOr, precBitOr},
	Caret:         {OpBitwiseXor, precBitXor},
	Ampersand:     {OpBitwiseAnd, precBitAnd},
	ShiftLeft:     {OpShiftLeft, precShift},
	ShiftRight:    {OpShiftRight, precShift},
	Plus:          {OpPlus, precAdditive},
	Minus:         {OpMinus, precAdditive},
	StringConcat:  {OpStringConcat, precAdditive},
	Mul:           {OpMultiply, precMultiply},
	Div:           {OpDivide, precMultiply},
	Mod:           {OpModulo, precMultiply},
	Arrow:         {OpArrow, precOther},
	LongArrow:     {OpLongArrow, precOther},
	HashArrow:     {OpHashArrow, precOther},
	HashLongArrow: {OpHashLongArrow, precOther},
	AtArrow:       {OpAtArrow, precOther},
	ArrowAt:       {OpArrowAt, precOther},
	Tilde:         {OpRegexMatch, precOther},
}

func (parser *Parser) parseExpr() (Expr, error) {
	return parser.parseSubExpr(0)
}

func (parser *Parser) parseSubExpr(minPrec int) (Expr, error) {
	if err := parser.enter(); err != nil {
		return nil, err
	}
	defer parser.leave()

	left, err := parser.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		prec := parser.nextPrecedence()
		if prec <= minPrec {
			return left, nil
		}
		if left, err = parser.parseInfix(left, prec); err != nil {
			return nil, err
		}
	}
}

func (parser *Parser) parseExprList() ([]Expr, error) {
	var exprs []Expr
	for {
		expr, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if !parser.consume(Comma) {
			return exprs, nil
		}
	}
}

// isPredicateKeyword reports whether token starts a postfix predicate that may
// be negated with a leading NOT.
func (parser *Parser) isPredicateKeyword(token Token) bool {
	switch {
	case token.IsKeyword("IN"), token.IsKeyword("BETWEEN"), token.IsKeyword("LIKE"):
		return true
	case token.IsKeyword("ILIKE"):
		return parser.dialect.SupportsILike
	case token.IsKeyword("REGEXP"), token.IsKeyword("RLIKE"):
		return parser.dialect.SupportsRegexp
	case token.IsKeyword("SIMILAR"):
		return parser.peekN(1).IsKeyword("TO") || parser.peekN(2).IsKeyword("TO")
	}
	return false
}

func (parser *Parser) nextPrecedence() int {
	token := parser.peek()
	if token.Type == Word {
		if token.Quote != 0 {
			return 0
		}
		switch strings.ToUpper(token.Value) {
		case "OR":
			return precOr
		case "XOR":
			return precXor
		case "AND":
			return precAnd
		case "IS":
			return precIs
		case "NOT":
			if parser.isPredicateKeyword(parser.peekN(1)) {
				return precPredicate
			}
			return 0
		case "DIV":
			if parser.dialect.SupportsIntegerDiv {
				return precMultiply
			}
			return 0
		case "COLLATE":
			return precPostfix
		case "AT":
			if parser.peekN(1).IsKeyword("TIME") && parser.peekN(2).IsKeyword("ZONE") {
				return precAtTimeZone
			}
			return 0
		}
		if parser.isPredicateKeyword(token) {
			return precPredicate
		}
		return 0
	}

	switch token.Type {
	case DoubleColon:
		if parser.dialect.SupportsCastOperator {
			return precPostfix
		}
		return 0
	case BracketOpen:
		return precPostfix
	}
	if operator, ok := symbolOperators[token.Type]; ok {
		return operator.prec
	}
	return 0
}

var wordOperators = map[string]BinaryOperator{
	"OR":  OpOr,
	"XOR": OpXor,
	"AND": OpAnd,
	"DIV": OpIntegerDivide,
}

func (parser *Parser) parseInfix(left Expr, prec int) (Expr, error) {
	if token := parser.peek(); token.Type == Word && parser.isPredicateKeyword(token) {
		return parser.parsePredicate(left, false)
	}
	token := parser.next()

	if operator, ok := symbolOperators[token.Type]; ok {
		if operator.prec == precCompare && parser.dialect.SupportsAnyAll {
			if quantified, ok, err := parser.parseQuantified(left, operator.op); ok || err != nil {
				return quantified, err
			}
		}
		right, err := parser.parseSubExpr(prec)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Left: left, Op: operator.op, Right: right}, nil
	}

	switch token.Type {
	case DoubleColon:
		dataType, err := parser.parseDataType()
		if err != nil {
			return nil, err
		}
		return &Cast{Kind: DoubleColonCast, Expr: left, DataType: dataType}, nil
	case BracketOpen:
		index, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(BracketClose); err != nil {
			return nil, err
		}
		return &Subscript{Expr: left, Index: index}, nil
	}

	word := strings.ToUpper(token.Value)
	if op, ok := wordOperators[word]; ok {
		right, err := parser.parseSubExpr(prec)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Left: left, Op: op, Right: right}, nil
	}

	switch word {
	case "IS":
		return parser.parseIs(left)
	case "COLLATE":
		collation, err := parser.parseObjectName()
		if err != nil {
			return nil, err
		}
		return &Collate{Expr: left, Collation: collation}, nil
	case "AT":
		parser.index += 2 // TIME ZONE
		zone, err := parser.parseSubExpr(precAtTimeZone)
		if err != nil {
			return nil, err
		}
		return &AtTimeZone{Timestamp: left, Zone: zone}, nil
	case "NOT":
		return parser.parsePredicate(left, true)
	}
	return nil, parser.expected("an operator", token)
}

func (parser *Parser) parseQuantified(left Expr, op BinaryOperator) (Expr, bool, error) {
	var kind QuantifierKind
	switch token := parser.peek(); {
	case token.IsKeyword("ANY"):
		kind = AnyQuantifier
	case token.IsKeyword("ALL"):
		kind = AllQuantifier
	case token.IsKeyword("SOME"):
		kind = SomeQuantifier
	default:
		return nil, false, nil
	}
	if parser.peekN(1).Type != ParenOpen {
		return nil, false, nil
	}
	parser.index += 2

	var right Expr
	if parser.startsQuery(parser.peek()) {
		query, err := parseQuery(parser)
		if err != nil {
			return nil, true, err
		}
		right = &Subquery{Query: query}
	} else {
		expr, err := parser.parseExpr()
		if err != nil {
			return nil, true, err
		}
		right = expr
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, true, err
	}
	return &Quantified{Left: left, Op: op, Kind: kind, Right: right}, true, nil
}

func (parser *Parser) parseIs(left Expr) (Expr, error) {
	negated := parser.parseKeyword("NOT")
	switch {
	case parser.parseKeyword("NULL"):
		return &IsCheck{Expr: left, Kind: pickIs(negated, IsNull, IsNotNull)}, nil
	case parser.parseKeyword("TRUE"):
		return &IsCheck{Expr: left, Kind: pickIs(negated, IsTrue, IsNotTrue)}, nil
	case parser.parseKeyword("FALSE"):
		return &IsCheck{Expr: left, Kind: pickIs(negated, IsFalse, IsNotFalse)}, nil
	case parser.parseKeyword("UNKNOWN"):
		return &IsCheck{Expr: left, Kind: pickIs(negated, IsUnknown, IsNotUnknown)}, nil
	case parser.parseKeywords("DISTINCT", "FROM"):
		right, err := parser.parseSubExpr(precIs)
		if err != nil {
			return nil, err
		}
		return &IsDistinctFrom{Left: left, Right: right, Negated: negated}, nil
	}
	return nil, parser.expected("[NOT] NULL, TRUE, FALSE, UNKNOWN or DISTINCT FROM after IS", parser.peek())
}

func pickIs(negated bool, positive, negative IsKind) IsKind {
	if negated {
		return negative
	}
	return positive
}

func (parser *Parser) parsePredicate(left Expr, negated bool) (Expr, error) {
	token := parser.next()
	switch strings.ToUpper(token.Value) {
	case "IN":
		return parser.parseIn(left, negated)
	case "BETWEEN":
		low, err := parser.parseSubExpr(precPredicate)
		if err != nil {
			return nil, err
		}
		if err := parser.expectKeyword("AND"); err != nil {
			return nil, err
		}
		high, err := parser.parseSubExpr(precPredicate)
		if err != nil {
			return nil, err
		}
		return &Between{Expr: left, Negated: negated, Low: low, High: high}, nil
	case "LIKE":
		return parser.parseLike(left, negated, LikeOp)
	case "ILIKE":
		return parser.parseLike(left, negated, ILikeOp)
	case "REGEXP":
		return parser.parseLike(left, negated, RegexpOp)
	case "RLIKE":
		return parser.parseLike(left, negated, RLikeOp)
	case "SIMILAR":
		if err := parser.expectKeyword("TO"); err != nil {
			return nil, err
		}
		return parser.parseLike(left, negated, SimilarToOp)
	}
	return nil, parser.expected("IN, BETWEEN or LIKE", token)
}

func (parser *Parser) parseIn(left Expr, negated bool) (Expr, error) {
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	if parser.startsQuery(parser.peek()) {
		query, err := parseQuery(parser)
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		return &InSubquery{Expr: left, Subquery: query, Negated: negated}, nil
	}

	list, err := parser.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return &InList{Expr: left, List: list, Negated: negated}, nil
}

func (parser *Parser) parseLike(left Expr, negated bool, kind LikeKind) (Expr, error) {
	pattern, err := parser.parseSubExpr(precPredicate)
	if err != nil {
		return nil, err
	}
	like := &Like{Expr: left, Negated: negated, Kind: kind, Pattern: pattern}
	if parser.parseKeyword("ESCAPE") {
		if like.Escape, err = parser.parsePrefix(); err != nil {
			return nil, err
		}
	}
	return like, nil
}

func (parser *Parser) parsePrefix() (Expr, error) {
	token := parser.peek()
	if isReserved(token, reservedForExpression) {
		return nil, parser.expected("an expression", token)
	}

	switch token.Type {
	case Word:
		if token.Quote == 0 {
			if expr, ok, err := parser.parseKeywordExpr(token); ok || err != nil {
				return expr, err
			}
		}
		return parser.parseIdentifierExpr()
	case Number:
		parser.next()
		return &Literal{Kind: NumberValue, Value: token.Value}, nil
	case SingleQuotedString:
		parser.next()
		return &Literal{Kind: StringValue, Value: token.Value}, nil
	case DoubleQuotedString:
		parser.next()
		return &Literal{Kind: DoubleQuotedStringValue, Value: token.Value}, nil
	case NationalString:
		parser.next()
		return &Literal{Kind: NationalStringValue, Value: token.Value}, nil
	case HexString:
		parser.next()
		return &Literal{Kind: HexStringValue, Value: token.Value}, nil
	case BitString:
		parser.next()
		return &Literal{Kind: BitStringValue, Value: token.Value}, nil
	case EscapedString:
		parser.next()
		return &Literal{Kind: EscapedStringValue, Value: token.Value}, nil
	case DollarQuotedString:
		parser.next()
		return &Literal{Kind: DollarQuotedStringValue, Value: token.Value, Tag: token.Tag}, nil
	case Placeholder:
		parser.next()
		return NewPlaceholder(token.Value), nil
	case Minus, Plus, Tilde:
		parser.next()
		operand, err := parser.parseSubExpr(precUnary)
		if err != nil {
			return nil, err
		}
		op := OpUnaryMinus
		if token.Type == Plus {
			op = OpUnaryPlus
		} else if token.Type == Tilde {
			op = OpBitwiseNot
		}
		return &UnaryOp{Op: op, Expr: operand}, nil
	case ParenOpen:
		return parser.parseParenthesized()
	}
	return nil, parser.expected("an expression", token)
}

func (parser *Parser) parseParenthesized() (Expr, error) {
	parser.next()
	if parser.startsQuery(parser.peek()) {
		query, err := parseQuery(parser)
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		return &Subquery{Query: query}, nil
	}

	exprs, err := parser.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	if len(exprs) == 1 {
		return &Nested{Expr: exprs[0]}, nil
	}
	return &Tuple{Exprs: exprs}, nil
}

// parseKeywordExpr handles expressions introduced by a keyword. It reports
// false when token should be parsed as an ordinary identifier.
func (parser *Parser) parseKeywordExpr(token Token) (Expr, bool, error) {
	word := strings.ToUpper(token.Value)
	call := parser.peekN(1).Type == ParenOpen

	switch {
	case word == "NULL":
		parser.next()
		return &Literal{Kind: NullValue, Value: "NULL"}, true, nil
	case (word == "TRUE" || word == "FALSE") && parser.dialect.BooleanLiterals:
		parser.next()
		return &Literal{Kind: BooleanValue, Value: strings.ToLower(word)}, true, nil
	case word == "NOT":
		parser.next()
		if parser.peek().IsKeyword("EXISTS") {
			expr, err := parser.parseExists(true)
			return expr, true, err
		}
		operand, err := parser.parseSubExpr(precNot)
		if err != nil {
			return nil, true, err
		}
		return &UnaryOp{Op: OpNot, Expr: operand}, true, nil
	case word == "EXISTS" && call:
		expr, err := parser.parseExists(false)
		return expr, true, err
	case word == "CASE":
		expr, err := parser.parseCase()
		return expr, true, err
	case (word == "CAST" || word == "TRY_CAST" || word == "SAFE_CAST") && call:
		expr, err := parser.parseCast(word)
		return expr, true, err
	case word == "EXTRACT" && call:
		expr, err := parser.parseExtract()
		return expr, true, err
	case (word == "SUBSTRING" || word == "SUBSTR") && call:
		expr, err := parser.parseSubstring()
		return expr, true, err
	case word == "TRIM" && call:
		expr, err := parser.parseTrim()
		return expr, true, err
	case word == "POSITION" && call:
		expr, err := parser.parsePosition()
		return expr, true, err
	case word == "INTERVAL":
		expr, err := parser.parseInterval()
		return expr, true, err
	case word == "ARRAY" && parser.peekN(1).Type == BracketOpen:
		expr, err := parser.parseArray()
		return expr, true, err
	case isReserved(token, typedStringPrefixes) && parser.peekN(1).Type == SingleQuotedString:
		parser.next()
		value := parser.next()
		return &TypedString{DataType: &DataType{Name: word}, Value: value.Value}, true, nil
	case isReserved(token, niladicFunctions) && !call:
		parser.next()
		return &Function{Name: ObjectName{{Value: token.Value}}}, true, nil
	}
	return nil, false, nil
}

func (parser *Parser) parseIdentifierExpr() (Expr, error) {
	first, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	parts := []Ident{first}
	for parser.peek().Type == Period {
		switch next := parser.peekN(1); next.Type {
		case Word:
			parser.index += 2
			parts = append(parts, Ident{Value: next.Value, Quote: next.Quote})
			continue
		case Mul:
			parser.index += 2
			return &Wildcard{Qualifier: parts}, nil
		default:
			return nil, parser.expected("an identifier or * after .", next)
		}
	}

	if parser.peek().Type == ParenOpen {
		return parser.parseFunction(parts)
	}
	if len(parts) == 1 {
		return &Identifier{Ident: first}, nil
	}
	return &CompoundIdentifier{Parts: parts}, nil
}

func (parser *Parser) parseFunction(name ObjectName) (Expr, error) {
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	function := &Function{Name: name, Args: &FunctionArgs{}}

	if parser.parseKeyword("DISTINCT") {
		function.Args.Distinct = true
	} else if parser.parseKeyword("ALL") {
		function.Args.All = true
	}
	if parser.peek().Type != ParenClose {
		args, err := parser.parseFunctionArgList()
		if err != nil {
			return nil, err
		}
		function.Args.Args = args
	}
	if parser.parseKeywords("ORDER", "BY") {
		orderBy, err := parser.parseOrderByList()
		if err != nil {
			return nil, err
		}
		function.Args.OrderBy = orderBy
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}

	if parser.parseKeywords("WITHIN", "GROUP") {
		if err := parser.expect(ParenOpen); err != nil {
			return nil, err
		}
		if err := parser.expectKeyword("ORDER"); err != nil {
			return nil, err
		}
		if err := parser.expectKeyword("BY"); err != nil {
			return nil, err
		}
		orderBy, err := parser.parseOrderByList()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		function.WithinGroup = orderBy
	}

	if parser.peek().IsKeyword("FILTER") && parser.peekN(1).Type == ParenOpen {
		parser.index += 2
		if err := parser.expectKeyword("WHERE"); err != nil {
			return nil, err
		}
		filter, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		function.Filter = filter
	}

	if parser.parseKeyword("OVER") {
		if parser.consume(ParenOpen) {
			spec, err := parser.parseWindowSpec()
			if err != nil {
				return nil, err
			}
			function.Over = spec
		} else {
			name, err := parser.parseIdentifier()
			if err != nil {
				return nil, err
			}
			function.OverName = &name
		}
	}
	return function, nil
}

func (parser *Parser) parseFunctionArgList() ([]*FunctionArg, error) {
	var args []*FunctionArg
	for {
		arg := &FunctionArg{}
		switch {
		case parser.peek().Type == Mul:
			parser.next()
			arg.Value = &Wildcard{}
		case parser.peek().Type == Word && parser.peekN(1).Type == RightArrow:
			name := parser.next()
			parser.next()
			arg.Name = &Ident{Value: name.Value, Quote: name.Quote}
			fallthrough
		default:
			value, err := parser.parseFunctionArgValue()
			if err != nil {
				return nil, err
			}
			arg.Value = value
		}
		args = append(args, arg)
		if !parser.consume(Comma) {
			return args, nil
		}
	}
}

func (parser *Parser) parseFunctionArgValue() (Expr, error) {
	if parser.startsQuery(parser.peek()) {
		query, err := parseQuery(parser)
		if err != nil {
			return nil, err
		}
		return &Subquery{Query: query}, nil
	}
	return parser.parseExpr()
}

func (parser *Parser) parseExists(negated bool) (Expr, error) {
	if err := parser.expectKeyword("EXISTS"); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	query, err := parseQuery(parser)
	if err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return &Exists{Subquery: query, Negated: negated}, nil
}

func (parser *Parser) parseCase() (Expr, error) {
	if err := parser.expectKeyword("CASE"); err != nil {
		return nil, err
	}
	expr := &Case{}
	var err error
	if !parser.peek().IsKeyword("WHEN") {
		if expr.Operand, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}

	for parser.parseKeyword("WHEN") {
		when := &When{}
		if when.Condition, err = parser.parseExpr(); err != nil {
			return nil, err
		}
		if err := parser.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		if when.Result, err = parser.parseExpr(); err != nil {
			return nil, err
		}
		expr.Whens = append(expr.Whens, when)
	}
	if len(expr.Whens) == 0 {
		return nil, parser.expected("WHEN", parser.peek())
	}

	if parser.parseKeyword("ELSE") {
		if expr.Else, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}
	if err := parser.expectKeyword("END"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (parser *Parser) parseCast(word string) (Expr, error) {
	parser.index += 2
	cast := &Cast{Kind: CastFunction}
	switch word {
	case "TRY_CAST":
		cast.Kind = TryCastFunction
	case "SAFE_CAST":
		cast.Kind = SafeCastFunction
	}

	var err error
	if cast.Expr, err = parser.parseExpr(); err != nil {
		return nil, err
	}
	if err := parser.expectKeyword("AS"); err != nil {
		return nil, err
	}
	if cast.DataType, err = parser.parseDataType(); err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return cast, nil
}

// Type names made of several words.
var dataTypeSuffixes = map[string][][]string{
	"DOUBLE":    {{"PRECISION"}},
	"CHARACTER": {{"VARYING"}},
	"CHAR":      {{"VARYING"}},
	"TIMESTAMP": {{"WITH", "TIME", "ZONE"}, {"WITHOUT", "TIME", "ZONE"}},
	"TIME":      {{"WITH", "TIME", "ZONE"}, {"WITHOUT", "TIME", "ZONE"}},
	"UNSIGNED":  {{"INTEGER"}, {"INT"}},
	"SIGNED":    {{"INTEGER"}, {"INT"}},
}

func (parser *Parser) parseDataType() (*DataType, error) {
	token := parser.peek()
	if token.Type != Word {
		return nil, parser.expected("a data type name", token)
	}
	parser.next()

	dataType := &DataType{Name: token.Value, Quote: token.Quote}
	if token.Quote == 0 {
		dataType.Name = strings.ToUpper(token.Value)
		for _, suffix := range dataTypeSuffixes[dataType.Name] {
			if parser.parseKeywords(suffix...) {
				dataType.Name += " " + strings.Join(suffix, " ")
				break
			}
		}
	}

	if parser.consume(ParenOpen) {
		for {
			arg := parser.next()
			if arg.Type != Number && arg.Type != Word {
				return nil, parser.expected("a data type argument", arg)
			}
			dataType.Args = append(dataType.Args, arg.String())
			if !parser.consume(Comma) {
				break
			}
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
	}

	if token.Quote == 0 && parser.parseKeyword("UNSIGNED") {
		dataType.Name += " UNSIGNED"
	}

	for parser.peek().Type == BracketOpen && parser.peekN(1).Type == BracketClose {
		parser.index += 2
		dataType.Array++
	}
	return dataType, nil
}

func (parser *Parser) parseExtract() (Expr, error) {
	parser.index += 2
	field := parser.next()
	if field.Type != Word {
		return nil, parser.expected("a date part", field)
	}
	if err := parser.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	expr, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return &Extract{Field: strings.ToUpper(field.Value), Expr: expr}, nil
}

func (parser *Parser) parseSubstring() (Expr, error) {
	name := parser.next()
	parser.next()
	expr, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}

	if !parser.peek().IsKeyword("FROM") && !parser.peek().IsKeyword("FOR") {
		// SUBSTRING(s, a, b) is an ordinary call
		function := &Function{Name: ObjectName{{Value: name.Value}}, Args: &FunctionArgs{}}
		function.Args.Args = append(function.Args.Args, &FunctionArg{Value: expr})
		for parser.consume(Comma) {
			arg, err := parser.parseExpr()
			if err != nil {
				return nil, err
			}
			function.Args.Args = append(function.Args.Args, &FunctionArg{Value: arg})
		}
		if err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		return function, nil
	}

	substring := &Substring{Expr: expr}
	if parser.parseKeyword("FROM") {
		if substring.From, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}
	if parser.parseKeyword("FOR") {
		if substring.For, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return substring, nil
}

func (parser *Parser) parseTrim() (Expr, error) {
	parser.index += 2
	trim := &Trim{}
	for _, where := range []string{"BOTH", "LEADING", "TRAILING"} {
		if parser.parseKeyword(where) {
			trim.Where = where
			break
		}
	}

	var err error
	if trim.Where != "" && parser.parseKeyword("FROM") {
		if trim.Expr, err = parser.parseExpr(); err != nil {
			return nil, err
		}
	} else {
		first, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		if parser.parseKeyword("FROM") {
			trim.What = first
			if trim.Expr, err = parser.parseExpr(); err != nil {
				return nil, err
			}
		} else if trim.Where == "" && parser.peek().Type == Comma {
			// TRIM(s, chars) is an ordinary call
			function := &Function{Name: ObjectName{{Value: "TRIM"}}, Args: &FunctionArgs{}}
			function.Args.Args = append(function.Args.Args, &FunctionArg{Value: first})
			for parser.consume(Comma) {
				arg, err := parser.parseExpr()
				if err != nil {
					return nil, err
				}
				function.Args.Args = append(function.Args.Args, &FunctionArg{Value: arg})
			}
			if err := parser.expect(ParenClose); err != nil {
				return nil, err
			}
			return function, nil
		} else {
			trim.Expr = first
		}
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return trim, nil
}

func (parser *Parser) parsePosition() (Expr, error) {
	parser.index += 2
	expr, err := parser.parseSubExpr(precPredicate)
	if err != nil {
		return nil, err
	}
	if err := parser.expectKeyword("IN"); err != nil {
		return nil, err
	}
	in, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return &Position{Expr: expr, In: in}, nil
}

func (parser *Parser) parseInterval() (Expr, error) {
	parser.next()
	value, err := parser.parsePrefix()
	if err != nil {
		return nil, err
	}
	interval := &Interval{Value: value}
	if token := parser.peek(); isReserved(token, intervalFields) {
		parser.next()
		interval.Field = strings.ToUpper(token.Value)
	}
	return interval, nil
}

func (parser *Parser) parseArray() (Expr, error) {
	parser.index += 2
	array := &Array{Named: true}
	if parser.peek().Type != BracketClose {
		elems, err := parser.parseExprList()
		if err != nil {
			return nil, err
		}
		array.Elems = elems
	}
	if err := parser.expect(BracketClose); err != nil {
		return nil, err
	}
	return array, nil
}
