package sql

// Expr is an expression node. The set of implementations is closed and every
// traversal in this module switches over it exhaustively.
type Expr interface {
	expr()
}

type Identifier struct {
	Ident Ident
}

type CompoundIdentifier struct {
	Parts []Ident
}

type ValueKind int

const (
	NumberValue ValueKind = iota
	StringValue
	DoubleQuotedStringValue
	NationalStringValue
	HexStringValue
	BitStringValue
	EscapedStringValue
	DollarQuotedStringValue
	BooleanValue
	NullValue
	PlaceholderValue
)

// Literal is a constant or a bind placeholder. Value holds the source text of
// numbers and placeholders and the raw contents of quoted strings.
type Literal struct {
	Kind  ValueKind
	Value string
	Tag   string // dollar-quote tag
}

// Text returns the literal as it appears in rendered SQL.
func (literal *Literal) Text() string {
	switch literal.Kind {
	case StringValue:
		return "'" + literal.Value + "'"
	case DoubleQuotedStringValue:
		return "\"" + literal.Value + "\""
	case NationalStringValue:
		return "N'" + literal.Value + "'"
	case HexStringValue:
		return "X'" + literal.Value + "'"
	case BitStringValue:
		return "B'" + literal.Value + "'"
	case EscapedStringValue:
		return "E'" + literal.Value + "'"
	case DollarQuotedStringValue:
		return "$" + literal.Tag + "$" + literal.Value + "$" + literal.Tag + "$"
	case NullValue:
		return "NULL"
	default:
		return literal.Value
	}
}

type BinaryOperator int

const (
	OpOr BinaryOperator = iota
	OpXor
	OpAnd
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpSpaceship
	OpBitwiseOr
	OpBitwiseXor
	OpBitwiseAnd
	OpShiftLeft
	OpShiftRight
	OpPlus
	OpMinus
	OpStringConcat
	OpMultiply
	OpDivide
	OpModulo
	OpIntegerDivide
	OpArrow
	OpLongArrow
	OpHashArrow
	OpHashLongArrow
	OpAtArrow
	OpArrowAt
	OpRegexMatch // ~
)

var binaryOperatorText = map[BinaryOperator]string{
	OpOr:            "OR",
	OpXor:           "XOR",
	OpAnd:           "AND",
	OpEq:            "=",
	OpNotEq:         "<>",
	OpLt:            "<",
	OpLtEq:          "<=",
	OpGt:            ">",
	OpGtEq:          ">=",
	OpSpaceship:     "<=>",
	OpBitwiseOr:     "|",
	OpBitwiseXor:    "^",
	OpBitwiseAnd:    "&",
	OpShiftLeft:     "<<",
	OpShiftRight:    ">>",
	OpPlus:          "+",
	OpMinus:         "-",
	OpStringConcat:  "||",
	OpMultiply:      "*",
	OpDivide:        "/",
	OpModulo:        "%",
	OpIntegerDivide: "DIV",
	OpArrow:         "->",
	OpLongArrow:     "->>",
	OpHashArrow:     "#>",
	OpHashLongArrow: "#>>",
	OpAtArrow:       "@>",
	OpArrowAt:       "<@",
	OpRegexMatch:    "~",
}

func (op BinaryOperator) String() string {
	return binaryOperatorText[op]
}

type BinaryOp struct {
	Left  Expr
	Op    BinaryOperator
	Right Expr
}

type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpUnaryMinus
	OpUnaryPlus
	OpBitwiseNot
)

func (op UnaryOperator) String() string {
	switch op {
	case OpUnaryMinus:
		return "-"
	case OpUnaryPlus:
		return "+"
	case OpBitwiseNot:
		return "~"
	default:
		return "NOT"
	}
}

type UnaryOp struct {
	Op   UnaryOperator
	Expr Expr
}

// Nested is a parenthesized expression.
type Nested struct {
	Expr Expr
}

// Tuple is a parenthesized list of two or more expressions, or ROW(...).
type Tuple struct {
	Exprs []Expr
}

type IsKind int

const (
	IsNull IsKind = iota
	IsNotNull
	IsTrue
	IsNotTrue
	IsFalse
	IsNotFalse
	IsUnknown
	IsNotUnknown
)

func (kind IsKind) String() string {
	switch kind {
	case IsNotNull:
		return "IS NOT NULL"
	case IsTrue:
		return "IS TRUE"
	case IsNotTrue:
		return "IS NOT TRUE"
	case IsFalse:
		return "IS FALSE"
	case IsNotFalse:
		return "IS NOT FALSE"
	case IsUnknown:
		return "IS UNKNOWN"
	case IsNotUnknown:
		return "IS NOT UNKNOWN"
	default:
		return "IS NULL"
	}
}

type IsCheck struct {
	Expr Expr
	Kind IsKind
}

type IsDistinctFrom struct {
	Left    Expr
	Right   Expr
	Negated bool
}

type InList struct {
	Expr    Expr
	List    []Expr
	Negated bool
}

type InSubquery struct {
	Expr     Expr
	Subquery *Query
	Negated  bool
}

type Between struct {
	Expr    Expr
	Negated bool
	Low     Expr
	High    Expr
}

type LikeKind int

const (
	LikeOp LikeKind = iota
	ILikeOp
	SimilarToOp
	RegexpOp
	RLikeOp
)

func (kind LikeKind) String() string {
	switch kind {
	case ILikeOp:
		return "ILIKE"
	case SimilarToOp:
		return "SIMILAR TO"
	case RegexpOp:
		return "REGEXP"
	case RLikeOp:
		return "RLIKE"
	default:
		return "LIKE"
	}
}

type Like struct {
	Expr    Expr
	Negated bool
	Kind    LikeKind
	Pattern Expr
	Escape  Expr
}

type When struct {
	Condition Expr
	Result    Expr
}

type Case struct {
	Operand Expr
	Whens   []*When
	Else    Expr
}

type CastKind int

const (
	CastFunction CastKind = iota
	TryCastFunction
	SafeCastFunction
	DoubleColonCast
)

type Cast struct {
	Kind     CastKind
	Expr     Expr
	DataType *DataType
}

// DataType is a type name as written in CAST, :: and typed string literals.
// Unquoted names are stored upper-cased.
type DataType struct {
	Name  string
	Quote byte
	Args  []string
	Array int // number of trailing [] pairs
}

type Extract struct {
	Field string
	Expr  Expr
}

// Substring is SUBSTRING(expr FROM a FOR b). The comma form parses as a Function.
type Substring struct {
	Expr Expr
	From Expr
	For  Expr
}

type Trim struct {
	Where string // "", "BOTH", "LEADING" or "TRAILING"
	What  Expr
	Expr  Expr
}

type Position struct {
	Expr Expr
	In   Expr
}

type Interval struct {
	Value Expr
	Field string
}

// TypedString is a type-prefixed string constant such as DATE '2024-01-01'.
// The value is part of the type syntax and is not a separate literal node.
type TypedString struct {
	DataType *DataType
	Value    string
}

type Collate struct {
	Expr      Expr
	Collation ObjectName
}

type AtTimeZone struct {
	Timestamp Expr
	Zone      Expr
}

type Array struct {
	Elems []Expr
	Named bool // ARRAY keyword present
}

type Subscript struct {
	Expr  Expr
	Index Expr
}

type Subquery struct {
	Query *Query
}

type Exists struct {
	Subquery *Query
	Negated  bool
}

type QuantifierKind int

const (
	AnyQuantifier QuantifierKind = iota
	AllQuantifier
	SomeQuantifier
)

func (kind QuantifierKind) String() string {
	switch kind {
	case AllQuantifier:
		return "ALL"
	case SomeQuantifier:
		return "SOME"
	default:
		return "ANY"
	}
}

// Quantified is left op ANY|ALL|SOME (right).
type Quantified struct {
	Left  Expr
	Op    BinaryOperator
	Kind  QuantifierKind
	Right Expr
}

// Wildcard is * or qualifier.* in a projection or function argument list.
type Wildcard struct {
	Qualifier ObjectName
}

type FunctionArg struct {
	Name  *Ident // named argument: name => value
	Value Expr
}

type FunctionArgs struct {
	Distinct bool
	All      bool
	Args     []*FunctionArg
	OrderBy  []*OrderByExpr
}

// Function is a call. Args is nil for keyword functions written without
// parentheses such as CURRENT_TIMESTAMP.
type Function struct {
	Name        ObjectName
	Args        *FunctionArgs
	WithinGroup []*OrderByExpr
	Filter      Expr
	Over        *WindowSpec
	OverName    *Ident
}

type FrameUnits int

const (
	RowsFrame FrameUnits = iota
	RangeFrame
	GroupsFrame
)

func (units FrameUnits) String() string {
	switch units {
	case RangeFrame:
		return "RANGE"
	case GroupsFrame:
		return "GROUPS"
	default:
		return "ROWS"
	}
}

type BoundKind int

const (
	CurrentRow BoundKind = iota
	Preceding
	Following
)

// FrameBound is one end of a window frame. A nil Offset with Preceding or
// Following means UNBOUNDED.
type FrameBound struct {
	Kind   BoundKind
	Offset Expr
}

type WindowFrame struct {
	Units FrameUnits
	Start *FrameBound
	End   *FrameBound
}

type WindowSpec struct {
	Name        *Ident
	PartitionBy []Expr
	OrderBy     []*OrderByExpr
	Frame       *WindowFrame
}

func (*Identifier) expr()         {}
func (*CompoundIdentifier) expr() {}
func (*Literal) expr()            {}
func (*BinaryOp) expr()           {}
func (*UnaryOp) expr()            {}
func (*Nested) expr()             {}
func (*Tuple) expr()              {}
func (*IsCheck) expr()            {}
func (*IsDistinctFrom) expr()     {}
func (*InList) expr()             {}
func (*InSubquery) expr()         {}
func (*Between) expr()            {}
func (*Like) expr()               {}
func (*Case) expr()               {}
func (*Cast) expr()               {}
func (*Extract) expr()            {}
func (*Substring) expr()          {}
func (*Trim) expr()               {}
func (*Position) expr()           {}
func (*Interval) expr()           {}
func (*TypedString) expr()        {}
func (*Collate) expr()            {}
func (*AtTimeZone) expr()         {}
func (*Array) expr()              {}
func (*Subscript) expr()          {}
func (*Subquery) expr()           {}
func (*Exists) expr()             {}
func (*Quantified) expr()         {}
func (*Wildcard) expr()           {}
func (*Function) expr()           {}

// NewPlaceholder returns a placeholder literal carrying token.
func NewPlaceholder(token string) *Literal {
	return &Literal{Kind: PlaceholderValue, Value: token}
}
