package sql

type StatementType int

const (
	QueryStatementType StatementType = iota
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
)

func (t StatementType) String() string {
	switch t {
	case QueryStatementType:
		return "query"
	case InsertStatementType:
		return "insert"
	case UpdateStatementType:
		return "update"
	case DeleteStatementType:
		return "delete"
	default:
		return "unknown"
	}
}

// Statement is one parsed SQL statement. The set of implementations is closed:
// *Query, *Insert, *Update and *Delete.
type Statement interface {
	Type() StatementType
	statement()
}

// Ident is a single identifier. Quote is 0 for bare identifiers, otherwise the
// opening delimiter ('"', '`' or '[').
type Ident struct {
	Value string
	Quote byte
}

// ObjectName is a possibly qualified name such as schema.table.
type ObjectName []Ident

// Query is a full query expression with its optional WITH clause and the
// trailing ORDER BY / LIMIT / FETCH / locking clauses.
type Query struct {
	With    *With
	Body    SetExpr
	OrderBy []*OrderByExpr
	Limit   *Limit
	Fetch   *Fetch
	Locks   []*LockClause
}

type With struct {
	Recursive bool
	CTEs      []*CTE
}

type CTE struct {
	Name         Ident
	Columns      []Ident
	Materialized string // "", "MATERIALIZED" or "NOT MATERIALIZED"
	Query        *Query
}

// SetExpr is a query body: *Select, *SetOperation, *QueryBody or *Values.
type SetExpr interface {
	setExpr()
}

type DistinctKind int

const (
	NoDistinct DistinctKind = iota
	DistinctRows
	AllRows
)

type Select struct {
	Distinct     DistinctKind
	DistinctOn   []Expr
	Top          *Top
	Projection   []*SelectItem
	From         []*TableWithJoins
	Where        Expr
	GroupBy      []Expr
	Having       Expr
	NamedWindows []*NamedWindow
	Qualify      Expr
}

type SetOperator int

const (
	Union SetOperator = iota
	Intersect
	Except
)

func (op SetOperator) String() string {
	switch op {
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return "UNION"
	}
}

type SetQuantifier int

const (
	NoQuantifier SetQuantifier = iota
	QuantifierAll
	QuantifierDistinct
)

type SetOperation struct {
	Op         SetOperator
	Quantifier SetQuantifier
	Left       SetExpr
	Right      SetExpr
}

// QueryBody is a parenthesized query used as a set operand.
type QueryBody struct {
	Query *Query
}

type Values struct {
	ExplicitRow bool
	Rows        [][]Expr
}

type Top struct {
	Quantity Expr
	Parens   bool
	Percent  bool
	WithTies bool
}

// SelectItem is one projection entry. Expr may be a *Wildcard.
type SelectItem struct {
	Expr  Expr
	Alias *Ident
}

type NamedWindow struct {
	Name Ident
	Spec *WindowSpec
}

type TableWithJoins struct {
	Relation TableFactor
	Joins    []*Join
}

// TableFactor is a FROM item: *Table, *Derived, *TableFunction, *Unnest,
// *NestedJoin, *Pivot or *Unpivot.
type TableFactor interface {
	tableFactor()
}

type TableAlias struct {
	Explicit bool
	Name     Ident
	Columns  []Ident
}

// Table is a named relation. A non-nil Args marks a table-valued function call.
type Table struct {
	Name      ObjectName
	Args      []*FunctionArg
	Alias     *TableAlias
	WithHints []Expr
}

type Derived struct {
	Lateral  bool
	Subquery *Query
	Alias    *TableAlias
}

// TableFunction is TABLE(expr).
type TableFunction struct {
	Expr  Expr
	Alias *TableAlias
}

type Unnest struct {
	Exprs          []Expr
	WithOrdinality bool
	Alias          *TableAlias
}

type NestedJoin struct {
	Join  *TableWithJoins
	Alias *TableAlias
}

type Pivot struct {
	Table      TableFactor
	Aggregates []*SelectItem
	For        []Ident
	In         []*SelectItem
	Alias      *TableAlias
}

type Unpivot struct {
	Table   TableFactor
	Value   Ident
	Name    Ident
	Columns []Ident
	Alias   *TableAlias
}

type JoinKind int

const (
	PlainJoin JoinKind = iota
	InnerJoin
	LeftJoin
	LeftOuterJoin
	RightJoin
	RightOuterJoin
	FullJoin
	FullOuterJoin
	CrossJoin
	CrossApply
	OuterApply
)

func (kind JoinKind) String() string {
	switch kind {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullJoin:
		return "FULL JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	case CrossApply:
		return "CROSS APPLY"
	case OuterApply:
		return "OUTER APPLY"
	default:
		return "JOIN"
	}
}

type ConstraintKind int

const (
	NoConstraint ConstraintKind = iota
	OnConstraint
	UsingConstraint
	NaturalConstraint
)

type JoinConstraint struct {
	Kind  ConstraintKind
	On    Expr
	Using []Ident
}

type Join struct {
	Kind       JoinKind
	Relation   TableFactor
	Constraint JoinConstraint
}

type Direction int

const (
	DefaultDirection Direction = iota
	Ascending
	Descending
)

type NullsOrder int

const (
	DefaultNulls NullsOrder = iota
	NullsFirst
	NullsLast
)

type OrderByExpr struct {
	Expr      Expr
	Direction Direction
	Nulls     NullsOrder
}

type LimitKind int

const (
	// LimitOffset is LIMIT n [OFFSET m], or OFFSET m on its own.
	LimitOffset LimitKind = iota
	// OffsetCommaLimit is the LIMIT m, n form.
	OffsetCommaLimit
)

type Limit struct {
	Kind   LimitKind
	All    bool
	Count  Expr
	Offset *Offset
}

type OffsetRows int

const (
	OffsetNoRows OffsetRows = iota
	OffsetRow
	OffsetRowsKeyword
)

type Offset struct {
	Value Expr
	Rows  OffsetRows
}

type Fetch struct {
	Quantity Expr
	Percent  bool
	WithTies bool
}

type LockClause struct {
	Share bool
	Of    []ObjectName
	Wait  string // "", "NOWAIT" or "SKIP LOCKED"
}

// Assignment is a SET target = value pair. Target holds a single column,
// possibly qualified.
type Assignment struct {
	Target ObjectName
	Value  Expr
}

type OnConflict struct {
	Columns      []Ident
	OnConstraint ObjectName
	DoNothing    bool
	Updates      []*Assignment
	Where        Expr
}

type Insert struct {
	Replace       bool
	Ignore        bool
	Or            string // SQLite INSERT OR <action>
	Into          bool
	Table         ObjectName
	Alias         *TableAlias
	Columns       []Ident
	Source        *Query
	DefaultValues bool
	OnConflict    *OnConflict
	OnDuplicate   []*Assignment
	Returning     []*SelectItem
}

type Update struct {
	Table       *TableWithJoins
	Assignments []*Assignment
	From        []*TableWithJoins
	Where       Expr
	Returning   []*SelectItem
	OrderBy     []*OrderByExpr
	Limit       Expr
}

type Delete struct {
	Tables    []ObjectName
	From      []*TableWithJoins
	Using     []*TableWithJoins
	Where     Expr
	Returning []*SelectItem
	OrderBy   []*OrderByExpr
	Limit     Expr
}

func (*Query) Type() StatementType  { return QueryStatementType }
func (*Insert) Type() StatementType { return InsertStatementType }
func (*Update) Type() StatementType { return UpdateStatementType }
func (*Delete) Type() StatementType { return DeleteStatementType }

func (*Query) statement()  {}
func (*Insert) statement() {}
func (*Update) statement() {}
func (*Delete) statement() {}

func (*Select) setExpr()       {}
func (*SetOperation) setExpr() {}
func (*QueryBody) setExpr()    {}
func (*Values) setExpr()       {}

func (*Table) tableFactor()         {}
func (*Derived) tableFactor()       {}
func (*TableFunction) tableFactor() {}
func (*Unnest) tableFactor()        {}
func (*NestedJoin) tableFactor()    {}
func (*Pivot) tableFactor()         {}
func (*Unpivot) tableFactor()       {}
