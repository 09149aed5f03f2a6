// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lua

import (
	"fmt"

	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// Range is an inclusive span of indices into the full token sequence of a
// chunk. An empty range has End == Start-1.
type Range struct {
	Start int
	End   int
}

func (r Range) Empty() bool {
	return r.End < r.Start
}

func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether other lies within r.
func (r Range) Contains(other Range) bool {
	if other.Empty() {
		return other.Start >= r.Start && other.Start <= r.End+1
	}
	return other.Start >= r.Start && other.End <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Node is implemented by every element of the syntax tree.
type Node interface {
	Kind() Kind
	// Range is the span of tokens, trivia included, from the first to the
	// last significant token the node was built from.
	Range() Range
	// Tokens returns the tokens covered by Range. The slice aliases the
	// chunk's token sequence and must not be modified.
	Tokens() []*syntax.Token
	node()
}

// Stmt is a node that may appear in a statement list.
type Stmt interface {
	Node
	stmt()
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	expr()
}

type astNode struct {
	tokens []*syntax.Token
	rng    Range
}

func (n astNode) Range() Range {
	return n.rng
}

func (n astNode) Tokens() []*syntax.Token {
	if n.rng.Empty() {
		return nil
	}
	return n.tokens[n.rng.Start : n.rng.End+1]
}

func (astNode) node() {}

// Source returns the exact text a node was parsed from.
func Source(n Node) string {
	return syntax.Join(n.Tokens())
}

type Kind uint8

const (
	KindUnknown Kind = iota
	KindChunk
	KindBlock
	KindAssign
	KindLocalAssign
	KindDo
	KindWhile
	KindRepeat
	KindIf
	KindElseIf
	KindForin
	KindFornum
	KindLabel
	KindGoto
	KindBreak
	KindReturn
	KindFunction
	KindMethod
	KindLocalFunction
	KindName
	KindNumber
	KindString
	KindNil
	KindTrue
	KindFalse
	KindVarargs
	KindTable
	KindField
	KindIndex
	KindCall
	KindInvoke
	KindAnonymousFunction
	KindAddOp
	KindSubOp
	KindMulOp
	KindFloatDivOp
	KindFloorDivOp
	KindModOp
	KindPowOp
	KindConcatOp
	KindBitAndOp
	KindBitOrOp
	KindBitXorOp
	KindShiftLeftOp
	KindShiftRightOp
	KindEqualOp
	KindNotEqualOp
	KindLessThanOp
	KindLessOrEqualOp
	KindGreaterThanOp
	KindGreaterOrEqualOp
	KindAndOp
	KindOrOp
	KindNegOp
	KindNotOp
	KindLengthOp
	KindBitNotOp
)

var kindNames = [...]string{
	KindUnknown:           "Unknown",
	KindChunk:             "Chunk",
	KindBlock:             "Block",
	KindAssign:            "Assign",
	KindLocalAssign:       "LocalAssign",
	KindDo:                "Do",
	KindWhile:             "While",
	KindRepeat:            "Repeat",
	KindIf:                "If",
	KindElseIf:            "ElseIf",
	KindForin:             "Forin",
	KindFornum:            "Fornum",
	KindLabel:             "Label",
	KindGoto:              "Goto",
	KindBreak:             "Break",
	KindReturn:            "Return",
	KindFunction:          "Function",
	KindMethod:            "Method",
	KindLocalFunction:     "LocalFunction",
	KindName:              "Name",
	KindNumber:            "Number",
	KindString:            "String",
	KindNil:               "Nil",
	KindTrue:              "TrueExpr",
	KindFalse:             "FalseExpr",
	KindVarargs:           "Varargs",
	KindTable:             "Table",
	KindField:             "Field",
	KindIndex:             "Index",
	KindCall:              "Call",
	KindInvoke:            "Invoke",
	KindAnonymousFunction: "AnonymousFunction",
	KindAddOp:             "AddOp",
	KindSubOp:             "SubOp",
	KindMulOp:             "MulOp",
	KindFloatDivOp:        "FloatDivOp",
	KindFloorDivOp:        "FloorDivOp",
	KindModOp:             "ModOp",
	KindPowOp:             "PowOp",
	KindConcatOp:          "ConcatOp",
	KindBitAndOp:          "BitAndOp",
	KindBitOrOp:           "BitOrOp",
	KindBitXorOp:          "BitXorOp",
	KindShiftLeftOp:       "ShiftLeftOp",
	KindShiftRightOp:      "ShiftRightOp",
	KindEqualOp:           "EqualOp",
	KindNotEqualOp:        "NotEqualOp",
	KindLessThanOp:        "LessThanOp",
	KindLessOrEqualOp:     "LessOrEqualOp",
	KindGreaterThanOp:     "GreaterThanOp",
	KindGreaterOrEqualOp:  "GreaterOrEqualOp",
	KindAndOp:             "AndOp",
	KindOrOp:              "OrOp",
	KindNegOp:             "NegOp",
	KindNotOp:             "NotOp",
	KindLengthOp:          "LengthOp",
	KindBitNotOp:          "BitNotOp",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Chunk is the root of every tree. Its range covers the whole token
// sequence including leading and trailing trivia and the EOF token.
type Chunk struct {
	astNode
	URI  string
	Body *Block
}

func (*Chunk) Kind() Kind { return KindChunk }

// AllTokens returns the complete token sequence of the chunk.
func (c *Chunk) AllTokens() []*syntax.Token {
	return c.tokens
}

type Block struct {
	astNode
	Body []Stmt
}

func (*Block) Kind() Kind { return KindBlock }

type Assign struct {
	astNode
	Targets []Expr
	Values  []Expr
}

func (*Assign) Kind() Kind { return KindAssign }
func (*Assign) stmt()      {}

// LocalAssign declares new locals. Attribs has one entry per target holding
// the attribute name, such as "const" or "close", or "" when absent.
type LocalAssign struct {
	astNode
	Targets []*Name
	Attribs []string
	Values  []Expr
}

func (*LocalAssign) Kind() Kind { return KindLocalAssign }
func (*LocalAssign) stmt()      {}

type Do struct {
	astNode
	Body []Stmt
}

func (*Do) Kind() Kind { return KindDo }
func (*Do) stmt()      {}

type While struct {
	astNode
	Test Expr
	Body []Stmt
}

func (*While) Kind() Kind { return KindWhile }
func (*While) stmt()      {}

type Repeat struct {
	astNode
	Body []Stmt
	Test Expr
}

func (*Repeat) Kind() Kind { return KindRepeat }
func (*Repeat) stmt()      {}

// OrElse is the continuation of an If or ElseIf. It is absent, a chained
// ElseIf, or a terminal else body which may be empty.
type OrElse struct {
	chained  *ElseIf
	terminal []Stmt
	present  bool
}

func NoElse() OrElse {
	return OrElse{}
}

func ChainElse(e *ElseIf) OrElse {
	return OrElse{chained: e, present: true}
}

func TerminalElse(body []Stmt) OrElse {
	if body == nil {
		body = []Stmt{}
	}
	return OrElse{terminal: body, present: true}
}

func (o OrElse) IsAbsent() bool {
	return !o.present
}

// ElseIf returns the chained branch, or nil when the continuation is absent
// or terminal.
func (o OrElse) ElseIf() *ElseIf {
	return o.chained
}

// Terminal returns the else body and true when the continuation is a
// terminal else.
func (o OrElse) Terminal() ([]Stmt, bool) {
	if !o.present || o.chained != nil {
		return nil, false
	}
	return o.terminal, true
}

type If struct {
	astNode
	Test   Expr
	Body   []Stmt
	OrElse OrElse
}

func (*If) Kind() Kind { return KindIf }
func (*If) stmt()      {}

// ElseIf is an elseif branch. Its range ends before the "end" keyword which
// belongs to the enclosing If.
type ElseIf struct {
	astNode
	Test   Expr
	Body   []Stmt
	OrElse OrElse
}

func (*ElseIf) Kind() Kind { return KindElseIf }

// Forin is the generic for loop.
type Forin struct {
	astNode
	Targets []*Name
	Iter    []Expr
	Body    []Stmt
}

func (*Forin) Kind() Kind { return KindForin }
func (*Forin) stmt()      {}

// Fornum is the numeric for loop. Step is nil when the loop has no step
// expression.
type Fornum struct {
	astNode
	Target *Name
	Start  Expr
	Stop   Expr
	Step   Expr
	Body   []Stmt
}

func (*Fornum) Kind() Kind { return KindFornum }
func (*Fornum) stmt()      {}

type Label struct {
	astNode
	ID *Name
}

func (*Label) Kind() Kind { return KindLabel }
func (*Label) stmt()      {}

type Goto struct {
	astNode
	Label *Name
}

func (*Goto) Kind() Kind { return KindGoto }
func (*Goto) stmt()      {}

type Break struct {
	astNode
}

func (*Break) Kind() Kind { return KindBreak }
func (*Break) stmt()      {}

type Return struct {
	astNode
	Values []Expr
}

func (*Return) Kind() Kind { return KindReturn }
func (*Return) stmt()      {}

// Function is a "function a.b.c() end" statement. Name is a *Name or a chain
// of dot *Index nodes.
type Function struct {
	astNode
	Name   Expr
	Params []Expr
	Body   []Stmt
}

func (*Function) Kind() Kind { return KindFunction }
func (*Function) stmt()      {}

// Method is a "function a.b:c() end" statement.
type Method struct {
	astNode
	Source Expr
	Name   *Name
	Params []Expr
	Body   []Stmt
}

func (*Method) Kind() Kind { return KindMethod }
func (*Method) stmt()      {}

type LocalFunction struct {
	astNode
	Name   *Name
	Params []Expr
	Body   []Stmt
}

func (*LocalFunction) Kind() Kind { return KindLocalFunction }
func (*LocalFunction) stmt()      {}

type Name struct {
	astNode
	ID string
}

func (*Name) Kind() Kind { return KindName }
func (*Name) expr()      {}

// Number holds a numeric literal. Int is set for integers and Float for
// floats as selected by IsFloat.
type Number struct {
	astNode
	Int     int64
	Float   float64
	IsFloat bool
}

func (*Number) Kind() Kind { return KindNumber }
func (*Number) expr()      {}

// Text returns the numeral as written in the source.
func (n *Number) Text() string {
	return n.tokens[n.rng.Start].Text
}

type StringDelimiter uint8

const (
	StringDelimiterDoubleQuote StringDelimiter = iota
	StringDelimiterSingleQuote
	StringDelimiterLongBracket
)

func (d StringDelimiter) String() string {
	switch d {
	case StringDelimiterSingleQuote:
		return "'"
	case StringDelimiterLongBracket:
		return "[["
	default:
		return `"`
	}
}

// String holds the decoded value of a string literal.
type String struct {
	astNode
	Value     string
	Delimiter StringDelimiter
}

func (*String) Kind() Kind { return KindString }
func (*String) expr()      {}

type Nil struct {
	astNode
}

func (*Nil) Kind() Kind { return KindNil }
func (*Nil) expr()      {}

type TrueExpr struct {
	astNode
}

func (*TrueExpr) Kind() Kind { return KindTrue }
func (*TrueExpr) expr()      {}

type FalseExpr struct {
	astNode
}

func (*FalseExpr) Kind() Kind { return KindFalse }
func (*FalseExpr) expr()      {}

type Varargs struct {
	astNode
}

func (*Varargs) Kind() Kind { return KindVarargs }
func (*Varargs) expr()      {}

// Table is a table constructor. Fields are kept in source order.
type Table struct {
	astNode
	Fields []*Field
}

func (*Table) Kind() Kind { return KindTable }
func (*Table) expr()      {}

// Keys returns the key of every field, nil for positional entries.
func (t *Table) Keys() []Expr {
	keys := make([]Expr, 0, len(t.Fields))
	for _, f := range t.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func (t *Table) Values() []Expr {
	values := make([]Expr, 0, len(t.Fields))
	for _, f := range t.Fields {
		values = append(values, f.Value)
	}
	return values
}

// Field is one entry of a table constructor. Key is nil for positional
// entries. Bracketed marks the "[k] = v" form.
type Field struct {
	astNode
	Key       Expr
	Value     Expr
	Bracketed bool
}

func (*Field) Kind() Kind { return KindField }

type IndexNotation uint8

const (
	IndexNotationDot IndexNotation = iota
	IndexNotationSquare
)

func (n IndexNotation) String() string {
	if n == IndexNotationSquare {
		return "SQUARE"
	}
	return "DOT"
}

// Index is "value.idx" or "value[idx]". For dot notation Idx is a *Name.
type Index struct {
	astNode
	Value    Expr
	Idx      Expr
	Notation IndexNotation
}

func (*Index) Kind() Kind { return KindIndex }
func (*Index) expr()      {}

// Call is both an expression and, on its own, a statement.
type Call struct {
	astNode
	Func Expr
	Args []Expr
}

func (*Call) Kind() Kind { return KindCall }
func (*Call) expr()      {}
func (*Call) stmt()      {}

// Invoke is a method call "source:func(args)".
type Invoke struct {
	astNode
	Source Expr
	Func   *Name
	Args   []Expr
}

func (*Invoke) Kind() Kind { return KindInvoke }
func (*Invoke) expr()      {}
func (*Invoke) stmt()      {}

type AnonymousFunction struct {
	astNode
	Params []Expr
	Body   []Stmt
}

func (*AnonymousFunction) Kind() Kind { return KindAnonymousFunction }
func (*AnonymousFunction) expr()      {}

type BinaryOperator uint8

const (
	OpOr BinaryOperator = iota
	OpAnd
	OpLessThan
	OpGreaterThan
	OpLessOrEqual
	OpGreaterOrEqual
	OpNotEqual
	OpEqual
	OpBitOr
	OpBitXor
	OpBitAnd
	OpShiftLeft
	OpShiftRight
	OpConcat
	OpAdd
	OpSub
	OpMul
	OpFloatDiv
	OpFloorDiv
	OpMod
	OpPow
)

type binaryOperatorInfo struct {
	kind   Kind
	symbol string
	left   int
	right  int
}

// Left and right binding priorities. A right priority lower than the left
// one makes the operator right associative.
var binaryOperators = [...]binaryOperatorInfo{
	OpOr:             {KindOrOp, "or", 1, 1},
	OpAnd:            {KindAndOp, "and", 2, 2},
	OpLessThan:       {KindLessThanOp, "<", 3, 3},
	OpGreaterThan:    {KindGreaterThanOp, ">", 3, 3},
	OpLessOrEqual:    {KindLessOrEqualOp, "<=", 3, 3},
	OpGreaterOrEqual: {KindGreaterOrEqualOp, ">=", 3, 3},
	OpNotEqual:       {KindNotEqualOp, "~=", 3, 3},
	OpEqual:          {KindEqualOp, "==", 3, 3},
	OpBitOr:          {KindBitOrOp, "|", 4, 4},
	OpBitXor:         {KindBitXorOp, "~", 5, 5},
	OpBitAnd:         {KindBitAndOp, "&", 6, 6},
	OpShiftLeft:      {KindShiftLeftOp, "<<", 7, 7},
	OpShiftRight:     {KindShiftRightOp, ">>", 7, 7},
	OpConcat:         {KindConcatOp, "..", 9, 8},
	OpAdd:            {KindAddOp, "+", 10, 10},
	OpSub:            {KindSubOp, "-", 10, 10},
	OpMul:            {KindMulOp, "*", 11, 11},
	OpFloatDiv:       {KindFloatDivOp, "/", 11, 11},
	OpFloorDiv:       {KindFloorDivOp, "//", 11, 11},
	OpMod:            {KindModOp, "%", 11, 11},
	OpPow:            {KindPowOp, "^", 14, 13},
}

// unaryPriority binds tighter than every binary operator except "^".
const unaryPriority = 12

func (op BinaryOperator) String() string {
	return binaryOperators[op].symbol
}

// BinaryOp is a binary operation. Its Kind names the operator.
type BinaryOp struct {
	astNode
	Operator BinaryOperator
	Left     Expr
	Right    Expr
}

func (b *BinaryOp) Kind() Kind { return binaryOperators[b.Operator].kind }
func (*BinaryOp) expr()        {}

type UnaryOperator uint8

const (
	OpNeg UnaryOperator = iota
	OpNot
	OpLength
	OpBitNot
)

var unaryOperators = [...]struct {
	kind   Kind
	symbol string
}{
	OpNeg:    {KindNegOp, "-"},
	OpNot:    {KindNotOp, "not"},
	OpLength: {KindLengthOp, "#"},
	OpBitNot: {KindBitNotOp, "~"},
}

func (op UnaryOperator) String() string {
	return unaryOperators[op].symbol
}

// UnaryOp is a unary operation. Its Kind names the operator.
type UnaryOp struct {
	astNode
	Operator UnaryOperator
	Operand  Expr
}

func (u *UnaryOp) Kind() Kind { return unaryOperators[u.Operator].kind }
func (*UnaryOp) expr()        {}
