// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lua

import (
	"context"
	"fmt"

	"gopkg.microglot.org/luaparser.go/internal/exc"
	"gopkg.microglot.org/luaparser.go/internal/iter"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

const (
	// DefaultMaxDepth bounds the nesting of statements and expressions.
	DefaultMaxDepth = 200
)

type ParserLua struct {
	reporter exc.Reporter
	maxDepth int
}

func NewParserLua(reporter exc.Reporter, options ...Option) *ParserLua {
	opts := newOptions(options)
	if reporter == nil {
		reporter = exc.NewReporter(nil)
	}
	return &ParserLua{reporter: reporter, maxDepth: opts.maxDepth}
}

// Parse reads every token of f and builds the tree. The first lex or syntax
// error stops parsing and is returned.
func (self *ParserLua) Parse(ctx context.Context, f syntax.LexerFile) (*Chunk, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := iter.Collect(ctx, ft)
	if err != nil {
		return nil, err
	}
	return self.ParseTokens(ctx, f.Path(ctx), tokens)
}

// ParseTokens builds the tree from an already lexed token sequence which
// must end with an EOF token.
func (self *ParserLua) ParseTokens(ctx context.Context, uri string, tokens []*syntax.Token) (*Chunk, error) {
	c, err := newCursor(ctx, self.reporter, uri, tokens)
	if err != nil {
		return nil, err
	}
	p := &parserLuaTokens{cursor: c, ctx: ctx, maxDepth: self.maxDepth}
	chunk := p.parseChunk()
	if p.err != nil {
		return nil, p.err
	}
	if chunk == nil {
		return nil, exc.New(exc.Location{URI: uri}, exc.CodeUnknownFatal, "parser stopped without an error")
	}
	chunk.URI = uri
	return chunk, nil
}

type parserLuaTokens struct {
	*cursor
	ctx      context.Context
	depth    int
	maxDepth int
}

func (p *parserLuaTokens) node(start int) astNode {
	return astNode{tokens: p.tokens, rng: p.span(start)}
}

// enter tracks nesting depth. Every successful call must be paired with a
// call to leave.
func (p *parserLuaTokens) enter() bool {
	if err := p.ctx.Err(); err != nil {
		if p.err == nil {
			p.err = exc.WrapUnknown(exc.Location{URI: p.uri, Location: p.peek().Span.Start}, err)
		}
		return false
	}
	p.depth = p.depth + 1
	if p.depth > p.maxDepth {
		p.depth = p.depth - 1
		p.report(exc.CodeRecursionLimit, fmt.Sprintf("too many nested levels (limit is %d) near %s", p.maxDepth, describe(p.peek())))
		return false
	}
	return true
}

func (p *parserLuaTokens) leave() {
	p.depth = p.depth - 1
}

// Chunk = Block EOF
func (p *parserLuaTokens) parseChunk() *Chunk {
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	if !p.check(syntax.TokenTypeEOF) {
		p.unexpected("'<eof>' expected")
		return nil
	}
	return &Chunk{
		astNode: astNode{tokens: p.tokens, rng: Range{Start: 0, End: len(p.tokens) - 1}},
		Body:    block,
	}
}

// Block = { Statement } [ ReturnStatement ]
func (p *parserLuaTokens) parseBlock() *Block {
	start := p.start()
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	rng := Range{Start: start, End: start - 1}
	if len(body) > 0 {
		rng = Range{Start: body[0].Range().Start, End: body[len(body)-1].Range().End}
	}
	return &Block{astNode: astNode{tokens: p.tokens, rng: rng}, Body: body}
}

// parseStatements reads statements until a token that closes a block.
func (p *parserLuaTokens) parseStatements() ([]Stmt, bool) {
	body := []Stmt{}
	for {
		switch p.peek().Type {
		case syntax.TokenTypeKeywordElse, syntax.TokenTypeKeywordElseIf, syntax.TokenTypeKeywordEnd,
			syntax.TokenTypeKeywordUntil, syntax.TokenTypeEOF:
			return body, true
		case syntax.TokenTypeKeywordReturn:
			ret := p.parseReturn()
			if ret == nil {
				return nil, false
			}
			return append(body, ret), true
		}
		stmt, ok := p.parseStatement()
		if !ok {
			return nil, false
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}
}

// Statement = ";" | If | While | Do | For | Repeat | FunctionStat |
//
//	LocalFunction | LocalAssign | Label | "break" | Goto | ExprStat
//
// An empty statement returns a nil Stmt with ok set.
func (p *parserLuaTokens) parseStatement() (Stmt, bool) {
	if !p.enter() {
		return nil, false
	}
	defer p.leave()

	switch p.peek().Type {
	case syntax.TokenTypeSemicolon:
		p.advance()
		return nil, true
	case syntax.TokenTypeKeywordIf:
		if s := p.parseIf(); s != nil {
			return s, true
		}
	case syntax.TokenTypeKeywordWhile:
		if s := p.parseWhile(); s != nil {
			return s, true
		}
	case syntax.TokenTypeKeywordDo:
		if s := p.parseDo(); s != nil {
			return s, true
		}
	case syntax.TokenTypeKeywordFor:
		return p.parseFor()
	case syntax.TokenTypeKeywordRepeat:
		if s := p.parseRepeat(); s != nil {
			return s, true
		}
	case syntax.TokenTypeKeywordFunction:
		return p.parseFunctionStat()
	case syntax.TokenTypeKeywordLocal:
		if p.peekN(1).Type == syntax.TokenTypeKeywordFunction {
			if s := p.parseLocalFunction(); s != nil {
				return s, true
			}
			return nil, false
		}
		if s := p.parseLocalAssign(); s != nil {
			return s, true
		}
	case syntax.TokenTypeDoubleColon:
		if s := p.parseLabel(); s != nil {
			return s, true
		}
	case syntax.TokenTypeKeywordBreak:
		start := p.start()
		p.advance()
		return &Break{astNode: p.node(start)}, true
	case syntax.TokenTypeKeywordGoto:
		if s := p.parseGoto(); s != nil {
			return s, true
		}
	default:
		return p.parseExprStat()
	}
	return nil, false
}

// If = "if" Exp "then" Block { "elseif" Exp "then" Block } [ "else" Block ] "end"
func (p *parserLuaTokens) parseIf() *If {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordIf)
	if open == nil {
		return nil
	}
	test := p.parseExpr()
	if test == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeKeywordThen) == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	orElse, ok := p.parseOrElse()
	if !ok {
		return nil
	}
	if p.expectClose(syntax.TokenTypeKeywordEnd, open) == nil {
		return nil
	}
	return &If{astNode: p.node(start), Test: test, Body: body, OrElse: orElse}
}

// OrElse = ElseIf | "else" Block | <empty>
func (p *parserLuaTokens) parseOrElse() (OrElse, bool) {
	switch p.peek().Type {
	case syntax.TokenTypeKeywordElseIf:
		e := p.parseElseIf()
		if e == nil {
			return OrElse{}, false
		}
		return ChainElse(e), true
	case syntax.TokenTypeKeywordElse:
		p.advance()
		body, ok := p.parseStatements()
		if !ok {
			return OrElse{}, false
		}
		return TerminalElse(body), true
	default:
		return NoElse(), true
	}
}

// ElseIf = "elseif" Exp "then" Block OrElse
func (p *parserLuaTokens) parseElseIf() *ElseIf {
	start := p.start()
	if p.expectOne(syntax.TokenTypeKeywordElseIf) == nil {
		return nil
	}
	test := p.parseExpr()
	if test == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeKeywordThen) == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	orElse, ok := p.parseOrElse()
	if !ok {
		return nil
	}
	return &ElseIf{astNode: p.node(start), Test: test, Body: body, OrElse: orElse}
}

// While = "while" Exp "do" Block "end"
func (p *parserLuaTokens) parseWhile() *While {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordWhile)
	if open == nil {
		return nil
	}
	test := p.parseExpr()
	if test == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeKeywordDo) == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	if p.expectClose(syntax.TokenTypeKeywordEnd, open) == nil {
		return nil
	}
	return &While{astNode: p.node(start), Test: test, Body: body}
}

// Do = "do" Block "end"
func (p *parserLuaTokens) parseDo() *Do {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordDo)
	if open == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	if p.expectClose(syntax.TokenTypeKeywordEnd, open) == nil {
		return nil
	}
	return &Do{astNode: p.node(start), Body: body}
}

// Repeat = "repeat" Block "until" Exp
func (p *parserLuaTokens) parseRepeat() *Repeat {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordRepeat)
	if open == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	if p.expectClose(syntax.TokenTypeKeywordUntil, open) == nil {
		return nil
	}
	test := p.parseExpr()
	if test == nil {
		return nil
	}
	return &Repeat{astNode: p.node(start), Body: body, Test: test}
}

// For = Fornum | Forin
//
// The token after the first name selects the form so the cursor is rewound
// after looking at it.
func (p *parserLuaTokens) parseFor() (Stmt, bool) {
	m := p.mark()
	p.advance()
	name := p.expectName()
	next := p.peek().Type
	p.reset(m)
	if name == nil {
		return nil, false
	}
	switch next {
	case syntax.TokenTypeEqual:
		if s := p.parseFornum(); s != nil {
			return s, true
		}
	case syntax.TokenTypeComma, syntax.TokenTypeKeywordIn:
		if s := p.parseForin(); s != nil {
			return s, true
		}
	default:
		p.advance()
		p.advance()
		p.unexpected("'=' or 'in' expected")
	}
	return nil, false
}

// Fornum = "for" Name "=" Exp "," Exp [ "," Exp ] "do" Block "end"
func (p *parserLuaTokens) parseFornum() *Fornum {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordFor)
	if open == nil {
		return nil
	}
	target := p.parseName()
	if target == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeEqual) == nil {
		return nil
	}
	init := p.parseExpr()
	if init == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeComma) == nil {
		return nil
	}
	stop := p.parseExpr()
	if stop == nil {
		return nil
	}
	var step Expr
	if p.accept(syntax.TokenTypeComma) {
		if step = p.parseExpr(); step == nil {
			return nil
		}
	}
	if p.expectOne(syntax.TokenTypeKeywordDo) == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	if p.expectClose(syntax.TokenTypeKeywordEnd, open) == nil {
		return nil
	}
	return &Fornum{astNode: p.node(start), Target: target, Start: init, Stop: stop, Step: step, Body: body}
}

// Forin = "for" NameList "in" ExpList "do" Block "end"
func (p *parserLuaTokens) parseForin() *Forin {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordFor)
	if open == nil {
		return nil
	}
	targets := p.parseNameList()
	if targets == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeKeywordIn) == nil {
		return nil
	}
	it, ok := p.parseExprList()
	if !ok {
		return nil
	}
	if p.expectOne(syntax.TokenTypeKeywordDo) == nil {
		return nil
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil
	}
	if p.expectClose(syntax.TokenTypeKeywordEnd, open) == nil {
		return nil
	}
	return &Forin{astNode: p.node(start), Targets: targets, Iter: it, Body: body}
}

// FunctionStat = "function" FuncName FuncBody
// FuncName = Name { "." Name } [ ":" Name ]
func (p *parserLuaTokens) parseFunctionStat() (Stmt, bool) {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeKeywordFunction)
	if open == nil {
		return nil, false
	}
	nameStart := p.start()
	first := p.parseName()
	if first == nil {
		return nil, false
	}
	var name Expr = first
	for p.accept(syntax.TokenTypeDot) {
		key := p.parseName()
		if key == nil {
			return nil, false
		}
		name = &Index{astNode: p.node(nameStart), Value: name, Idx: key, Notation: IndexNotationDot}
	}
	if p.accept(syntax.TokenTypeColon) {
		method := p.parseName()
		if method == nil {
			return nil, false
		}
		params, body, ok := p.parseFuncBody(open)
		if !ok {
			return nil, false
		}
		return &Method{astNode: p.node(start), Source: name, Name: method, Params: params, Body: body}, true
	}
	params, body, ok := p.parseFuncBody(open)
	if !ok {
		return nil, false
	}
	return &Function{astNode: p.node(start), Name: name, Params: params, Body: body}, true
}

// LocalFunction = "local" "function" Name FuncBody
func (p *parserLuaTokens) parseLocalFunction() *LocalFunction {
	start := p.start()
	if p.expectOne(syntax.TokenTypeKeywordLocal) == nil {
		return nil
	}
	open := p.expectOne(syntax.TokenTypeKeywordFunction)
	if open == nil {
		return nil
	}
	name := p.parseName()
	if name == nil {
		return nil
	}
	params, body, ok := p.parseFuncBody(open)
	if !ok {
		return nil
	}
	return &LocalFunction{astNode: p.node(start), Name: name, Params: params, Body: body}
}

// LocalAssign = "local" AttName { "," AttName } [ "=" ExpList ]
// AttName = Name [ "<" Name ">" ]
func (p *parserLuaTokens) parseLocalAssign() *LocalAssign {
	start := p.start()
	if p.expectOne(syntax.TokenTypeKeywordLocal) == nil {
		return nil
	}
	var targets []*Name
	var attribs []string
	for {
		name := p.parseName()
		if name == nil {
			return nil
		}
		attrib := ""
		if p.accept(syntax.TokenTypeAngleOpen) {
			tok := p.expectName()
			if tok == nil {
				return nil
			}
			if tok.Text != "const" && tok.Text != "close" {
				p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unknown attribute '%s'", tok.Text))
				return nil
			}
			if p.expectOne(syntax.TokenTypeAngleClose) == nil {
				return nil
			}
			attrib = tok.Text
		}
		targets = append(targets, name)
		attribs = append(attribs, attrib)
		if !p.accept(syntax.TokenTypeComma) {
			break
		}
	}
	values := []Expr{}
	if p.accept(syntax.TokenTypeEqual) {
		var ok bool
		if values, ok = p.parseExprList(); !ok {
			return nil
		}
	}
	return &LocalAssign{astNode: p.node(start), Targets: targets, Attribs: attribs, Values: values}
}

// Label = "::" Name "::"
func (p *parserLuaTokens) parseLabel() *Label {
	start := p.start()
	if p.expectOne(syntax.TokenTypeDoubleColon) == nil {
		return nil
	}
	id := p.parseName()
	if id == nil {
		return nil
	}
	if p.expectOne(syntax.TokenTypeDoubleColon) == nil {
		return nil
	}
	return &Label{astNode: p.node(start), ID: id}
}

// Goto = "goto" Name
func (p *parserLuaTokens) parseGoto() *Goto {
	start := p.start()
	if p.expectOne(syntax.TokenTypeKeywordGoto) == nil {
		return nil
	}
	label := p.parseName()
	if label == nil {
		return nil
	}
	return &Goto{astNode: p.node(start), Label: label}
}

// ReturnStatement = "return" [ ExpList ] [ ";" ]
func (p *parserLuaTokens) parseReturn() *Return {
	start := p.start()
	if p.expectOne(syntax.TokenTypeKeywordReturn) == nil {
		return nil
	}
	values := []Expr{}
	switch p.peek().Type {
	case syntax.TokenTypeKeywordElse, syntax.TokenTypeKeywordElseIf, syntax.TokenTypeKeywordEnd,
		syntax.TokenTypeKeywordUntil, syntax.TokenTypeEOF, syntax.TokenTypeSemicolon:
	default:
		var ok bool
		if values, ok = p.parseExprList(); !ok {
			return nil
		}
	}
	_ = p.accept(syntax.TokenTypeSemicolon)
	return &Return{astNode: p.node(start), Values: values}
}

// ExprStat = SuffixedExp { "," SuffixedExp } "=" ExpList | FunctionCall
func (p *parserLuaTokens) parseExprStat() (Stmt, bool) {
	start := p.start()
	first, wrapped := p.parseSuffixedExp()
	if first == nil {
		return nil, false
	}
	if p.check(syntax.TokenTypeEqual) || p.check(syntax.TokenTypeComma) {
		if !p.checkAssignable(first, wrapped) {
			return nil, false
		}
		targets := []Expr{first}
		for p.accept(syntax.TokenTypeComma) {
			target, wrapped := p.parseSuffixedExp()
			if target == nil || !p.checkAssignable(target, wrapped) {
				return nil, false
			}
			targets = append(targets, target)
		}
		if p.expectOne(syntax.TokenTypeEqual) == nil {
			return nil, false
		}
		values, ok := p.parseExprList()
		if !ok {
			return nil, false
		}
		return &Assign{astNode: p.node(start), Targets: targets, Values: values}, true
	}
	if !wrapped {
		switch call := first.(type) {
		case *Call:
			return call, true
		case *Invoke:
			return call, true
		}
	}
	p.unexpected("syntax error")
	return nil, false
}

// checkAssignable reports an error unless e may be the target of an
// assignment. A parenthesized expression is never assignable.
func (p *parserLuaTokens) checkAssignable(e Expr, wrapped bool) bool {
	if !wrapped {
		switch e.(type) {
		case *Name, *Index:
			return true
		}
	}
	p.report(exc.CodeInvalidAssignment, fmt.Sprintf("cannot assign to %s near %s", e.Kind(), describe(p.peek())))
	return false
}

// NameList = Name { "," Name }
func (p *parserLuaTokens) parseNameList() []*Name {
	var names []*Name
	for {
		name := p.parseName()
		if name == nil {
			return nil
		}
		names = append(names, name)
		if !p.accept(syntax.TokenTypeComma) {
			return names
		}
	}
}

// FuncBody = "(" [ ParList ] ")" Block "end"
// ParList = Name { "," Name } [ "," "..." ] | "..."
func (p *parserLuaTokens) parseFuncBody(open *syntax.Token) ([]Expr, []Stmt, bool) {
	if p.expectOne(syntax.TokenTypeParenOpen) == nil {
		return nil, nil, false
	}
	params := []Expr{}
	if !p.check(syntax.TokenTypeParenClose) {
		for {
			if p.check(syntax.TokenTypeEllipsis) {
				start := p.start()
				p.advance()
				params = append(params, &Varargs{astNode: p.node(start)})
				break
			}
			name := p.parseName()
			if name == nil {
				return nil, nil, false
			}
			params = append(params, name)
			if !p.accept(syntax.TokenTypeComma) {
				break
			}
		}
	}
	if p.expectOne(syntax.TokenTypeParenClose) == nil {
		return nil, nil, false
	}
	body, ok := p.parseStatements()
	if !ok {
		return nil, nil, false
	}
	if p.expectClose(syntax.TokenTypeKeywordEnd, open) == nil {
		return nil, nil, false
	}
	return params, body, true
}

// ExpList = Exp { "," Exp }
func (p *parserLuaTokens) parseExprList() ([]Expr, bool) {
	var exprs []Expr
	for {
		e := p.parseExpr()
		if e == nil {
			return nil, false
		}
		exprs = append(exprs, e)
		if !p.accept(syntax.TokenTypeComma) {
			return exprs, true
		}
	}
}

// Exp = SubExp(0)
func (p *parserLuaTokens) parseExpr() Expr {
	return p.parseSubExpr(0)
}

var binaryOperatorTokens = map[syntax.TokenType]BinaryOperator{
	syntax.TokenTypeKeywordOr:    OpOr,
	syntax.TokenTypeKeywordAnd:   OpAnd,
	syntax.TokenTypeAngleOpen:    OpLessThan,
	syntax.TokenTypeAngleClose:   OpGreaterThan,
	syntax.TokenTypeLesserEqual:  OpLessOrEqual,
	syntax.TokenTypeGreaterEqual: OpGreaterOrEqual,
	syntax.TokenTypeNotEqual:     OpNotEqual,
	syntax.TokenTypeComparison:   OpEqual,
	syntax.TokenTypePipe:         OpBitOr,
	syntax.TokenTypeTilde:        OpBitXor,
	syntax.TokenTypeAmpersand:    OpBitAnd,
	syntax.TokenTypeShiftLeft:    OpShiftLeft,
	syntax.TokenTypeShiftRight:   OpShiftRight,
	syntax.TokenTypeConcat:       OpConcat,
	syntax.TokenTypePlus:         OpAdd,
	syntax.TokenTypeMinus:        OpSub,
	syntax.TokenTypeStar:         OpMul,
	syntax.TokenTypeSlash:        OpFloatDiv,
	syntax.TokenTypeDoubleSlash:  OpFloorDiv,
	syntax.TokenTypePercent:      OpMod,
	syntax.TokenTypeCaret:        OpPow,
}

var unaryOperatorTokens = map[syntax.TokenType]UnaryOperator{
	syntax.TokenTypeMinus:      OpNeg,
	syntax.TokenTypeKeywordNot: OpNot,
	syntax.TokenTypeHash:       OpLength,
	syntax.TokenTypeTilde:      OpBitNot,
}

// SubExp(limit) = ( SimpleExp | UnOp SubExp(12) ) { BinOp SubExp(right) }
//
// The loop only takes operators whose left priority is above limit.
func (p *parserLuaTokens) parseSubExpr(limit int) Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	start := p.start()
	var left Expr
	if op, ok := unaryOperatorTokens[p.peek().Type]; ok {
		p.advance()
		operand := p.parseSubExpr(unaryPriority)
		if operand == nil {
			return nil
		}
		left = &UnaryOp{astNode: p.node(start), Operator: op, Operand: operand}
	} else {
		if left = p.parseSimpleExp(); left == nil {
			return nil
		}
	}
	for {
		op, ok := binaryOperatorTokens[p.peek().Type]
		if !ok || binaryOperators[op].left <= limit {
			return left
		}
		p.advance()
		right := p.parseSubExpr(binaryOperators[op].right)
		if right == nil {
			return nil
		}
		left = &BinaryOp{astNode: p.node(start), Operator: op, Left: left, Right: right}
	}
}

// SimpleExp = Number | String | "nil" | "true" | "false" | "..." |
//
//	TableConstructor | "function" FuncBody | SuffixedExp
func (p *parserLuaTokens) parseSimpleExp() Expr {
	start := p.start()
	tok := p.peek()
	switch tok.Type {
	case syntax.TokenTypeNumber:
		if n := p.parseNumber(); n != nil {
			return n
		}
		return nil
	case syntax.TokenTypeString, syntax.TokenTypeStringLong:
		if s := p.parseString(); s != nil {
			return s
		}
		return nil
	case syntax.TokenTypeKeywordNil:
		p.advance()
		return &Nil{astNode: p.node(start)}
	case syntax.TokenTypeKeywordTrue:
		p.advance()
		return &TrueExpr{astNode: p.node(start)}
	case syntax.TokenTypeKeywordFalse:
		p.advance()
		return &FalseExpr{astNode: p.node(start)}
	case syntax.TokenTypeEllipsis:
		p.advance()
		return &Varargs{astNode: p.node(start)}
	case syntax.TokenTypeCurlyOpen:
		if t := p.parseTable(); t != nil {
			return t
		}
		return nil
	case syntax.TokenTypeKeywordFunction:
		p.advance()
		params, body, ok := p.parseFuncBody(tok)
		if !ok {
			return nil
		}
		return &AnonymousFunction{astNode: p.node(start), Params: params, Body: body}
	default:
		e, _ := p.parseSuffixedExp()
		return e
	}
}

// PrimaryExp = Name | "(" Exp ")"
//
// Parentheses do not get a node of their own. The second result reports
// whether the expression was parenthesized.
func (p *parserLuaTokens) parsePrimaryExp() (Expr, bool) {
	switch p.peek().Type {
	case syntax.TokenTypeIdentifier:
		if n := p.parseName(); n != nil {
			return n, false
		}
		return nil, false
	case syntax.TokenTypeParenOpen:
		open := p.peek()
		p.advance()
		e := p.parseExpr()
		if e == nil {
			return nil, false
		}
		if p.expectClose(syntax.TokenTypeParenClose, open) == nil {
			return nil, false
		}
		return e, true
	default:
		p.unexpected("unexpected symbol")
		return nil, false
	}
}

// SuffixedExp = PrimaryExp { "." Name | "[" Exp "]" | ":" Name Args | Args }
//
// Each suffix wraps the expression built so far. The second result is set
// when the expression is a parenthesized primary with no suffix.
func (p *parserLuaTokens) parseSuffixedExp() (Expr, bool) {
	start := p.start()
	e, wrapped := p.parsePrimaryExp()
	if e == nil {
		return nil, false
	}
	for {
		switch p.peek().Type {
		case syntax.TokenTypeDot:
			p.advance()
			key := p.parseName()
			if key == nil {
				return nil, false
			}
			e = &Index{astNode: p.node(start), Value: e, Idx: key, Notation: IndexNotationDot}
		case syntax.TokenTypeSquareOpen:
			p.advance()
			key := p.parseExpr()
			if key == nil {
				return nil, false
			}
			if p.expectOne(syntax.TokenTypeSquareClose) == nil {
				return nil, false
			}
			e = &Index{astNode: p.node(start), Value: e, Idx: key, Notation: IndexNotationSquare}
		case syntax.TokenTypeColon:
			p.advance()
			name := p.parseName()
			if name == nil {
				return nil, false
			}
			args, ok := p.parseArgs()
			if !ok {
				return nil, false
			}
			e = &Invoke{astNode: p.node(start), Source: e, Func: name, Args: args}
		case syntax.TokenTypeParenOpen, syntax.TokenTypeString, syntax.TokenTypeStringLong, syntax.TokenTypeCurlyOpen:
			args, ok := p.parseArgs()
			if !ok {
				return nil, false
			}
			e = &Call{astNode: p.node(start), Func: e, Args: args}
		default:
			return e, wrapped
		}
		wrapped = false
	}
}

// Args = "(" [ ExpList ] ")" | TableConstructor | String
func (p *parserLuaTokens) parseArgs() ([]Expr, bool) {
	switch p.peek().Type {
	case syntax.TokenTypeString, syntax.TokenTypeStringLong:
		s := p.parseString()
		if s == nil {
			return nil, false
		}
		return []Expr{s}, true
	case syntax.TokenTypeCurlyOpen:
		t := p.parseTable()
		if t == nil {
			return nil, false
		}
		return []Expr{t}, true
	}
	open := p.expectOne(syntax.TokenTypeParenOpen)
	if open == nil {
		return nil, false
	}
	args := []Expr{}
	if !p.check(syntax.TokenTypeParenClose) {
		var ok bool
		if args, ok = p.parseExprList(); !ok {
			return nil, false
		}
	}
	if p.expectClose(syntax.TokenTypeParenClose, open) == nil {
		return nil, false
	}
	return args, true
}

// TableConstructor = "{" [ Field { ( "," | ";" ) Field } [ "," | ";" ] ] "}"
func (p *parserLuaTokens) parseTable() *Table {
	start := p.start()
	open := p.expectOne(syntax.TokenTypeCurlyOpen)
	if open == nil {
		return nil
	}
	fields := []*Field{}
	for !p.check(syntax.TokenTypeCurlyClose) {
		f := p.parseField()
		if f == nil {
			return nil
		}
		fields = append(fields, f)
		if !p.accept(syntax.TokenTypeComma) && !p.accept(syntax.TokenTypeSemicolon) {
			break
		}
	}
	if p.expectClose(syntax.TokenTypeCurlyClose, open) == nil {
		return nil
	}
	return &Table{astNode: p.node(start), Fields: fields}
}

// Field = "[" Exp "]" "=" Exp | Name "=" Exp | Exp
func (p *parserLuaTokens) parseField() *Field {
	start := p.start()
	switch {
	case p.check(syntax.TokenTypeSquareOpen):
		p.advance()
		key := p.parseExpr()
		if key == nil {
			return nil
		}
		if p.expectOne(syntax.TokenTypeSquareClose) == nil || p.expectOne(syntax.TokenTypeEqual) == nil {
			return nil
		}
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		return &Field{astNode: p.node(start), Key: key, Value: value, Bracketed: true}
	case p.check(syntax.TokenTypeIdentifier) && p.peekN(1).Type == syntax.TokenTypeEqual:
		key := p.parseName()
		if key == nil {
			return nil
		}
		p.advance()
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		return &Field{astNode: p.node(start), Key: key, Value: value}
	default:
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		return &Field{astNode: p.node(start), Value: value}
	}
}

func (p *parserLuaTokens) parseName() *Name {
	start := p.start()
	tok := p.expectName()
	if tok == nil {
		return nil
	}
	return &Name{astNode: p.node(start), ID: tok.Text}
}

func (p *parserLuaTokens) parseNumber() *Number {
	start := p.start()
	tok := p.expectOne(syntax.TokenTypeNumber)
	if tok == nil {
		return nil
	}
	i, f, isFloat, err := numberValue(tok.Text)
	if err != nil {
		p.report(exc.CodeMalformedNumber, err.Error())
		return nil
	}
	return &Number{astNode: p.node(start), Int: i, Float: f, IsFloat: isFloat}
}

func (p *parserLuaTokens) parseString() *String {
	start := p.start()
	tok := p.expectOneOf([]syntax.TokenType{syntax.TokenTypeString, syntax.TokenTypeStringLong})
	if tok == nil {
		return nil
	}
	if tok.Type == syntax.TokenTypeStringLong {
		return &String{astNode: p.node(start), Value: longStringValue(tok.Text), Delimiter: StringDelimiterLongBracket}
	}
	value, err := unquoteShort(tok.Text)
	if err != nil {
		p.report(exc.CodeInvalidEscape, fmt.Sprintf("%s near '%s'", err.Error(), tok.Text))
		return nil
	}
	delimiter := StringDelimiterDoubleQuote
	if tok.Text[0] == '\'' {
		delimiter = StringDelimiterSingleQuote
	}
	return &String{astNode: p.node(start), Value: value, Delimiter: delimiter}
}
