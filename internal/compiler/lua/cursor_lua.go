// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lua

import (
	"context"
	"fmt"
	"strings"

	"gopkg.microglot.org/luaparser.go/internal/exc"
	"gopkg.microglot.org/luaparser.go/internal/iter"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// cursor walks the significant tokens of a complete token sequence. Trivia
// is skipped for every grammar decision but stays in the sequence so node
// ranges can cover it.
type cursor struct {
	reporter exc.Reporter
	uri      string
	tokens   []*syntax.Token
	// significant holds the index of each non-trivia token. The last entry
	// is always the EOF token.
	significant []int
	pos         int
	err         exc.Exception
}

func newCursor(ctx context.Context, reporter exc.Reporter, uri string, tokens []*syntax.Token) (*cursor, error) {
	if len(tokens) < 1 || tokens[len(tokens)-1].Type != syntax.TokenTypeEOF {
		return nil, exc.New(exc.Location{URI: uri}, exc.CodeUnexpectedEOF, "token sequence does not end with EOF")
	}
	indices := make([]int, len(tokens))
	for x := range indices {
		indices[x] = x
	}
	significant, err := iter.Collect(ctx, iter.NewIteratorFilter(iter.NewSlice(indices), syntax.Filter[int](iter.FilterFunc[int](func(ctx context.Context, x int) bool {
		return !tokens[x].IsTrivia()
	}))))
	if err != nil {
		return nil, err
	}
	return &cursor{
		reporter:    reporter,
		uri:         uri,
		tokens:      tokens,
		significant: significant,
	}, nil
}

func (p *cursor) peek() *syntax.Token {
	return p.peekN(0)
}

// peekN looks n significant tokens past the current one. Looking beyond the
// end yields the EOF token.
func (p *cursor) peekN(n int) *syntax.Token {
	x := p.pos + n
	if x >= len(p.significant) {
		x = len(p.significant) - 1
	}
	return p.tokens[p.significant[x]]
}

func (p *cursor) advance() {
	if p.pos < len(p.significant)-1 {
		p.pos = p.pos + 1
	}
}

func (p *cursor) check(t syntax.TokenType) bool {
	return p.peek().Type == t
}

// accept advances over the current token if it has the given type.
func (p *cursor) accept(t syntax.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

// mark and reset implement backtracking.
func (p *cursor) mark() int {
	return p.pos
}

func (p *cursor) reset(m int) {
	p.pos = m
}

// start is the token index where the next production begins.
func (p *cursor) start() int {
	return p.significant[p.pos]
}

// span is the range from start to the last consumed significant token.
func (p *cursor) span(start int) Range {
	if p.pos == 0 {
		return Range{Start: start, End: start - 1}
	}
	return Range{Start: start, End: p.significant[p.pos-1]}
}

// report records the first syntax error at the current token. Later reports
// are dropped because they are side effects of the first one.
func (p *cursor) report(code string, message string) {
	if p.err != nil {
		return
	}
	tok := p.peek()
	p.err = exc.New(exc.Location{URI: p.uri, Location: tok.Span.Start}, code, message)
	_ = p.reporter.Report(p.err)
}

// reports an error if the current token isn't of the expected type.
// advances on success
func (p *cursor) expectOne(expectedType syntax.TokenType) *syntax.Token {
	return p.expectOneOf([]syntax.TokenType{expectedType})
}

// reports an error if the current token isn't one of the given expected
// types. advances on success
func (p *cursor) expectOneOf(expectedTypes []syntax.TokenType) *syntax.Token {
	tok := p.peek()
	for _, expectedType := range expectedTypes {
		if tok.Type == expectedType {
			p.advance()
			return tok
		}
	}
	names := make([]string, 0, len(expectedTypes))
	for _, t := range expectedTypes {
		names = append(names, "'"+t.String()+"'")
	}
	p.unexpected(strings.Join(names, " or ") + " expected")
	return nil
}

// expectClose consumes the token that closes a construct opened by open.
func (p *cursor) expectClose(closeType syntax.TokenType, open *syntax.Token) *syntax.Token {
	tok := p.peek()
	if tok.Type == closeType {
		p.advance()
		return tok
	}
	if open.Span.Start.Line == tok.Span.Start.Line {
		p.unexpected(fmt.Sprintf("'%s' expected", closeType))
		return nil
	}
	p.report(exc.CodeUnclosedBlock, fmt.Sprintf("'%s' expected (to close '%s' at line %d) near %s", closeType, open.Text, open.Span.Start.Line, describe(tok)))
	return nil
}

// expectName consumes an identifier. Reserved words get a dedicated error.
func (p *cursor) expectName() *syntax.Token {
	tok := p.peek()
	switch tok.Type.Class() {
	case syntax.TokenClassIdentifier:
		p.advance()
		return tok
	case syntax.TokenClassKeyword:
		p.report(exc.CodeReservedWord, fmt.Sprintf("unexpected keyword '%s' (expecting a name)", tok.Text))
	default:
		p.unexpected("<name> expected")
	}
	return nil
}

// unexpected reports the current token with the given expectation.
func (p *cursor) unexpected(expectation string) {
	tok := p.peek()
	if tok.Type == syntax.TokenTypeEOF {
		p.report(exc.CodeUnexpectedEnd, fmt.Sprintf("%s near <eof>", expectation))
		return
	}
	p.report(exc.CodeUnexpectedToken, fmt.Sprintf("%s near %s", expectation, describe(tok)))
}

func describe(tok *syntax.Token) string {
	if tok.Type == syntax.TokenTypeEOF {
		return "<eof>"
	}
	return "'" + tok.Text + "'"
}
