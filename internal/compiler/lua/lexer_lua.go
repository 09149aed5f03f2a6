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
	"gopkg.microglot.org/luaparser.go/internal/optional"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

const (
	lexerLuaLookahead = 4
)

var _ syntax.Lexer = (*LexerLua)(nil)

// LexerLua converts Lua source into a lossless token stream. Whitespace,
// newlines, and comments are kept as trivia tokens so that concatenating the
// text of every token reproduces the input byte for byte.
type LexerLua struct {
	reporter exc.Reporter
}

func NewLexerLua(reporter exc.Reporter) *LexerLua {
	if reporter == nil {
		reporter = exc.NewReporter(nil)
	}
	return &LexerLua{reporter: reporter}
}

func (self *LexerLua) Lex(ctx context.Context, f syntax.File) (syntax.LexerFile, error) {
	return &lexerFileLua{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileLua struct {
	syntax.File
	reporter exc.Reporter
}

func (self *lexerFileLua) Tokens(ctx context.Context) (syntax.Iterator[*syntax.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewByteFileBodyCtx(ctx, b), lexerLuaLookahead)
	return &lexerFileLuaTokens{
		uri:        self.File.Path(ctx),
		codePoints: points,
		reporter:   self.reporter,
		line:       1,
		prologue:   true,
	}, nil
}

type lexerFileLuaTokens struct {
	uri        string
	codePoints syntax.Lookahead[syntax.CodePoint]
	reporter   exc.Reporter
	line       int32
	col        int32
	offset     int64
	// prologue is set until the first token that may not precede a shebang
	// line has been produced.
	prologue bool
	done     bool
	err      exc.Exception
}

func (self *lexerFileLuaTokens) Next(ctx context.Context) optional.Optional[*syntax.Token] {
	if self.done || self.err != nil {
		return optional.None[*syntax.Token]()
	}
	if err := ctx.Err(); err != nil {
		self.err = exc.WrapUnknown(self.location(self.here()), err)
		return optional.None[*syntax.Token]()
	}
	start := self.here()
	point := self.next(ctx)
	if !point.IsPresent() {
		self.done = true
		return self.emit(start, syntax.TokenTypeEOF, "")
	}
	c := byte(point.Value())
	if self.prologue {
		if start.Offset == 0 && c == 0xEF && self.peekIs(ctx, 1, 0xBB) && self.peekIs(ctx, 2, 0xBF) {
			_ = self.next(ctx)
			_ = self.next(ctx)
			return self.emit(start, syntax.TokenTypeBOM, "\xEF\xBB\xBF")
		}
		self.prologue = false
		if c == '#' {
			return self.readLine(ctx, start, syntax.TokenTypeShebang, "#")
		}
	}
	switch c {
	case ' ', '\t', '\v', '\f':
		return self.readWhitespace(ctx, start, c)
	case '\n', '\r':
		text := self.readNewline(ctx, c)
		return self.emit(start, syntax.TokenTypeNewline, text)
	case '-':
		if self.peekIs(ctx, 1, '-') {
			_ = self.next(ctx)
			return self.readComment(ctx, start)
		}
		return self.emit(start, syntax.TokenTypeMinus, "-")
	case '[':
		if self.peekIs(ctx, 1, '[') || self.peekIs(ctx, 1, '=') {
			return self.readLongString(ctx, start)
		}
		return self.emit(start, syntax.TokenTypeSquareOpen, "[")
	case '=':
		return self.readOneOf(ctx, start, "=", syntax.TokenTypeEqual, '=', syntax.TokenTypeComparison)
	case '<':
		if self.peekIs(ctx, 1, '<') {
			_ = self.next(ctx)
			return self.emit(start, syntax.TokenTypeShiftLeft, "<<")
		}
		return self.readOneOf(ctx, start, "<", syntax.TokenTypeAngleOpen, '=', syntax.TokenTypeLesserEqual)
	case '>':
		if self.peekIs(ctx, 1, '>') {
			_ = self.next(ctx)
			return self.emit(start, syntax.TokenTypeShiftRight, ">>")
		}
		return self.readOneOf(ctx, start, ">", syntax.TokenTypeAngleClose, '=', syntax.TokenTypeGreaterEqual)
	case '/':
		return self.readOneOf(ctx, start, "/", syntax.TokenTypeSlash, '/', syntax.TokenTypeDoubleSlash)
	case '~':
		return self.readOneOf(ctx, start, "~", syntax.TokenTypeTilde, '=', syntax.TokenTypeNotEqual)
	case ':':
		return self.readOneOf(ctx, start, ":", syntax.TokenTypeColon, ':', syntax.TokenTypeDoubleColon)
	case '"', '\'':
		return self.readString(ctx, start, c)
	case '.':
		if self.peekIs(ctx, 1, '.') {
			_ = self.next(ctx)
			return self.readOneOf(ctx, start, "..", syntax.TokenTypeConcat, '.', syntax.TokenTypeEllipsis)
		}
		if n := self.codePoints.Lookahead(ctx, 1); n.IsPresent() && isDigit(byte(n.Value())) {
			return self.readNumber(ctx, start, c)
		}
		return self.emit(start, syntax.TokenTypeDot, ".")
	case '+':
		return self.emit(start, syntax.TokenTypePlus, "+")
	case '*':
		return self.emit(start, syntax.TokenTypeStar, "*")
	case '%':
		return self.emit(start, syntax.TokenTypePercent, "%")
	case '^':
		return self.emit(start, syntax.TokenTypeCaret, "^")
	case '#':
		return self.emit(start, syntax.TokenTypeHash, "#")
	case '&':
		return self.emit(start, syntax.TokenTypeAmpersand, "&")
	case '|':
		return self.emit(start, syntax.TokenTypePipe, "|")
	case '(':
		return self.emit(start, syntax.TokenTypeParenOpen, "(")
	case ')':
		return self.emit(start, syntax.TokenTypeParenClose, ")")
	case '{':
		return self.emit(start, syntax.TokenTypeCurlyOpen, "{")
	case '}':
		return self.emit(start, syntax.TokenTypeCurlyClose, "}")
	case ']':
		return self.emit(start, syntax.TokenTypeSquareClose, "]")
	case ';':
		return self.emit(start, syntax.TokenTypeSemicolon, ";")
	case ',':
		return self.emit(start, syntax.TokenTypeComma, ",")
	default:
		if isDigit(c) {
			return self.readNumber(ctx, start, c)
		}
		if isNameStart(c) {
			return self.readName(ctx, start, c)
		}
		return self.fail(self.exc(start, exc.CodeInvalidCharacter, fmt.Sprintf("unexpected symbol near %s", quoteByte(c))))
	}
}

// Close releases the underlying file body. It reports the lex error, if any,
// that stopped the stream.
func (self *lexerFileLuaTokens) Close(ctx context.Context) error {
	err := self.codePoints.Close(ctx)
	if self.err != nil {
		return self.err
	}
	if err != nil {
		return exc.WrapUnknown(exc.Location{URI: self.uri}, err)
	}
	return nil
}

func (self *lexerFileLuaTokens) readOneOf(ctx context.Context, start syntax.Location, text string, single syntax.TokenType, follow byte, double syntax.TokenType) optional.Optional[*syntax.Token] {
	if self.peekIs(ctx, 1, follow) {
		_ = self.next(ctx)
		return self.emit(start, double, text+string(follow))
	}
	return self.emit(start, single, text)
}

func (self *lexerFileLuaTokens) readWhitespace(ctx context.Context, start syntax.Location, first byte) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_ = builder.WriteByte(first)
	for {
		n := self.codePoints.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		switch c := byte(n.Value()); c {
		case ' ', '\t', '\v', '\f':
			_ = self.next(ctx)
			_ = builder.WriteByte(c)
			continue
		}
		break
	}
	return self.emit(start, syntax.TokenTypeWhitespace, builder.String())
}

// readNewline consumes the rest of a line break that began with first. The
// pairs "\r\n" and "\n\r" count as a single break.
func (self *lexerFileLuaTokens) readNewline(ctx context.Context, first byte) string {
	text := string(first)
	if n := self.codePoints.Lookahead(ctx, 1); n.IsPresent() {
		c := byte(n.Value())
		if (c == '\n' || c == '\r') && c != first {
			_ = self.next(ctx)
			text = text + string(c)
		}
	}
	self.newLine()
	return text
}

// readLine consumes everything up to, but not including, the next line break.
func (self *lexerFileLuaTokens) readLine(ctx context.Context, start syntax.Location, t syntax.TokenType, prefix string) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.codePoints.Lookahead(ctx, 1)
		if !n.IsPresent() || n.Value() == '\n' || n.Value() == '\r' {
			return self.emit(start, t, builder.String())
		}
		_ = self.next(ctx)
		_ = builder.WriteByte(byte(n.Value()))
	}
}

// Comment = "--" LongBracket | "--" { any byte but a line break }
func (self *lexerFileLuaTokens) readComment(ctx context.Context, start syntax.Location) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString("--")
	if !self.peekIs(ctx, 1, '[') {
		return self.readLine(ctx, start, syntax.TokenTypeComment, builder.String())
	}
	_ = self.next(ctx)
	_ = builder.WriteByte('[')
	level := 0
	for self.peekIs(ctx, 1, '=') {
		_ = self.next(ctx)
		_ = builder.WriteByte('=')
		level = level + 1
	}
	if !self.peekIs(ctx, 1, '[') {
		// Not a long bracket so the text seen so far starts a short comment.
		return self.readLine(ctx, start, syntax.TokenTypeComment, builder.String())
	}
	_ = self.next(ctx)
	_ = builder.WriteByte('[')
	if !self.readLongBody(ctx, &builder, level) {
		return self.fail(self.exc(start, exc.CodeUnfinishedLongComment, "unfinished long comment near <eof>"))
	}
	return self.emit(start, syntax.TokenTypeCommentLong, builder.String())
}

// LongString = "[" { "=" } "[" { any byte } "]" { "=" } "]"
func (self *lexerFileLuaTokens) readLongString(ctx context.Context, start syntax.Location) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_ = builder.WriteByte('[')
	level := 0
	for self.peekIs(ctx, 1, '=') {
		_ = self.next(ctx)
		_ = builder.WriteByte('=')
		level = level + 1
	}
	if !self.peekIs(ctx, 1, '[') {
		return self.fail(self.exc(start, exc.CodeInvalidLongDelimiter, fmt.Sprintf("invalid long string delimiter near '%s'", builder.String())))
	}
	_ = self.next(ctx)
	_ = builder.WriteByte('[')
	if !self.readLongBody(ctx, &builder, level) {
		return self.fail(self.exc(start, exc.CodeUnfinishedLongString, "unfinished long string near <eof>"))
	}
	return self.emit(start, syntax.TokenTypeStringLong, builder.String())
}

// readLongBody consumes a long bracket body up to and including the closing
// bracket of the given level. It returns false if the input ends first.
func (self *lexerFileLuaTokens) readLongBody(ctx context.Context, builder *strings.Builder, level int) bool {
	for {
		point := self.next(ctx)
		if !point.IsPresent() {
			return false
		}
		c := byte(point.Value())
		switch c {
		case '\n', '\r':
			_, _ = builder.WriteString(self.readNewline(ctx, c))
		case ']':
			_ = builder.WriteByte(c)
			count := 0
			for self.peekIs(ctx, 1, '=') {
				_ = self.next(ctx)
				_ = builder.WriteByte('=')
				count = count + 1
			}
			if count == level && self.peekIs(ctx, 1, ']') {
				_ = self.next(ctx)
				_ = builder.WriteByte(']')
				return true
			}
		default:
			_ = builder.WriteByte(c)
		}
	}
}

// String = '"' { char | escape } '"' | "'" { char | escape } "'"
func (self *lexerFileLuaTokens) readString(ctx context.Context, start syntax.Location, quote byte) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_ = builder.WriteByte(quote)
	for {
		n := self.codePoints.Lookahead(ctx, 1)
		if !n.IsPresent() {
			return self.fail(self.exc(start, exc.CodeUnfinishedString, fmt.Sprintf("unfinished string near '%s'", builder.String())))
		}
		c := byte(n.Value())
		switch c {
		case '\n', '\r':
			return self.fail(self.exc(start, exc.CodeUnfinishedString, fmt.Sprintf("unfinished string near '%s'", builder.String())))
		case quote:
			_ = self.next(ctx)
			_ = builder.WriteByte(c)
			text := builder.String()
			if _, err := unquoteShort(text); err != nil {
				return self.fail(self.exc(start, exc.CodeInvalidEscape, fmt.Sprintf("%s near '%s'", err.Error(), text)))
			}
			return self.emit(start, syntax.TokenTypeString, text)
		case '\\':
			_ = self.next(ctx)
			_ = builder.WriteByte(c)
			e := self.next(ctx)
			if !e.IsPresent() {
				return self.fail(self.exc(start, exc.CodeUnfinishedString, fmt.Sprintf("unfinished string near '%s'", builder.String())))
			}
			ec := byte(e.Value())
			switch ec {
			case '\n', '\r':
				_, _ = builder.WriteString(self.readNewline(ctx, ec))
			case 'z':
				_ = builder.WriteByte(ec)
				self.skipEscapedSpace(ctx, &builder)
			default:
				_ = builder.WriteByte(ec)
			}
		default:
			_ = self.next(ctx)
			_ = builder.WriteByte(c)
		}
	}
}

// skipEscapedSpace copies the whitespace, line breaks included, that follows
// a "\z" escape.
func (self *lexerFileLuaTokens) skipEscapedSpace(ctx context.Context, builder *strings.Builder) {
	for {
		n := self.codePoints.Lookahead(ctx, 1)
		if !n.IsPresent() || !isSpace(byte(n.Value())) {
			return
		}
		c := byte(self.next(ctx).Value())
		if c == '\n' || c == '\r' {
			_, _ = builder.WriteString(self.readNewline(ctx, c))
			continue
		}
		_ = builder.WriteByte(c)
	}
}

// Numerals are read greedily and then validated as a whole. A letter directly
// after a numeral is pulled into the token so that "3x" is reported as one
// malformed number.
func (self *lexerFileLuaTokens) readNumber(ctx context.Context, start syntax.Location, first byte) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_ = builder.WriteByte(first)
	exponent := "Ee"
	if first == '0' {
		if n := self.codePoints.Lookahead(ctx, 1); n.IsPresent() && (n.Value() == 'x' || n.Value() == 'X') {
			_ = self.next(ctx)
			_ = builder.WriteByte(byte(n.Value()))
			exponent = "Pp"
		}
	}
	for {
		n := self.codePoints.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		c := byte(n.Value())
		if strings.IndexByte(exponent, c) >= 0 {
			_ = self.next(ctx)
			_ = builder.WriteByte(c)
			if self.peekIs(ctx, 1, '+') || self.peekIs(ctx, 1, '-') {
				_ = builder.WriteByte(byte(self.next(ctx).Value()))
			}
			continue
		}
		if isHexDigit(c) || c == '.' {
			_ = self.next(ctx)
			_ = builder.WriteByte(c)
			continue
		}
		break
	}
	if n := self.codePoints.Lookahead(ctx, 1); n.IsPresent() && isNameStart(byte(n.Value())) {
		_ = self.next(ctx)
		_ = builder.WriteByte(byte(n.Value()))
	}
	text := builder.String()
	if _, _, _, err := numberValue(text); err != nil {
		return self.fail(self.exc(start, exc.CodeMalformedNumber, err.Error()))
	}
	return self.emit(start, syntax.TokenTypeNumber, text)
}

func (self *lexerFileLuaTokens) readName(ctx context.Context, start syntax.Location, first byte) optional.Optional[*syntax.Token] {
	var builder strings.Builder
	_ = builder.WriteByte(first)
	for {
		n := self.codePoints.Lookahead(ctx, 1)
		if !n.IsPresent() || !isNameChar(byte(n.Value())) {
			break
		}
		_ = self.next(ctx)
		_ = builder.WriteByte(byte(n.Value()))
	}
	text := builder.String()
	if kw, ok := syntax.Keywords[text]; ok {
		return self.emit(start, kw, text)
	}
	return self.emit(start, syntax.TokenTypeIdentifier, text)
}

// peekIs reports whether the code point n positions ahead of the last one
// consumed is c.
func (self *lexerFileLuaTokens) peekIs(ctx context.Context, n uint8, c byte) bool {
	p := self.codePoints.Lookahead(ctx, n)
	return p.IsPresent() && p.Value() == syntax.CodePoint(c)
}

func (self *lexerFileLuaTokens) next(ctx context.Context) optional.Optional[syntax.CodePoint] {
	n := self.codePoints.Next(ctx)
	if n.IsPresent() {
		self.col = self.col + 1
		self.offset = self.offset + 1
	}
	return n
}

// here is the location of the next unconsumed code point.
func (self *lexerFileLuaTokens) here() syntax.Location {
	return syntax.Location{Line: self.line, Column: self.col + 1, Offset: self.offset}
}

func (self *lexerFileLuaTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
}

func (self *lexerFileLuaTokens) emit(start syntax.Location, t syntax.TokenType, text string) optional.Optional[*syntax.Token] {
	return optional.Some(&syntax.Token{
		Type: t,
		Text: text,
		Span: syntax.Span{Start: start, End: self.here()},
	})
}

func (self *lexerFileLuaTokens) location(at syntax.Location) exc.Location {
	return exc.Location{URI: self.uri, Location: at}
}

func (self *lexerFileLuaTokens) exc(at syntax.Location, code string, message string) exc.Exception {
	return exc.New(self.location(at), code, message)
}

// fail records and reports the lex error that ends the token stream.
func (self *lexerFileLuaTokens) fail(e exc.Exception) optional.Optional[*syntax.Token] {
	self.err = e
	_ = self.reporter.Report(e)
	return optional.None[*syntax.Token]()
}

func quoteByte(c byte) string {
	if c >= 0x20 && c < 0x7f {
		return fmt.Sprintf("'%c'", c)
	}
	return fmt.Sprintf("'<\\%d>'", c)
}
