// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package syntax

import (
	"fmt"
	"strings"
)

// Location is a point in a source file. Line and Column are 1-based and
// columns count bytes. Offset is the 0-based byte offset.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span covers the half open byte range [Start, End) of a token.
type Span struct {
	Start Location
	End   Location
}

// Token is one lexeme of the source. Text is the exact source substring so
// that joining the Text of every token reproduces the input.
type Token struct {
	Type TokenType
	Text string
	Span Span
}

func (t *Token) String() string {
	return fmt.Sprintf("%s %q", t.Type, t.Text)
}

// IsTrivia reports whether the parser skips the token when making grammar
// decisions.
func (t *Token) IsTrivia() bool {
	return t.Type.Class().IsTrivia()
}

// Join concatenates the text of the given tokens.
func Join(tokens []*Token) string {
	var b strings.Builder
	for _, t := range tokens {
		_, _ = b.WriteString(t.Text)
	}
	return b.String()
}

type TokenClass uint8

const (
	TokenClassUnknown TokenClass = iota
	TokenClassKeyword
	TokenClassIdentifier
	TokenClassNumber
	TokenClassString
	TokenClassOperator
	TokenClassWhitespace
	TokenClassNewline
	TokenClassComment
	TokenClassEOF
)

func (c TokenClass) IsTrivia() bool {
	switch c {
	case TokenClassWhitespace, TokenClassNewline, TokenClassComment:
		return true
	default:
		return false
	}
}

func (c TokenClass) String() string {
	switch c {
	case TokenClassKeyword:
		return "keyword"
	case TokenClassIdentifier:
		return "identifier"
	case TokenClassNumber:
		return "number"
	case TokenClassString:
		return "string"
	case TokenClassOperator:
		return "operator"
	case TokenClassWhitespace:
		return "whitespace"
	case TokenClassNewline:
		return "newline"
	case TokenClassComment:
		return "comment"
	case TokenClassEOF:
		return "eof"
	default:
		return "unknown"
	}
}

type TokenType uint8

const (
	TokenTypeUnknown TokenType = iota
	TokenTypeEOF

	// trivia
	TokenTypeWhitespace
	TokenTypeNewline
	TokenTypeComment
	TokenTypeCommentLong
	TokenTypeShebang
	TokenTypeBOM

	TokenTypeIdentifier
	TokenTypeNumber
	TokenTypeString
	TokenTypeStringLong

	TokenTypeKeywordAnd
	TokenTypeKeywordBreak
	TokenTypeKeywordDo
	TokenTypeKeywordElse
	TokenTypeKeywordElseIf
	TokenTypeKeywordEnd
	TokenTypeKeywordFalse
	TokenTypeKeywordFor
	TokenTypeKeywordFunction
	TokenTypeKeywordGoto
	TokenTypeKeywordIf
	TokenTypeKeywordIn
	TokenTypeKeywordLocal
	TokenTypeKeywordNil
	TokenTypeKeywordNot
	TokenTypeKeywordOr
	TokenTypeKeywordRepeat
	TokenTypeKeywordReturn
	TokenTypeKeywordThen
	TokenTypeKeywordTrue
	TokenTypeKeywordUntil
	TokenTypeKeywordWhile

	TokenTypePlus         // +
	TokenTypeMinus        // -
	TokenTypeStar         // *
	TokenTypeSlash        // /
	TokenTypeDoubleSlash  // //
	TokenTypePercent      // %
	TokenTypeCaret        // ^
	TokenTypeHash         // #
	TokenTypeAmpersand    // &
	TokenTypeTilde        // ~
	TokenTypePipe         // |
	TokenTypeShiftLeft    // <<
	TokenTypeShiftRight   // >>
	TokenTypeComparison   // ==
	TokenTypeNotEqual     // ~=
	TokenTypeLesserEqual  // <=
	TokenTypeGreaterEqual // >=
	TokenTypeAngleOpen    // <
	TokenTypeAngleClose   // >
	TokenTypeEqual        // =
	TokenTypeParenOpen    // (
	TokenTypeParenClose   // )
	TokenTypeCurlyOpen    // {
	TokenTypeCurlyClose   // }
	TokenTypeSquareOpen   // [
	TokenTypeSquareClose  // ]
	TokenTypeDoubleColon  // ::
	TokenTypeSemicolon    // ;
	TokenTypeColon        // :
	TokenTypeComma        // ,
	TokenTypeDot          // .
	TokenTypeConcat       // ..
	TokenTypeEllipsis     // ...
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:         "Unknown",
	TokenTypeEOF:             "EOF",
	TokenTypeWhitespace:      "Whitespace",
	TokenTypeNewline:         "Newline",
	TokenTypeComment:         "Comment",
	TokenTypeCommentLong:     "CommentLong",
	TokenTypeShebang:         "Shebang",
	TokenTypeBOM:             "BOM",
	TokenTypeIdentifier:      "Identifier",
	TokenTypeNumber:          "Number",
	TokenTypeString:          "String",
	TokenTypeStringLong:      "StringLong",
	TokenTypeKeywordAnd:      "and",
	TokenTypeKeywordBreak:    "break",
	TokenTypeKeywordDo:       "do",
	TokenTypeKeywordElse:     "else",
	TokenTypeKeywordElseIf:   "elseif",
	TokenTypeKeywordEnd:      "end",
	TokenTypeKeywordFalse:    "false",
	TokenTypeKeywordFor:      "for",
	TokenTypeKeywordFunction: "function",
	TokenTypeKeywordGoto:     "goto",
	TokenTypeKeywordIf:       "if",
	TokenTypeKeywordIn:       "in",
	TokenTypeKeywordLocal:    "local",
	TokenTypeKeywordNil:      "nil",
	TokenTypeKeywordNot:      "not",
	TokenTypeKeywordOr:       "or",
	TokenTypeKeywordRepeat:   "repeat",
	TokenTypeKeywordReturn:   "return",
	TokenTypeKeywordThen:     "then",
	TokenTypeKeywordTrue:     "true",
	TokenTypeKeywordUntil:    "until",
	TokenTypeKeywordWhile:    "while",
	TokenTypePlus:            "+",
	TokenTypeMinus:           "-",
	TokenTypeStar:            "*",
	TokenTypeSlash:           "/",
	TokenTypeDoubleSlash:     "//",
	TokenTypePercent:         "%",
	TokenTypeCaret:           "^",
	TokenTypeHash:            "#",
	TokenTypeAmpersand:       "&",
	TokenTypeTilde:           "~",
	TokenTypePipe:            "|",
	TokenTypeShiftLeft:       "<<",
	TokenTypeShiftRight:      ">>",
	TokenTypeComparison:      "==",
	TokenTypeNotEqual:        "~=",
	TokenTypeLesserEqual:     "<=",
	TokenTypeGreaterEqual:    ">=",
	TokenTypeAngleOpen:       "<",
	TokenTypeAngleClose:      ">",
	TokenTypeEqual:           "=",
	TokenTypeParenOpen:       "(",
	TokenTypeParenClose:      ")",
	TokenTypeCurlyOpen:       "{",
	TokenTypeCurlyClose:      "}",
	TokenTypeSquareOpen:      "[",
	TokenTypeSquareClose:     "]",
	TokenTypeDoubleColon:     "::",
	TokenTypeSemicolon:       ";",
	TokenTypeColon:           ":",
	TokenTypeComma:           ",",
	TokenTypeDot:             ".",
	TokenTypeConcat:          "..",
	TokenTypeEllipsis:        "...",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", uint8(t))
}

func (t TokenType) Class() TokenClass {
	switch {
	case t == TokenTypeEOF:
		return TokenClassEOF
	case t == TokenTypeWhitespace, t == TokenTypeBOM:
		return TokenClassWhitespace
	case t == TokenTypeNewline:
		return TokenClassNewline
	case t == TokenTypeComment, t == TokenTypeCommentLong, t == TokenTypeShebang:
		return TokenClassComment
	case t == TokenTypeIdentifier:
		return TokenClassIdentifier
	case t == TokenTypeNumber:
		return TokenClassNumber
	case t == TokenTypeString, t == TokenTypeStringLong:
		return TokenClassString
	case t >= TokenTypeKeywordAnd && t <= TokenTypeKeywordWhile:
		return TokenClassKeyword
	case t >= TokenTypePlus && t <= TokenTypeEllipsis:
		return TokenClassOperator
	default:
		return TokenClassUnknown
	}
}

// Keywords maps every reserved word to its token type.
var Keywords = map[string]TokenType{
	"and":      TokenTypeKeywordAnd,
	"break":    TokenTypeKeywordBreak,
	"do":       TokenTypeKeywordDo,
	"else":     TokenTypeKeywordElse,
	"elseif":   TokenTypeKeywordElseIf,
	"end":      TokenTypeKeywordEnd,
	"false":    TokenTypeKeywordFalse,
	"for":      TokenTypeKeywordFor,
	"function": TokenTypeKeywordFunction,
	"goto":     TokenTypeKeywordGoto,
	"if":       TokenTypeKeywordIf,
	"in":       TokenTypeKeywordIn,
	"local":    TokenTypeKeywordLocal,
	"nil":      TokenTypeKeywordNil,
	"not":      TokenTypeKeywordNot,
	"or":       TokenTypeKeywordOr,
	"repeat":   TokenTypeKeywordRepeat,
	"return":   TokenTypeKeywordReturn,
	"then":     TokenTypeKeywordThen,
	"true":     TokenTypeKeywordTrue,
	"until":    TokenTypeKeywordUntil,
	"while":    TokenTypeKeywordWhile,
}
