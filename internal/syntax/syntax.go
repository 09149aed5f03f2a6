// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package syntax holds the types shared by the lexer, the parser, and the
// tools built on top of them.
package syntax

import (
	"context"

	"gopkg.microglot.org/luaparser.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

// CodePoint is a single unit of source input. Lua source is a byte string so
// the lexer reads one byte per code point.
type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type File interface {
	Path(ctx context.Context) string
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}
