// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package lua implements a lossless lexer and parser for Lua 5.4 source.
// Every node of the resulting tree records the range of tokens it was built
// from, whitespace and comments included, so the exact source of any node
// can be recovered.
package lua

import (
	"context"

	"gopkg.microglot.org/luaparser.go/internal/exc"
	"gopkg.microglot.org/luaparser.go/internal/fs"
	"gopkg.microglot.org/luaparser.go/internal/iter"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// DefaultURI names sources parsed from a string.
const DefaultURI = "<string>"

type Option func(*options)

type options struct {
	maxDepth int
	reporter exc.Reporter
	uri      string
}

func newOptions(opts []Option) *options {
	o := &options{
		maxDepth: DefaultMaxDepth,
		uri:      DefaultURI,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithMaxDepth sets the nesting limit. Values below one keep the default.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithReporter collects errors in r in addition to returning them.
func WithReporter(r exc.Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithURI sets the name used in error locations when parsing a string.
func WithURI(uri string) Option {
	return func(o *options) {
		o.uri = uri
	}
}

// Parse lexes and parses Lua source held in memory.
func Parse(ctx context.Context, source string, opts ...Option) (*Chunk, error) {
	o := newOptions(opts)
	return ParseFile(ctx, fs.NewFileString(o.uri, source), opts...)
}

// ParseFile lexes and parses the contents of f.
func ParseFile(ctx context.Context, f syntax.File, opts ...Option) (*Chunk, error) {
	o := newOptions(opts)
	lf, err := NewLexerLua(o.reporter).Lex(ctx, f)
	if err != nil {
		return nil, err
	}
	return NewParserLua(o.reporter, opts...).Parse(ctx, lf)
}

// Tokenize returns every token of f, trivia included, ending with EOF. On a
// lex error no tokens are returned.
func Tokenize(ctx context.Context, f syntax.File, opts ...Option) ([]*syntax.Token, error) {
	o := newOptions(opts)
	lf, err := NewLexerLua(o.reporter).Lex(ctx, f)
	if err != nil {
		return nil, err
	}
	tokens, err := lf.Tokens(ctx)
	if err != nil {
		return nil, err
	}
	all, err := iter.Collect(ctx, tokens)
	if err != nil {
		return nil, err
	}
	return all, nil
}

// TokenizeString is Tokenize for source held in memory.
func TokenizeString(ctx context.Context, source string, opts ...Option) ([]*syntax.Token, error) {
	o := newOptions(opts)
	return Tokenize(ctx, fs.NewFileString(o.uri, source), opts...)
}
