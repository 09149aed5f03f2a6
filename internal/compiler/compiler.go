// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package compiler runs the Lua parser over many files at once.
package compiler

import (
	"context"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gopkg.microglot.org/luaparser.go/internal/compiler/lua"
	"gopkg.microglot.org/luaparser.go/internal/exc"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
	"gopkg.microglot.org/luaparser.go/internal/target"
)

type Option func(c *compiler) error

func OptionWithFS(fs syntax.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

// OptionWithMaxConcurrency bounds the number of files parsed at the same
// time. Zero selects the number of usable CPUs.
func OptionWithMaxConcurrency(n int) Option {
	return func(c *compiler) error {
		if n < 0 {
			return exc.New(exc.Location{}, exc.CodeUnknownFatal, "max concurrency must not be negative")
		}
		c.MaxConcurrency = n
		return nil
	}
}

// OptionWithParserOptions forwards options to every file's parser.
func OptionWithParserOptions(opts ...lua.Option) Option {
	return func(c *compiler) error {
		c.ParserOptions = append(c.ParserOptions, opts...)
		return nil
	}
}

// Compiler parses a set of Lua files.
type Compiler interface {
	Parse(ctx context.Context, req *Request) (*Response, error)
}

type Request struct {
	// Files are paths, file URIs, or directories. Directories expand to
	// every .lua file below them.
	Files []string
	// TokensOnly stops after lexing. Result.Chunk is nil for every file.
	TokensOnly bool
}

type Response struct {
	// Results holds one entry per successfully processed file, sorted by
	// URI.
	Results []*Result
}

type Result struct {
	URI    string
	Tokens []*syntax.Token
	Chunk  *lua.Chunk
}

func New(opts ...Option) (Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             syntax.FileSystem
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
	ParserOptions  []lua.Option
}

// Parse lexes and parses every requested file. Files that fail do not stop
// the others. When any file fails the response still carries the
// successful results and the error is a MultiException listing every
// failure.
func (self *compiler) Parse(ctx context.Context, req *Request) (*Response, error) {
	files := make([]syntax.File, 0, len(req.Files))
	for _, f := range req.Files {
		uri := target.Normalize(f)
		in, err := self.FS.Open(ctx, uri)
		if err != nil {
			self.report(uri, err)
			continue
		}
		files = append(files, in...)
	}
	loaded := &sync.Map{}
	results := make(chan fileResult, len(files))
	expectedResults := len(files)

	for _, file := range files {
		go func(file syntax.File) {
			result, err := self.parseFile(ctx, file, loaded, req.TokensOnly)
			if err != nil {
				if _, ok := err.(exc.Exception); !ok {
					err = exc.WrapUnknown(exc.Location{URI: file.Path(ctx)}, err)
				}
			}
			results <- fileResult{result, err}
		}(file)
	}

	out := make([]*Result, 0, len(files))
	// Every worker sends exactly one result. Cancellation reaches the workers
	// through ctx and comes back as a per file error.
	for x := 0; x < expectedResults; x = x + 1 {
		result := <-results
		if result.err != nil {
			self.report(result.uri(), result.err)
			continue
		}
		if result.result != nil {
			out = append(out, result.result)
		}
	}
	sort.Slice(out, func(i int, j int) bool {
		return out[i].URI < out[j].URI
	})

	caught := self.Reporter.Reported()
	if len(caught) > 0 {
		return &Response{Results: out}, MultiException(caught)
	}
	return &Response{Results: out}, nil
}

func (self *compiler) parseFile(ctx context.Context, file syntax.File, loaded *sync.Map, tokensOnly bool) (*Result, error) {
	if err := self.Semaphore.Lock(ctx); err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: file.Path(ctx)}, err)
	}
	defer self.Semaphore.Unlock()
	if _, ok := loaded.LoadOrStore(file.Path(ctx), true); ok {
		return nil, nil
	}
	opts := append([]lua.Option{lua.WithReporter(self.Reporter)}, self.ParserOptions...)
	if tokensOnly {
		tokens, err := lua.Tokenize(ctx, file, opts...)
		if err != nil {
			return nil, err
		}
		return &Result{URI: file.Path(ctx), Tokens: tokens}, nil
	}
	chunk, err := lua.ParseFile(ctx, file, opts...)
	if err != nil {
		return nil, err
	}
	return &Result{URI: chunk.URI, Tokens: chunk.AllTokens(), Chunk: chunk}, nil
}

// report records errors that did not come from the lexer or parser. Those
// two report their own exceptions as they raise them.
func (self *compiler) report(uri string, err error) {
	if exc.IsLexError(err) || exc.IsSyntaxError(err) {
		return
	}
	if e, ok := err.(exc.Exception); ok {
		_ = self.Reporter.Report(e)
		return
	}
	_ = self.Reporter.Report(exc.WrapUnknown(exc.Location{URI: uri}, err))
}

type fileResult struct {
	result *Result
	err    error
}

func (self fileResult) uri() string {
	if e, ok := self.err.(exc.Exception); ok {
		return e.Location().URI
	}
	return ""
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}

func (self MultiException) Unwrap() []error {
	out := make([]error, 0, len(self))
	for _, err := range self {
		out = append(out, err)
	}
	return out
}
