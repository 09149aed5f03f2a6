package compiler

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/luaparser.go/internal/compiler/lua"
	"gopkg.microglot.org/luaparser.go/internal/exc"
	luafs "gopkg.microglot.org/luaparser.go/internal/fs"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

func newTestCompiler(t *testing.T, files fstest.MapFS, opts ...Option) Compiler {
	t.Helper()
	local, err := luafs.NewFileSystemLocal("/proj", luafs.WithOptionFSFactory(func(string) fs.FS {
		return files
	}))
	require.NoError(t, err)
	opts = append([]Option{
		OptionWithFS(local),
		OptionWithExcReporter(exc.NewReporter(nil)),
		OptionWithLookupEnv(func(string) (string, bool) { return "", false }),
	}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func mapFile(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func resultURIs(resp *Response) []string {
	out := []string{}
	for _, r := range resp.Results {
		out = append(out, r.URI)
	}
	return out
}

func TestCompilerParse(t *testing.T) {
	t.Parallel()

	c := newTestCompiler(t, fstest.MapFS{
		"a.lua":     mapFile("x = 1\n"),
		"lib/b.lua": mapFile("return 2"),
		"lib/c.txt": mapFile("not lua"),
		"lib/d.lua": mapFile("local t = {}"),
	}, OptionWithMaxConcurrency(1))
	resp, err := c.Parse(context.Background(), &Request{Files: []string{"a.lua", "lib", "file:///a.lua"}})
	require.NoError(t, err)
	require.Equal(t, []string{"/proj/a.lua", "/proj/lib/b.lua", "/proj/lib/d.lua"}, resultURIs(resp))
	require.Equal(t, "Chunk(Block([Assign([Name(x)],[Number(1)])]))", lua.Format(resp.Results[0].Chunk))
	require.Equal(t, "x = 1\n", syntax.Join(resp.Results[0].Tokens))
	require.Equal(t, "Chunk(Block([Return([Number(2)])]))", lua.Format(resp.Results[1].Chunk))
}

func TestCompilerParseErrors(t *testing.T) {
	t.Parallel()

	c := newTestCompiler(t, fstest.MapFS{
		"ok.lua":     mapFile("x = 1"),
		"syntax.lua": mapFile("x = "),
		"lex.lua":    mapFile("x = 'a"),
	})
	resp, err := c.Parse(context.Background(), &Request{Files: []string{"ok.lua", "syntax.lua", "lex.lua", "missing.lua"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, []string{"/proj/ok.lua"}, resultURIs(resp))

	var multi MultiException
	require.True(t, errors.As(err, &multi))
	require.Len(t, multi, 3)
	require.True(t, exc.IsSyntaxError(err))
	require.True(t, exc.IsLexError(err))

	codes := map[string]string{}
	for _, e := range multi {
		codes[e.Location().URI] = e.Code()
	}
	require.Equal(t, map[string]string{
		"missing.lua":      exc.CodeFileNotFound,
		"/proj/syntax.lua": exc.CodeUnexpectedEnd,
		"/proj/lex.lua":    exc.CodeUnfinishedString,
	}, codes)
}

func TestCompilerTokensOnly(t *testing.T) {
	t.Parallel()

	c := newTestCompiler(t, fstest.MapFS{
		"partial.lua": mapFile("x = -- no value\n"),
	})
	resp, err := c.Parse(context.Background(), &Request{Files: []string{"partial.lua"}, TokensOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Nil(t, resp.Results[0].Chunk)
	require.Equal(t, "x = -- no value\n", syntax.Join(resp.Results[0].Tokens))
	require.Equal(t, syntax.TokenTypeEOF, resp.Results[0].Tokens[len(resp.Results[0].Tokens)-1].Type)
}

func TestCompilerParserOptions(t *testing.T) {
	t.Parallel()

	c := newTestCompiler(t, fstest.MapFS{
		"deep.lua": mapFile("x = ((((1))))"),
	}, OptionWithParserOptions(lua.WithMaxDepth(3)))
	_, err := c.Parse(context.Background(), &Request{Files: []string{"deep.lua"}})
	require.Error(t, err)
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeRecursionLimit, e.Code())
}

func TestCompilerCancelled(t *testing.T) {
	t.Parallel()

	c := newTestCompiler(t, fstest.MapFS{
		"a.lua": mapFile("x = 1"),
		"b.lua": mapFile("y = 2"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := c.Parse(ctx, &Request{Files: []string{"a.lua", "b.lua"}})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, resp)
	require.Empty(t, resp.Results)

	var multi MultiException
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi, 2)
	uris := []string{}
	for _, e := range multi {
		require.Equal(t, exc.CodeUnknownFatal, e.Code())
		require.ErrorIs(t, e, context.Canceled)
		uris = append(uris, e.Location().URI)
	}
	require.ElementsMatch(t, []string{"/proj/a.lua", "/proj/b.lua"}, uris)
}

func TestCompilerOptions(t *testing.T) {
	t.Parallel()

	_, err := New(OptionWithMaxConcurrency(-1))
	require.Error(t, err)

	c, err := New(OptionWithLookupEnv(func(string) (string, bool) { return "", false }))
	require.NoError(t, err)
	impl := c.(*compiler)
	require.Greater(t, impl.MaxConcurrency, 0)
	require.NotNil(t, impl.FS)
	require.NotNil(t, impl.Reporter)
}

func TestMultiException(t *testing.T) {
	t.Parallel()

	multi := MultiException{
		exc.New(exc.Location{URI: "/a.lua", Location: syntax.Location{Line: 1, Column: 2}}, exc.CodeUnexpectedToken, "one"),
		exc.New(exc.Location{URI: "/b.lua", Location: syntax.Location{Line: 3, Column: 4}}, exc.CodeMalformedNumber, "two"),
	}
	require.Equal(t, "/a.lua:1:2 -- S0001: one; /b.lua:3:4 -- L0007: two", multi.Error())
	require.True(t, exc.IsSyntaxError(multi))
	require.True(t, exc.IsLexError(multi))
}

func TestSemaphore(t *testing.T) {
	t.Parallel()

	s := newSemaphore(1)
	require.NoError(t, s.Lock(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Lock(ctx), context.Canceled)
	s.Unlock()
	require.NoError(t, s.Lock(context.Background()))
	s.Unlock()
}
