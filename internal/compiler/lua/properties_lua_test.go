package lua

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

const corpus = `#!/usr/bin/env lua
-- module header
local M = {}
local unpack <const> = table.unpack or unpack

--[==[
  a long comment with ]] inside
]==]

function M.new(name, ...)
  local self = setmetatable({ name = name, args = { ... } }, { __index = M })
  return self
end

function M:greet(greeting)
  greeting = greeting or "hello"
  print(greeting .. ", " .. self.name .. '!')
  return #self.args, self.args[1]
end

local function fib(n)
  if n < 2 then return n end
  return fib(n - 1) + fib(n - 2)
end

for i = 10, 1, -1 do
  if i % 2 == 0 then
    goto continue
  elseif i == 3 then
    break
  else
    print(i, fib(i), 2^-i, ~i & 0xff | 1 << 2 >> 1)
  end
  ::continue::
end

for k, v in pairs({ 1, 2, [3] = "three"; x = 0x1p4 }) do
  local a, b <close> = k, v
end

while not done do
  done = (function(x) return x // 2 end)(4) >= 2
end

repeat
  local line = io.read "l"
until line == nil or #line == 0

do
  local s = [[
multi
line]] .. "\x41\u{42}\67\z
        D"
  obj:method{ s }:chain "x" [1].field = nil
end
return M
`

func corpusSources() map[string]string {
	return map[string]string{
		"corpus":       corpus,
		"crlf":         "local a = 1\r\nlocal b = a\r\n",
		"bom":          "\xEF\xBB\xBF#!/bin/lua\nreturn 1",
		"no trailing":  "x = 1",
		"invalid utf8": "s = '\xff\xfe' -- \xc3\x28\n",
		"trivia only":  "  -- nothing\n\n--[[ still\nnothing ]]\n",
		"semicolons":   ";;local x;;x = 1;",
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, source := range corpusSources() {
		source := source
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			chunk := mustParse(t, source)
			require.Equal(t, source, syntax.Join(chunk.Tokens()))
			require.Equal(t, source, Source(chunk))
			require.Equal(t, len(chunk.AllTokens()), chunk.Range().Len())
			require.Equal(t, syntax.TokenTypeEOF, chunk.AllTokens()[chunk.Range().End].Type)
		})
	}
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	for name, source := range corpusSources() {
		source := source
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			chunk := mustParse(t, source)
			Inspect(chunk, func(n Node) bool {
				rng := n.Range()
				children := Children(n)
				prevEnd := rng.Start - 1
				for _, child := range children {
					crng := child.Range()
					require.True(t, rng.Contains(crng), "%s %s does not contain %s %s", n.Kind(), rng, child.Kind(), crng)
					if crng.Empty() {
						continue
					}
					require.Greater(t, crng.Start, prevEnd, "%s children overlap at %s", n.Kind(), crng)
					prevEnd = crng.End
				}
				if _, ok := n.(*Chunk); ok || rng.Empty() {
					return true
				}
				tokens := n.Tokens()
				require.False(t, tokens[0].IsTrivia(), "%s starts with trivia", n.Kind())
				require.False(t, tokens[len(tokens)-1].IsTrivia(), "%s ends with trivia", n.Kind())
				return true
			})
		})
	}
}

func TestCoverageBoundaries(t *testing.T) {
	t.Parallel()

	// Blocks and assignments have no delimiters of their own at either end.
	// Parentheses are not nodes so other kinds may extend past their
	// children.
	chunk := mustParse(t, corpus)
	Inspect(chunk, func(n Node) bool {
		children := Children(n)
		if len(children) == 0 {
			return true
		}
		switch n.(type) {
		case *Block, *Assign:
			require.Equal(t, children[0].Range().Start, n.Range().Start, "%s", n.Kind())
			require.Equal(t, children[len(children)-1].Range().End, n.Range().End, "%s", n.Kind())
		}
		return true
	})
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	for name, source := range corpusSources() {
		source := source
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first := mustParse(t, source)
			second := mustParse(t, source)
			require.True(t, Equal(first, second))
			require.Equal(t, Format(first), Format(second))
		})
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	require.True(t, Equal(nil, nil))
	require.False(t, Equal(mustParse(t, "x = 1"), nil))
	require.False(t, Equal(mustParse(t, "x = 1"), mustParse(t, "x = 2")))
	require.False(t, Equal(mustParse(t, "a.b = 1"), mustParse(t, "a[b] = 1")))
	require.False(t, Equal(mustParse(t, "x = 1"), mustParse(t, "x  = 1")))
	require.True(t, Equal(mustParse(t, "x = 1 -- c"), mustParse(t, "x = 1 -- c")))
}

func BenchmarkParse(b *testing.B) {
	ctx := context.Background()
	for n := 0; n < b.N; n = n + 1 {
		if _, err := Parse(ctx, corpus); err != nil {
			b.Fatal(err)
		}
	}
}
