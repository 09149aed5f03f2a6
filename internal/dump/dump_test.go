package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/luaparser.go/internal/compiler/lua"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

type treeNode struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Start    int        `json:"start" yaml:"start"`
	End      int        `json:"end" yaml:"end"`
	Detail   string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	Children []treeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

var assignTree = treeNode{
	Kind: "Chunk", Start: 0, End: 5, Detail: lua.DefaultURI,
	Children: []treeNode{{
		Kind: "Block", Start: 0, End: 4,
		Children: []treeNode{{
			Kind: "Assign", Start: 0, End: 4,
			Children: []treeNode{
				{Kind: "Name", Start: 0, End: 0, Detail: "x"},
				{Kind: "Number", Start: 4, End: 4, Detail: "1"},
			},
		}},
	}},
}

func mustParse(t *testing.T, source string) *lua.Chunk {
	t.Helper()
	chunk, err := lua.Parse(context.Background(), source)
	require.NoError(t, err)
	return chunk
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected Format
	}{
		{input: "text", expected: FormatText},
		{input: "JSON", expected: FormatJSON},
		{input: "yaml", expected: FormatYAML},
		{input: "yml", expected: FormatYAML},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			actual, err := ParseFormat(testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, actual)
		})
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tokens, err := lua.TokenizeString(context.Background(), "x = 1\n")
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, Tokens(&b, tokens))

	var expected strings.Builder
	line := func(tt syntax.TokenType, text string) {
		expected.WriteString(fmt.Sprintf("%-24s'%s'\n", tt, text))
	}
	line(syntax.TokenTypeIdentifier, "x")
	line(syntax.TokenTypeWhitespace, " ")
	line(syntax.TokenTypeEqual, "=")
	line(syntax.TokenTypeWhitespace, " ")
	line(syntax.TokenTypeNumber, "1")
	expected.WriteString(fmt.Sprintf("%-24s\n", syntax.TokenTypeNewline))
	line(syntax.TokenTypeEOF, "")
	require.Equal(t, expected.String(), b.String())
}

func TestTreeText(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Tree(&b, mustParse(t, "x = 1"), FormatText))
	require.Equal(t, strings.Join([]string{
		"Chunk [0..5] <string>",
		"  Block [0..4]",
		"    Assign [0..4]",
		"      Name [0..0] x",
		"      Number [4..4] 1",
		"",
	}, "\n"), b.String())
}

func TestTreeTextDetails(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Tree(&b, mustParse(t, "local a <const> = -t['k'] .. b.c"), FormatText))
	out := b.String()
	require.Contains(t, out, "LocalAssign [0..")
	require.Contains(t, out, "] <const>\n")
	require.Contains(t, out, "ConcatOp [")
	require.Contains(t, out, "] ..\n")
	require.Contains(t, out, "NegOp [")
	require.Contains(t, out, "Index [")
	require.Contains(t, out, "] SQUARE\n")
	require.Contains(t, out, "] DOT\n")
	require.Contains(t, out, "String [")
	require.Contains(t, out, `] "k"`)
}

func TestTreeJSON(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Tree(&b, mustParse(t, "x = 1"), FormatJSON))
	var actual treeNode
	require.NoError(t, json.Unmarshal(b.Bytes(), &actual))
	require.Equal(t, assignTree, actual)
}

func TestTreeYAML(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.NoError(t, Tree(&b, mustParse(t, "x = 1"), FormatYAML))
	require.True(t, strings.HasPrefix(b.String(), "kind: Chunk\nstart: 0\nend: 5\n"), b.String())
	var actual treeNode
	require.NoError(t, yaml.Unmarshal(b.Bytes(), &actual))
	require.Equal(t, assignTree, actual)
}

func TestTreeUnknownFormat(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	require.Error(t, Tree(&b, mustParse(t, "x = 1"), Format("xml")))
}
