package lua

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnquoteShort(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{input: `"plain"`, expected: "plain"},
		{input: `'single'`, expected: "single"},
		{input: `"a\tb\nc"`, expected: "a\tb\nc"},
		{input: `"\a\b\f\r\v\\\"\'"`, expected: "\a\b\f\r\v\\\"'"},
		{input: `'\65\066\0671'`, expected: "ABC1"},
		{input: `"\x41\x6a"`, expected: "Aj"},
		{input: `"\u{48}\u{49}"`, expected: "HI"},
		{input: `"\u{E9}"`, expected: "é"},
		{input: `"\u{7FFFFFFF}"`, expected: "\xfd\xbf\xbf\xbf\xbf\xbf"},
		{input: "\"a\\z   \n  b\"", expected: "ab"},
		{input: "\"a\\\nb\"", expected: "a\nb"},
		{input: "\"a\\\r\nb\"", expected: "a\nb"},
		{input: "'\xff'", expected: "\xff"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			actual, err := unquoteShort(testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, actual)
		})
	}
}

func TestUnquoteShortErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`"\q"`, `"\x4"`, `"\xzz"`, `"\u48"`, `"\u{}"`, `"\u{48"`, `"\u{80000000}"`, `"\300"`, `"abc`} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, err := unquoteShort(input)
			require.Error(t, err)
		})
	}
}

func TestLongStringValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", longStringValue("[[abc]]"))
	require.Equal(t, "abc\n", longStringValue("[[\nabc\n]]"))
	require.Equal(t, "abc", longStringValue("[[\r\nabc]]"))
	require.Equal(t, "a]]b", longStringValue("[==[a]]b]==]"))
	require.Equal(t, "", longStringValue("[=[]=]"))
	require.Equal(t, "a\nb", longStringValue("[[a\r\nb]]"))
	require.Equal(t, "a\nb", longStringValue("[[\r\na\rb]]"))
	require.Equal(t, "a\nb\n\nc", longStringValue("[==[a\n\rb\r\n\r\nc]==]"))
	require.Equal(t, "\n\n", longStringValue("[[\n\n\n]]"))
}

func TestNumberValue(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		integer int64
		float   float64
		isFloat bool
	}{
		{input: "3", integer: 3},
		{input: "0xff", integer: 255},
		{input: "0xffffffffffffffff", integer: -1},
		{input: "0x10000000000000000", integer: 0},
		{input: "9223372036854775807", integer: math.MaxInt64},
		{input: "9223372036854775808", float: 9223372036854775808, isFloat: true},
		{input: "3.0", float: 3, isFloat: true},
		{input: "314.16e-2", float: 3.1416, isFloat: true},
		{input: ".5", float: 0.5, isFloat: true},
		{input: "0x0.1E", float: 0.1171875, isFloat: true},
		{input: "0xA23p-4", float: 162.1875, isFloat: true},
		{input: "0x1p4", float: 16, isFloat: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			i, f, isFloat, err := numberValue(testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.isFloat, isFloat)
			require.Equal(t, testCase.integer, i)
			require.InDelta(t, testCase.float, f, 1e-12)
		})
	}
}

func TestNumberValueMalformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"3x", "1e", "1..2", "0x", "0xg", "0x1p", "0x.p1", "12ab"} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, _, _, err := numberValue(input)
			require.Error(t, err)
		})
	}
}

func TestEncodeUTF8(t *testing.T) {
	t.Parallel()

	require.Equal(t, "A", encodeUTF8('A'))
	require.Equal(t, "é", encodeUTF8(0xE9))
	require.Equal(t, "€", encodeUTF8(0x20AC))
	require.Equal(t, "\U0001F600", encodeUTF8(0x1F600))
}
