package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{input: "a.lua", expected: "/a.lua"},
		{input: "src/a.lua", expected: "/src/a.lua"},
		{input: "./src/../a.lua", expected: "/a.lua"},
		{input: "/abs/a.lua", expected: "/abs/a.lua"},
		{input: "/abs//lib/", expected: "/abs/lib"},
		{input: "file:///x/y.lua", expected: "/x/y.lua"},
		{input: "https://example.com/x.lua", expected: "https://example.com/x.lua"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Normalize(testCase.input))
		})
	}
}
