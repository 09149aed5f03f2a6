package exc

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

func loc(uri string, line int32, col int32) Location {
	return Location{URI: uri, Location: syntax.Location{Line: line, Column: col}}
}

func TestExceptionError(t *testing.T) {
	t.Parallel()

	e := New(loc("/a.lua", 3, 7), CodeUnexpectedToken, "unexpected symbol near '='")
	require.Equal(t, "/a.lua:3:7 -- S0001: unexpected symbol near '='", e.Error())
	require.Equal(t, CodeUnexpectedToken, e.Code())
	require.Equal(t, "unexpected symbol near '='", e.Message())
	require.Equal(t, int32(3), e.Location().Line)
}

func TestClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		err    error
		lex    bool
		syntax bool
	}{
		{name: "lex", err: New(loc("/a.lua", 1, 1), CodeMalformedNumber, "malformed number near '3x'"), lex: true},
		{name: "syntax", err: New(loc("/a.lua", 1, 1), CodeUnclosedBlock, "'end' expected"), syntax: true},
		{name: "unknown", err: WrapUnknown(loc("/a.lua", 1, 1), errors.New("boom"))},
		{name: "wrapped lex", err: fmt.Errorf("parse: %w", New(loc("/a.lua", 1, 1), CodeInvalidEscape, "invalid escape")), lex: true},
		{name: "rewrapped syntax", err: Wrap(loc("/b.lua", 2, 2), CodeUnexpectedEnd, New(loc("/a.lua", 1, 1), CodeUnexpectedEnd, "unexpected <eof>")), syntax: true},
		{name: "plain error", err: errors.New("plain")},
		{name: "nil", err: nil},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.lex, IsLexError(testCase.err))
			require.Equal(t, testCase.syntax, IsSyntaxError(testCase.err))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, Wrap(loc("/a.lua", 1, 1), CodeUnknownFatal, nil))

	cause := errors.New("disk on fire")
	e := WrapUnknown(loc("/a.lua", 1, 1), cause)
	require.ErrorIs(t, e, cause)
	require.Equal(t, "disk on fire", e.Message())

	inner := New(loc("/a.lua", 4, 2), CodeFileNotFound, "not found")
	outer := Wrap(loc("/b.lua", 1, 1), CodeUnknownFatal, inner)
	require.Equal(t, "not found", outer.Message())
	require.ErrorIs(t, outer, inner)
}

func TestReporter(t *testing.T) {
	t.Parallel()

	r := NewReporter([]string{CodeReservedWord})
	fatal := New(loc("/a.lua", 1, 1), CodeUnexpectedToken, "fatal")
	require.Equal(t, fatal, r.Report(fatal))
	require.Nil(t, r.Report(New(loc("/a.lua", 2, 1), CodeReservedWord, "non fatal")))
	require.Len(t, r.Reported(), 2)

	reported := r.Reported()
	reported[0] = nil
	require.NotNil(t, r.Reported()[0])
}

func TestReporterConcurrent(t *testing.T) {
	t.Parallel()

	r := NewReporter(nil)
	var wg sync.WaitGroup
	for x := 0; x < 32; x = x + 1 {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			_ = r.Report(New(loc(fmt.Sprintf("/%d.lua", x), 1, 1), CodeUnexpectedToken, "x"))
		}(x)
	}
	wg.Wait()
	require.Len(t, r.Reported(), 32)
}
