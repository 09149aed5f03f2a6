// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"context"
	"io"
	"strings"

	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// NewFileString wraps static string content in syntax.File.
func NewFileString(path string, content string) syntax.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	})
}

type fileIOFunc struct {
	path string
	body func() (io.ReadCloser, error)
}

// NewFileFN is intended to wrap actual file based content in the syntax.File
// interface. The given body function is used each time there is a call to the
// syntax.File.Body method so it must return a new io.ReadCloser handle.
func NewFileFN(path string, body func() (io.ReadCloser, error)) syntax.File {
	return &fileIOFunc{
		path: path,
		body: body,
	}
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}

func (f *fileIOFunc) Body(ctx context.Context) (syntax.FileBody, error) {
	rc, err := f.body()
	if err != nil {
		return nil, err
	}
	rcbc := &bufioReaderCloser{
		Reader: bufio.NewReader(rc),
		Closer: rc,
	}
	return bodyFromIO(rcbc), nil
}

type bufioReaderCloser struct {
	*bufio.Reader
	io.Closer
}
