// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"

	"gopkg.microglot.org/luaparser.go/internal/optional"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// NewByteFileBody converts a FileBody into an iterator of bytes. Each byte is
// reported as one CodePoint so that invalid UTF-8 passes through untouched.
func NewByteFileBody(b syntax.FileBody) syntax.Iterator[syntax.CodePoint] {
	return NewByteFileBodyCtx(context.Background(), b)
}

// NewByteFileBodyCtx is the same as NewByteFileBody but uses the given
// context for all read operations for cancellation or other purposes.
func NewByteFileBodyCtx(ctx context.Context, b syntax.FileBody) syntax.Iterator[syntax.CodePoint] {
	rc := &fileBodyIO{
		ctx:  ctx,
		body: b,
	}
	return &fileBody{
		readCloser: rc,
		reader:     bufio.NewReader(rc),
	}
}

type fileBody struct {
	readCloser io.ReadCloser
	reader     *bufio.Reader
	err        error
}

func (f *fileBody) Next(ctx context.Context) optional.Optional[syntax.CodePoint] {
	if f.err != nil {
		return optional.None[syntax.CodePoint]()
	}
	b, err := f.reader.ReadByte()
	if err != nil {
		f.err = err
		return optional.None[syntax.CodePoint]()
	}
	return optional.Some(syntax.CodePoint(b))
}

func (f *fileBody) Close(context.Context) error {
	_ = f.readCloser.Close()
	if f.err != nil && !errors.Is(f.err, io.EOF) {
		return f.err
	}
	return nil
}

type fileBodyIO struct {
	ctx  context.Context
	body syntax.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	if err != nil && !errors.Is(err, io.EOF) {
		return len(b), err
	}
	copy(p, b)
	if errors.Is(err, io.EOF) {
		return len(b), io.EOF
	}
	return len(b), nil
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
