// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.microglot.org/luaparser.go/internal/exc"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

const (
	fileExt = ".lua"
)

var _ syntax.FileSystem = FileSystemMulti{}

// FileSystemMulti is an ordered set of FileSystem implementations that are
// tried in order.
type FileSystemMulti []syntax.FileSystem

func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]syntax.File, error) {
	for _, fs := range r {
		files, err := fs.Open(ctx, uri)
		if err != nil {
			continue
		}
		return files, nil
	}
	return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("could not open %s from any file system", uri))
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. The string
// value provided to the factory function is the root directory of the file
// system. All paths given to open are considered relative to this root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default keeps files ending in .lua.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
}

// NewFileSystemLocal creates a new FileSystem that uses the local file system.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (syntax.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	result := &fileSystemLocal{
		root:      absroot,
		fsFactory: os.DirFS,
		fileFilter: func(ctx context.Context, fname string) bool {
			return filepath.Ext(fname) == fileExt
		},
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

// Open returns the file at uri or, when uri names a directory, every file
// below it that passes the filter, in lexical order.
func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]syntax.File, error) {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	path = filepath.Join("/", path)

	dir := r.fsFactory(r.root)
	p := filepath.Clean(path)
	// fs.FS requires an un-rooted path and '.' for the root itself.
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		p = "."
	}
	stat, err := fs.Stat(dir, p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	if !stat.IsDir() {
		return []syntax.File{r.newFile(dir, p)}, nil
	}
	var names []string
	err = fs.WalkDir(dir, p, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !r.fileFilter(ctx, d.Name()) {
			return nil
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, fsErr(p, err)
	}
	if len(names) < 1 {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it has no %s files", path, fileExt))
	}
	sort.Strings(names)
	files := make([]syntax.File, 0, len(names))
	for _, name := range names {
		files = append(files, r.newFile(dir, name))
	}
	return files, nil
}

func (r *fileSystemLocal) newFile(dir fs.FS, name string) syntax.File {
	return NewFileFN(filepath.Join(r.root, name), func() (io.ReadCloser, error) {
		return dir.Open(name)
	})
}

func fsErr(path string, err error) error {
	if errT, ok := err.(*fs.PathError); ok {
		switch {
		case errors.Is(errT, fs.ErrNotExist):
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodeFileNotFound, errT)
		case errors.Is(errT, fs.ErrPermission):
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodePermissionDenied, errT)
		default:
			return exc.WrapUnknown(exc.Location{URI: errT.Path}, errT)
		}
	}
	return exc.WrapUnknown(exc.Location{URI: path}, err)
}
