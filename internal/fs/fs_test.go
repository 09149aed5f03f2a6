package fs

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/luaparser.go/internal/exc"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

func readAll(t *testing.T, f syntax.File) string {
	t.Helper()
	ctx := context.Background()
	body, err := f.Body(ctx)
	require.NoError(t, err)
	var out []byte
	for {
		b, err := body.Read(ctx, 3)
		out = append(out, b...)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	require.NoError(t, body.Close(ctx))
	return string(out)
}

func paths(files []syntax.File) []string {
	out := []string{}
	for _, f := range files {
		out = append(out, f.Path(context.Background()))
	}
	return out
}

func TestFileString(t *testing.T) {
	t.Parallel()

	f := NewFileString("/x.lua", "return 'hello'\n")
	require.Equal(t, "/x.lua", f.Path(context.Background()))
	require.Equal(t, "return 'hello'\n", readAll(t, f))
	// Each call to Body starts from the beginning.
	require.Equal(t, "return 'hello'\n", readAll(t, f))
}

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg", "sub"), 0o755))
	for name, content := range map[string]string{
		"main.lua":          "require 'pkg'",
		"pkg/init.lua":      "return {}",
		"pkg/sub/util.lua":  "local x = 1",
		"pkg/README.md":     "# docs",
		"pkg/sub/notes.txt": "nothing",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	local, err := NewFileSystemLocal(root)
	require.NoError(t, err)
	ctx := context.Background()

	files, err := local.Open(ctx, "/main.lua")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(root, "main.lua")}, paths(files))
	require.Equal(t, "require 'pkg'", readAll(t, files[0]))

	files, err = local.Open(ctx, "file:///pkg")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "pkg", "init.lua"),
		filepath.Join(root, "pkg", "sub", "util.lua"),
	}, paths(files))

	_, err = local.Open(ctx, "/missing.lua")
	require.Error(t, err)
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestFileSystemLocalOptions(t *testing.T) {
	t.Parallel()

	mapFS := fstest.MapFS{
		"a.lua":      &fstest.MapFile{Data: []byte("a")},
		"b.luau":     &fstest.MapFile{Data: []byte("b")},
		"empty/x.md": &fstest.MapFile{Data: []byte("x")},
	}
	local, err := NewFileSystemLocal("/virtual",
		WithOptionFSFactory(func(string) iofs.FS { return mapFS }),
		WithOptionFileFilter(func(ctx context.Context, name string) bool {
			ext := filepath.Ext(name)
			return ext == ".lua" || ext == ".luau"
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	files, err := local.Open(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, []string{"/virtual/a.lua", "/virtual/b.luau"}, paths(files))
	require.Equal(t, "b", readAll(t, files[1]))

	_, err = local.Open(ctx, "/empty")
	require.Error(t, err)
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()

	first, err := NewFileSystemLocal("/one", WithOptionFSFactory(func(string) iofs.FS {
		return fstest.MapFS{"a.lua": &fstest.MapFile{Data: []byte("one")}}
	}))
	require.NoError(t, err)
	second, err := NewFileSystemLocal("/two", WithOptionFSFactory(func(string) iofs.FS {
		return fstest.MapFS{
			"a.lua": &fstest.MapFile{Data: []byte("two")},
			"b.lua": &fstest.MapFile{Data: []byte("two")},
		}
	}))
	require.NoError(t, err)
	multi := FileSystemMulti{first, second}
	ctx := context.Background()

	files, err := multi.Open(ctx, "/a.lua")
	require.NoError(t, err)
	require.Equal(t, []string{"/one/a.lua"}, paths(files))

	files, err = multi.Open(ctx, "/b.lua")
	require.NoError(t, err)
	require.Equal(t, []string{"/two/b.lua"}, paths(files))

	_, err = multi.Open(ctx, "/c.lua")
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}
