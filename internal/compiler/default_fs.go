// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"gopkg.microglot.org/luaparser.go/internal/fs"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// NewDefaultFS searches the system Lua module directories. Roots that do
// not exist are kept; opening a file beneath them simply fails over to the
// next root.
func NewDefaultFS(lookup func(string) (string, bool)) (syntax.FileSystem, error) {
	roots := getDefaultRoots(lookup)
	f := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
