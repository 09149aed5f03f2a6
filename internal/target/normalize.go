package target

import (
	"net/url"
	"path/filepath"
)

// Normalize converts a command line target into the form expected by the
// file systems.
//
// Targets may be any valid URI or file path. File paths and file URIs are
// converted to an absolute, slash rooted path so that every local file
// system can resolve them against its own root. A relative "src/a.lua"
// becomes "/src/a.lua". All non-file URIs are left as-is with the
// expectation that they will be handled by some other implementation.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	target = filepath.ToSlash(target)
	if !filepath.IsAbs(target) {
		return filepath.Join("/", target)
	}
	return filepath.Clean(target)
}
