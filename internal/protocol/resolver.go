package protocol

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	errNotFound = errors.New("not found")
	errStat     = errors.New("stat failed")
)

// ResolveFile maps a request path onto a regular file below root and returns its canonical
// path and size. root must already be absolute and symlink free.
//
// The candidate path is not cleaned lexically: symlinks are followed before ".." is applied,
// and a trailing slash after a file fails. Anything that does not canonicalize, escapes root,
// or is not a regular file yields errNotFound. A stat failure on an otherwise valid file
// yields errStat. Percent-encoding is not decoded.
func ResolveFile(reqPath, root, index string) (string, int64, error) {
	sep := string(filepath.Separator)
	candidate := root + sep + strings.TrimPrefix(reqPath, "/")

	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		if !strings.HasSuffix(candidate, sep) {
			candidate += sep
		}
		candidate += index
	}

	canonical, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", 0, errNotFound
	}
	if !within(root, canonical) {
		return "", 0, errNotFound
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", 0, errStat
	}
	if !info.Mode().IsRegular() {
		return "", 0, errNotFound
	}
	return canonical, info.Size(), nil
}

// within reports whether p equals root or lies below it, comparing whole path components.
func within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
