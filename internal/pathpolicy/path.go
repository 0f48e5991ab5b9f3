// Package pathpolicy holds the path rules shared by the compile database
// rewriter: separator normalization, engine classification and the naming of
// generated response files.
package pathpolicy

import (
	"os"
	"strings"
)

// Normalize converts every separator to '/' and collapses repeated
// separators. Normalize(Normalize(p)) == Normalize(p).
func Normalize(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	prevSep := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '\\' || c == '/' {
			if prevSep {
				continue
			}
			prevSep = true
			b.WriteByte('/')
			continue
		}
		prevSep = false
		b.WriteByte(c)
	}
	return b.String()
}

// IsUnderRoot reports whether the normalized root occurs anywhere inside the
// normalized path. This is a substring test, not a path-segment prefix test,
// so "C:/Engine2/A.cpp" is reported as being under "C:/Engine".
func IsUnderRoot(path, root string) bool {
	root = Normalize(root)
	if root == "" {
		return false
	}
	return strings.Contains(Normalize(path), root)
}

// FileExists never fails; any stat error reads as "does not exist".
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// FlatName turns a source file path into a single file name for a synthesized
// response file: "C:\Proj\Source\A.cpp" becomes "Proj_Source_A.cpp.rsp".
func FlatName(file string) string {
	file = strings.NewReplacer(`"`, "", ",", "").Replace(strings.TrimSpace(file))
	if len(file) >= 2 && file[1] == ':' && isLetter(file[0]) {
		file = file[2:]
	}
	parts := strings.FieldsFunc(file, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	return strings.Join(parts, "_") + ".rsp"
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
