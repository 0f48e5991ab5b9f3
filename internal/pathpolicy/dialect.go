package pathpolicy

import (
	"fmt"
	"runtime"
	"strings"
)

// Dialect selects the compiler flag grammar of the target platform.
type Dialect int

const (
	Windows Dialect = iota
	MacOS
	Linux
)

func (d Dialect) String() string {
	switch d {
	case Windows:
		return "windows"
	case MacOS:
		return "macos"
	case Linux:
		return "linux"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// DialectFor maps a GOOS value to a dialect. Unknown systems use Linux rules.
func DialectFor(goos string) Dialect {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	}
	return Linux
}

// HostDialect is the dialect of the running system.
func HostDialect() Dialect {
	return DialectFor(runtime.GOOS)
}

// ParseDialect accepts the spellings used by the command line and by Unreal
// platform names.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "win64", "win":
		return Windows, nil
	case "macos", "mac", "darwin":
		return MacOS, nil
	case "linux", "linuxarm64":
		return Linux, nil
	}
	return Linux, fmt.Errorf("unknown dialect %q", s)
}

// NeedsTranslation reports whether MSVC style flags must be rewritten to
// clang style flags.
func (d Dialect) NeedsTranslation() bool {
	return d != Windows
}

const escapedQuote = `\"`

// FindCompiler locates the compiler executable token in a JSON-escaped
// command body and returns the offset just past it. A closing escaped quote
// directly after the token is included.
func (d Dialect) FindCompiler(body string) (int, bool) {
	var end int
	if d == Windows {
		i := strings.Index(strings.ToLower(body), ".exe")
		if i < 0 {
			return 0, false
		}
		end = i + len(".exe")
	} else {
		i := strings.Index(body, "clang++")
		if i < 0 {
			return 0, false
		}
		end = i + len("clang++")
		// versioned drivers such as clang++-17
		for end < len(body) && body[end] != ' ' && body[end] != '\\' && body[end] != '"' {
			end++
		}
	}
	if strings.HasPrefix(body[end:], escapedQuote) {
		end += len(escapedQuote)
	}
	return end, true
}

// ResponseFilePath derives the path of the rewritten response file from the
// build tool's own response file so the original is never overwritten.
func (d Dialect) ResponseFilePath(orig string) string {
	base, hadExt := strings.CutSuffix(orig, ".rsp")
	if d == Windows {
		return base + ".cl.rsp"
	}
	if hadExt {
		return base + ".clang.rsp"
	}
	return orig + ".rsp"
}
