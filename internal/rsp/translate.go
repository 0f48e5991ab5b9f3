// Package rsp translates the build tool's MSVC response files into response
// files a clang driver accepts.
package rsp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"unreal_compilation_database/internal/pathpolicy"
)

// ErrNotFound is returned when the response file to translate does not exist.
var ErrNotFound = errors.New("response file not found")

// MandatoryHeaders are force-included into every generated response file, in
// this order, relative to the engine root. The language server needs their
// macros even when the translation unit does not include them.
var MandatoryHeaders = []string{
	"Engine/Source/Runtime/CoreUObject/Public/UObject/ObjectMacros.h",
	"Engine/Source/Runtime/Core/Public/Misc/EnumRange.h",
	"Engine/Source/Runtime/Engine/Public/EngineMinimal.h",
}

type prefixRule struct {
	from, to string
}

// Applied in order, first match wins, line start only.
var clangPrefixes = []prefixRule{
	{"/FI", "-include "},
	{"/I ", "-I "},
	{"/D", "-D"},
	{"/W", "-W"},
}

// Translate reads the response file at path and returns its translated body.
func Translate(path, engineRoot string, dialect pathpolicy.Dialect) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("unable to open response file %s: %w", path, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return "", fmt.Errorf("unable to read response file %s: %w", path, err)
	}
	return strings.Join(TranslateLines(lines, engineRoot, dialect), "\n") + "\n", nil
}

// TranslateLines rewrites each line for the dialect and appends the mandatory
// header includes.
func TranslateLines(lines []string, engineRoot string, dialect pathpolicy.Dialect) []string {
	out := make([]string, 0, len(lines)+len(MandatoryHeaders))
	for _, line := range lines {
		if dialect.NeedsTranslation() {
			line = translateLine(line)
		}
		out = append(out, line)
	}
	return append(out, HeaderIncludes(engineRoot, dialect)...)
}

// HeaderIncludes renders the force-include lines for MandatoryHeaders.
func HeaderIncludes(engineRoot string, dialect pathpolicy.Dialect) []string {
	root := strings.TrimSuffix(pathpolicy.Normalize(engineRoot), "/")
	out := make([]string, 0, len(MandatoryHeaders))
	for _, h := range MandatoryHeaders {
		p := h
		if root != "" {
			p = root + "/" + h
		}
		if dialect.NeedsTranslation() {
			out = append(out, `-include "`+p+`"`)
		} else {
			out = append(out, `/FI"`+p+`"`)
		}
	}
	return out
}

func translateLine(line string) string {
	for _, r := range clangPrefixes {
		if strings.HasPrefix(line, r.from) {
			return r.to + line[len(r.from):]
		}
	}
	return line
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for s.Scan() {
		lines = append(lines, strings.TrimSuffix(s.Text(), "\r"))
	}
	return lines, s.Err()
}
