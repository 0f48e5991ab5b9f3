// Package cmdline turns the argument tail of a compile database "command"
// value into a response file body, one argument per line.
//
// The input is JSON-escaped text as written by UnrealBuildTool: \" is a quote
// and \\ a backslash inside the command. The rewrite is a fixed sequence of
// textual stages, not a shell tokenizer, and the order of the stages matters.
//
// A quoted -D or -I value comes out with the flag inside the quotes:
// -D\"X=1\" becomes "-DX=1" rather than -D"X=1". clang reads both forms as
// the same argument.
package cmdline

import "strings"

// placeholder stands in for a literal backslash-quote while the other stages
// run. It cannot occur in a JSON string.
const placeholder = "\x00TRIPLE_QUOTE\x00"

// Stage is one named step of the rewrite.
type Stage struct {
	Name  string
	Apply func(string) string
}

var stages = []Stage{
	{"protect-triple-quotes", replacer(`\\\"`, placeholder)},
	{"normalize-define-include", replacer(`-D\"`, `\"-D`, `-I\"`, `\"-I`)},
	{"collapse-double-quotes", collapseDoubleQuotes},
	{"unescape-quotes", func(s string) string {
		s = strings.ReplaceAll(s, `\" `, `" `)
		return strings.ReplaceAll(s, `\"`, `"`)
	}},
	{"forward-slashes", func(s string) string {
		s = strings.ReplaceAll(s, `\\`, "/")
		return strings.ReplaceAll(s, `\`, "/")
	}},
	{"strip-trailing-comma", func(s string) string {
		s = strings.TrimRight(s, " \t\r\n")
		return strings.TrimSuffix(s, ",")
	}},
	{"split-arguments", replacer(`" `, "\"\n")},
	{"restore-triple-quotes", replacer(placeholder, `\"`)},
}

// Stages returns the rewrite stages in the order Rewrite applies them.
func Stages() []Stage {
	return append([]Stage(nil), stages...)
}

// Rewrite runs every stage over tail and returns the response file body. The
// body always ends with a newline unless it is empty.
func Rewrite(tail string) string {
	s := strings.TrimLeft(tail, " \t")
	for _, st := range stages {
		s = st.Apply(s)
	}
	if s == "" {
		return ""
	}
	return s + "\n"
}

func replacer(oldnew ...string) func(string) string {
	r := strings.NewReplacer(oldnew...)
	return r.Replace
}

// collapseDoubleQuotes reduces any run of escaped quotes to a single one.
func collapseDoubleQuotes(s string) string {
	const dq = `\"\"`
	for strings.Contains(s, dq) {
		s = strings.ReplaceAll(s, dq, `\"`)
	}
	return s
}
