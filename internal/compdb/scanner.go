package compdb

import (
	"encoding/json"
	"regexp"
	"strings"
)

// State is the position of the Scanner within the current database record.
type State int

const (
	// ScanningForFile waits for a "file": line.
	ScanningForFile State = iota
	// ScanningForCommand has a current file and waits for its "command": line.
	ScanningForCommand
)

func (s State) String() string {
	if s == ScanningForCommand {
		return "ScanningForCommand"
	}
	return "ScanningForFile"
}

// LineKind classifies one input line.
type LineKind int

const (
	Passthrough LineKind = iota
	FileLine
	CommandLine
)

var (
	fileKey    = regexp.MustCompile(`^\s*"file"\s*:\s*("(?:[^"\\]|\\.)*")`)
	commandKey = regexp.MustCompile(`^\s*"command"\s*:`)
)

// Token is what the Scanner reports for a line. File is the source file the
// line belongs to; it is only set for FileLine and CommandLine tokens.
type Token struct {
	Kind LineKind
	File string
}

// Scanner is the line-oriented state machine over a compile database. Only
// "file" and "command" keys are inspected; everything else is passthrough.
type Scanner struct {
	state State
	file  string
}

// State returns the current state.
func (s *Scanner) State() State { return s.state }

// Next consumes one line. A "command" line only counts when a "file" line
// was seen since the previous command, otherwise it is passthrough.
func (s *Scanner) Next(line string) Token {
	if m := fileKey.FindStringSubmatch(line); m != nil {
		s.file = unquoteJSON(m[1])
		s.state = ScanningForCommand
		return Token{Kind: FileLine, File: s.file}
	}
	if s.state == ScanningForCommand && commandKey.MatchString(line) {
		s.state = ScanningForFile
		return Token{Kind: CommandLine, File: s.file}
	}
	return Token{Kind: Passthrough}
}

// unquoteJSON decodes a quoted JSON string, falling back to stripping the
// quotes when the text is not valid JSON.
func unquoteJSON(quoted string) string {
	var s string
	if err := json.Unmarshal([]byte(quoted), &s); err == nil {
		return s
	}
	return strings.Trim(quoted, `"`)
}

// escapeJSON is the inverse of unquoteJSON without the surrounding quotes.
func escapeJSON(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
