package compdb

import "strings"

// Command is a "command" line split around its JSON string value. Body is
// still JSON-escaped.
type Command struct {
	Prefix string // indentation, key, colon and the opening quote
	Body   string
	Suffix string // closing quote, trailing comma and line terminator
}

func (c Command) String() string {
	return c.Prefix + c.Body + c.Suffix
}

// ParseCommand splits a "command" line. It reports false when the line does
// not hold a complete string value.
func ParseCommand(line string) (Command, bool) {
	key := strings.Index(line, `"command"`)
	if key < 0 {
		return Command{}, false
	}
	colon := strings.IndexByte(line[key+len(`"command"`):], ':')
	if colon < 0 {
		return Command{}, false
	}
	rest := key + len(`"command"`) + colon + 1
	open := strings.IndexByte(line[rest:], '"')
	if open < 0 {
		return Command{}, false
	}
	open += rest + 1

	closing := -1
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			closing = i
		}
		if closing >= 0 {
			break
		}
	}
	if closing < 0 {
		return Command{}, false
	}
	return Command{
		Prefix: line[:open],
		Body:   line[open:closing],
		Suffix: line[closing:],
	}, true
}

// ResponseRef is an @file token inside a command body.
type ResponseRef struct {
	Start, End int    // byte range of the whole token in the body
	Path       string // unescaped path
}

// FindResponseRef looks for @\"path\" or a bare @path token in body.
func FindResponseRef(body string) (ResponseRef, bool) {
	for i := 0; i < len(body); i++ {
		if body[i] != '@' || (i > 0 && body[i-1] != ' ' && body[i-1] != '"') {
			continue
		}
		if strings.HasPrefix(body[i+1:], `\"`) {
			start := i + 1 + len(`\"`)
			end := strings.Index(body[start:], `\"`)
			if end < 0 {
				return ResponseRef{}, false
			}
			raw := body[start : start+end]
			return ResponseRef{
				Start: i,
				End:   start + end + len(`\"`),
				Path:  unquoteJSON(`"` + raw + `"`),
			}, true
		}
		end := strings.IndexByte(body[i+1:], ' ')
		if end < 0 {
			end = len(body) - i - 1
		}
		if end == 0 {
			continue
		}
		raw := body[i+1 : i+1+end]
		return ResponseRef{Start: i, End: i + 1 + end, Path: unquoteJSON(`"` + raw + `"`)}, true
	}
	return ResponseRef{}, false
}

func quotedRef(path string) string {
	return `@\"` + escapeJSON(path) + `\"`
}
