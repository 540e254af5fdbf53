package command

import (
	"strings"
	"unicode"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command. A double-quoted run is one
	// argument without its quotes.
	Args []string
	// RawArgs is the text after the command with inner spacing preserved, for file
	// paths. One pair of quotes around the whole text is removed.
	RawArgs string
}

// Parse splits a text line into a command and arguments. Spaces and tabs both
// separate words.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	rest := strings.TrimSpace(line[end:])
	return ParseResult{
		Command: strings.ToLower(line[:end]),
		Args:    splitArgs(rest),
		RawArgs: unquote(rest),
	}
}

// splitArgs splits s at whitespace outside double quotes. An unterminated quote
// runs to the end of s.
func splitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s[1:len(s)-1], `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
