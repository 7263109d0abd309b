// Package parser splits MindfulU shell input into a command word and its arguments.
package parser

import (
	"strings"
	"unicode"
)

// CommentPrefix starts a comment line in the shell and in batch scripts.
const CommentPrefix = "%%"

// Input is one parsed line of shell input.
type Input struct {
	// Name is the first word, lowercased.
	Name string
	// Args are the words after Name. Quoted words keep their inner spaces.
	Args []string
	// Text is everything after Name with escape sequences interpreted.
	Text string
	// Raw is the trimmed line as typed.
	Raw string
}

// IsBlank reports whether a line carries nothing to execute.
func IsBlank(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, CommentPrefix)
}

// Parse splits line into an Input. It returns nil for blank and comment lines.
func Parse(line string) *Input {
	raw := strings.TrimSpace(line)
	if IsBlank(raw) {
		return nil
	}

	end := strings.IndexFunc(raw, unicode.IsSpace)
	if end < 0 {
		end = len(raw)
	}
	rest := strings.TrimSpace(raw[end:])

	return &Input{
		Name: strings.ToLower(raw[:end]),
		Args: Split(rest),
		Text: InterpretEscapeSequences(rest),
		Raw:  raw,
	}
}

// Split breaks s into words on whitespace. A word that starts with a single or
// double quote runs to the matching quote, so "" yields an empty word.
// Quotes inside a word, as in "I'm", are literal, as is an unmatched opening quote.
func Split(s string) []string {
	words := []string{}
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}

		var word strings.Builder
		if q := s[i]; q == '"' || q == '\'' {
			if closing := strings.IndexByte(s[i+1:], q); closing >= 0 {
				word.WriteString(s[i+1 : i+1+closing])
				i += closing + 2
			}
		}
		for i < len(s) && !isSpace(s[i]) {
			word.WriteByte(s[i])
			i++
		}
		words = append(words, word.String())
	}
	return words
}

// Remainder returns the raw text of s after its first n words.
func Remainder(s string, n int) string {
	s = strings.TrimSpace(s)
	for ; n > 0 && s != ""; n-- {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		s = strings.TrimSpace(s[end:])
	}
	return s
}

// InterpretEscapeSequences converts \n, \t and escaped quotes and backslashes
// to the characters they stand for.
func InterpretEscapeSequences(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '"', '\'':
			b.WriteByte(s[i+1])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
