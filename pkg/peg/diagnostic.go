package peg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError describes where and why an input failed to match.
type ParseError struct {
	// Offset is the byte offset of the deepest failure.
	Offset int `json:"offset"`
	// Line is the 1-based line of Offset.
	Line int `json:"line"`
	// Column is the 1-based column of Offset, counted in runes.
	Column int `json:"column"`
	// Expected lists what would have allowed the match to go further.
	Expected []string `json:"expected"`
	// Found describes the input at Offset.
	Found string `json:"found"`
	// Excerpt is the source line around Offset with a caret under it.
	Excerpt string `json:"excerpt"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %v: expected %s, found %s",
		e.Line, e.Column, ErrNoMatch, describe(e.Expected), e.Found)
}

func (e *ParseError) Unwrap() error {
	return ErrNoMatch
}

func describe(expected []string) string {
	switch len(expected) {
	case 0:
		return "nothing"
	case 1:
		return expected[0]
	default:
		return strings.Join(expected[:len(expected)-1], ", ") + " or " + expected[len(expected)-1]
	}
}

// parseError builds the error for a parse that matched up to end, or not at
// all when matched is false.
func (in *Input) parseError(matched bool, end Cursor) *ParseError {
	offset, expected := in.Farthest()

	if matched {
		switch {
		case end.offset > offset:
			offset, expected = end.offset, []string{endOfInput}
		case end.offset == offset:
			expected = append(expected, endOfInput)
		}
	}

	if offset < 0 {
		offset = 0
	}

	line, column := Position(in.text, offset)

	return &ParseError{
		Offset:   offset,
		Line:     line,
		Column:   column,
		Expected: expected,
		Found:    found(in.text, offset),
		Excerpt:  Excerpt(in.text, offset, in.cfg.excerptWidth),
	}
}

func found(text string, offset int) string {
	if offset >= len(text) {
		return endOfInput
	}

	r, _ := utf8.DecodeRuneInString(text[offset:])

	return strconv.QuoteRune(r)
}

// Position returns the 1-based line and column of a byte offset. Columns are
// counted in runes; \r\n, \r and \n each end a line.
func Position(text string, offset int) (line, column int) {
	offset = min(max(offset, 0), len(text))
	line, column = 1, 1

	for i, r := range text[:offset] {
		switch {
		case r == '\r':
			line++
			column = 1
		case r == '\n':
			if i == 0 || text[i-1] != '\r' {
				line++
			}

			column = 1
		default:
			column++
		}
	}

	return line, column
}

// Excerpt returns the line of text containing offset followed by a line with
// a caret under offset. Lines wider than width runes are cut to a window of
// width runes placed so that the caret keeps its relative position in the
// line. A width of zero or less disables cutting.
func Excerpt(text string, offset, width int) string {
	offset = min(max(offset, 0), len(text))

	start := strings.LastIndexAny(text[:offset], "\r\n") + 1

	end := len(text)
	if i := strings.IndexAny(text[offset:], "\r\n"); i >= 0 {
		end = offset + i
	}

	line := []rune(text[start:end])
	column := utf8.RuneCountInString(text[start:offset])

	if width > 0 && len(line) > width {
		ratio := float64(column) / float64(len(line))
		from := int(math.Round(ratio * float64(len(line)-width)))
		line = line[from : from+width]
		column -= from
	}

	return string(line) + "\n" + strings.Repeat(" ", column) + "^"
}
