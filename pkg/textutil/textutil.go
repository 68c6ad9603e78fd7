// Package textutil provides text helpers for grammar files: binary
// detection, line counting and conversion between byte offsets and the
// zero-based line and UTF-16 column positions used by editors.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// BinarySniffLength is the number of leading bytes scanned for a null byte.
const BinarySniffLength = 8000

// IsBinary reports whether data has a null byte within its first
// BinarySniffLength bytes or is not valid UTF-8 there.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = trimPartialRune(sniff[:BinarySniffLength])
	}

	for _, b := range sniff {
		if b == 0 {
			return true
		}
	}

	return !utf8.Valid(sniff)
}

// trimPartialRune drops an incomplete rune cut off at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}

			break
		}
	}

	return b
}

// CountLines returns the number of lines in text. A final line without a
// terminator counts; \r\n, \r and \n each end a line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}

	lines := len(LineStarts(text))
	if last := text[len(text)-1]; last == '\n' || last == '\r' {
		lines--
	}

	return lines
}

// LineStarts returns the byte offset of the start of every line.
func LineStarts(text string) []int {
	starts := []int{0}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}

			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}

	return starts
}

// Position returns the zero-based line and UTF-16 column of a byte offset.
func Position(text string, offset int) (line, column int) {
	offset = min(max(offset, 0), len(text))
	starts := LineStarts(text)

	for line+1 < len(starts) && starts[line+1] <= offset {
		line++
	}

	return line, utf16Len(text[starts[line]:offset])
}

// Offset returns the byte offset of a zero-based line and UTF-16 column.
// Positions past the end of a line clamp to the line end; lines past the end
// of text clamp to len(text).
func Offset(text string, line, column int) int {
	starts := LineStarts(text)
	if line < 0 {
		return 0
	}

	if line >= len(starts) {
		return len(text)
	}

	start := starts[line]

	end := len(text)
	if line+1 < len(starts) {
		end = starts[line+1]
	}

	content := strings.TrimRight(text[start:end], "\r\n")

	units := 0

	for i, r := range content {
		if units >= column {
			return start + i
		}

		units += utf16Width(r)
	}

	return start + len(content)
}

// WordAt returns the identifier under a byte offset and its byte range.
// Identifiers are ASCII letters, digits and underscores.
func WordAt(text string, offset int) (word string, start, end int) {
	offset = min(max(offset, 0), len(text))

	start = offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}

	end = offset
	for end < len(text) && isWordByte(text[end]) {
		end++
	}

	return text[start:end], start, end
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}

	return n
}

func utf16Width(r rune) int {
	if r >= 0x10000 {
		return 2
	}

	return 1
}
