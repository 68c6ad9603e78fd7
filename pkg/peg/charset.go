package peg

import (
	"errors"
	"fmt"
	"unicode"
)

// CharSet is a set of runes written in bracket-class notation: single runes,
// ranges such as a-z, the escapes \d \w \s and their negations, and a leading
// ^ that negates the whole set.
type CharSet struct {
	source  string
	ranges  []runeRange
	classes []func(rune) bool
	negated bool
}

var errTrailingBackslash = errors.New("trailing backslash")

type runeRange struct {
	lo, hi rune
}

// ParseCharSet parses the body of a bracket class, without the brackets.
func ParseCharSet(body string) (CharSet, error) {
	set := CharSet{source: body}
	runes := []rune(body)
	i := 0

	if len(runes) > 0 && runes[0] == '^' {
		set.negated = true
		i++
	}

	for i < len(runes) {
		lo, class, next, err := classAtom(runes, i)
		if err != nil {
			return CharSet{}, fmt.Errorf("%w %q: %w", ErrInvalidCharSet, body, err)
		}

		if class != nil {
			set.classes = append(set.classes, class)
			i = next

			continue
		}

		if next+1 < len(runes) && runes[next] == '-' {
			hi, hiClass, after, err := classAtom(runes, next+1)
			if err != nil {
				return CharSet{}, fmt.Errorf("%w %q: %w", ErrInvalidCharSet, body, err)
			}

			if hiClass != nil {
				return CharSet{}, fmt.Errorf("%w %q: class escape cannot end a range", ErrInvalidCharSet, body)
			}

			if hi < lo {
				return CharSet{}, fmt.Errorf("%w %q: range %q-%q is reversed", ErrInvalidCharSet, body, lo, hi)
			}

			set.ranges = append(set.ranges, runeRange{lo: lo, hi: hi})
			i = after

			continue
		}

		set.ranges = append(set.ranges, runeRange{lo: lo, hi: lo})
		i = next
	}

	return set, nil
}

// MustCharSet is ParseCharSet that panics on error.
func MustCharSet(body string) CharSet {
	set, err := ParseCharSet(body)
	if err != nil {
		panic(err)
	}

	return set
}

// classAtom reads one rune or class escape starting at runes[i].
func classAtom(runes []rune, i int) (rune, func(rune) bool, int, error) {
	if runes[i] != '\\' {
		return runes[i], nil, i + 1, nil
	}

	if i+1 >= len(runes) {
		return 0, nil, 0, errTrailingBackslash
	}

	esc := runes[i+1]

	switch esc {
	case 'n':
		return '\n', nil, i + 2, nil
	case 'r':
		return '\r', nil, i + 2, nil
	case 't':
		return '\t', nil, i + 2, nil
	case 'f':
		return '\f', nil, i + 2, nil
	case 'v':
		return '\v', nil, i + 2, nil
	case '0':
		return 0, nil, i + 2, nil
	case 'd':
		return 0, isDigit, i + 2, nil
	case 'D':
		return 0, not(isDigit), i + 2, nil
	case 'w':
		return 0, isWord, i + 2, nil
	case 'W':
		return 0, not(isWord), i + 2, nil
	case 's':
		return 0, unicode.IsSpace, i + 2, nil
	case 'S':
		return 0, not(unicode.IsSpace), i + 2, nil
	default:
		return esc, nil, i + 2, nil
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isWord(r rune) bool {
	return r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func not(fn func(rune) bool) func(rune) bool {
	return func(r rune) bool { return !fn(r) }
}

// Contains reports whether r is in the set.
func (s CharSet) Contains(r rune) bool {
	return s.member(r) != s.negated
}

func (s CharSet) member(r rune) bool {
	for _, rg := range s.ranges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}

	for _, class := range s.classes {
		if class(r) {
			return true
		}
	}

	return false
}

// Negated reports whether the set was written with a leading ^.
func (s CharSet) Negated() bool {
	return s.negated
}

func (s CharSet) String() string {
	return "[" + s.source + "]"
}
