// Package engine computes degree-requirement satisfaction for a plan
// against a program's requirement set. It is a pure, synchronous
// computation over an immutable Snapshot: no I/O, no shared mutable
// state, safe for concurrent invocation across plans.
package engine

import (
	"strings"
	"unicode"
)

// ParsedCode is the structured form of a free-text course code.
type ParsedCode struct {
	Subject string
	Number  int
	// Level is the course number truncated to its thousands digit
	// (2413 -> 2000). Zero when the code carries no number.
	Level int
}

// ParseCourseCode derives subject and numeric level from a catalog code.
// The convention is fragile, so every edge case lives here:
//
//   - "MATH 2413" and "MATH2413" both parse to subject MATH, number 2413.
//   - Lab suffixes ("CHEM 1111L") and other trailing letters are dropped
//     from the number but keep the digits.
//   - Cross-listed codes ("MATH/CS 4320") take the first subject.
//   - Codes without digits parse with Number and Level zero.
func ParseCourseCode(code string) ParsedCode {
	code = strings.TrimSpace(code)
	var subject strings.Builder
	i := 0
	for i < len(code) {
		ch := rune(code[i])
		if unicode.IsDigit(ch) {
			break
		}
		if ch == '/' || ch == '-' {
			// cross-listing separator ends the first subject
			for i < len(code) && !unicode.IsDigit(rune(code[i])) && code[i] != ' ' {
				i++
			}
			break
		}
		if !unicode.IsSpace(ch) {
			subject.WriteRune(unicode.ToUpper(ch))
		}
		i++
	}

	number := 0
	sawDigit := false
	for ; i < len(code); i++ {
		ch := rune(code[i])
		if unicode.IsDigit(ch) {
			number = number*10 + int(ch-'0')
			sawDigit = true
			continue
		}
		if sawDigit {
			// trailing letters (lab suffix) or a second listing end the number
			break
		}
	}
	if !sawDigit {
		number = 0
	}

	return ParsedCode{
		Subject: subject.String(),
		Number:  number,
		Level:   number / 1000 * 1000,
	}
}

// SubjectCode returns just the subject prefix of a course code.
func SubjectCode(code string) string {
	return ParseCourseCode(code).Subject
}

// CourseLevel returns just the numeric level of a course code.
func CourseLevel(code string) int {
	return ParseCourseCode(code).Level
}
