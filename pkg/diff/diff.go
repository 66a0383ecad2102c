// Package diff compares program output with the expected answer and
// returns error information if they are different.
//
// Only white spaces at the beginning and the end of the whole text are
// ignored. Anything in between, including spaces inside lines, must match.
package diff

import (
	"fmt"
	"strings"
)

// Normalize removes leading and trailing white spaces of the whole text
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// Equal reports whether actual matches expected after normalization
func Equal(expected, actual string) bool {
	return Normalize(expected) == Normalize(actual)
}

// Compare compares actual with expected.
// If they are the same after normalization, no error is returned,
// otherwise the error describes the first line that differs.
func Compare(expected, actual string) error {
	exp, act := Normalize(expected), Normalize(actual)
	if exp == act {
		return nil
	}

	expLines := strings.Split(exp, "\n")
	actLines := strings.Split(act, "\n")
	for i := 0; i < len(expLines) || i < len(actLines); i++ {
		e, hasExp := line(expLines, i)
		a, hasAct := line(actLines, i)
		switch {
		case !hasAct:
			return fmt.Errorf("at line %d,\nexpected: %v\nactual: <EOF>", i+1, e)
		case !hasExp:
			return fmt.Errorf("actual have more content at line %d: %v", i+1, a)
		case e != a:
			return newErr(i+1, e, a)
		}
	}
	// unreachable, equal lines mean equal texts
	return newErr(1, exp, act)
}

func newErr(line int, exp, act string) error {
	return fmt.Errorf("at line %d,\nexpected: %q\nactual: %q", line, exp, act)
}

func line(lines []string, i int) (string, bool) {
	if i < len(lines) {
		return lines[i], true
	}
	return "", false
}
