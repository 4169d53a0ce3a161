// Package slot validates and canonicalises phone-slot labels.
//
// A slot label is one rack letter A-H followed by a position number 1-36,
// e.g. "F18". Input may arrive mixed-case and with whitespace between the
// letter and the number; anything outside the grammar is rejected outright.
package slot

import (
	"strconv"
	"strings"
	"unicode"

	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
)

const (
	minLetter = 'A'
	maxLetter = 'H'
	minNumber = 1
	maxNumber = 36
)

// Normalize returns the canonical uppercase no-space form of a slot label.
// Normalisation is idempotent: a canonical label passes through unchanged.
func Normalize(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) < 2 {
		return "", appErrors.ErrInvalidSlot
	}

	letter := rune(s[0])
	if letter < minLetter || letter > maxLetter {
		return "", appErrors.ErrInvalidSlot
	}

	digits := strings.TrimLeftFunc(s[1:], unicode.IsSpace)
	if digits == "" {
		return "", appErrors.ErrInvalidSlot
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return "", appErrors.ErrInvalidSlot
		}
	}
	if len(digits) > 1 && digits[0] == '0' {
		return "", appErrors.ErrInvalidSlot
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < minNumber || n > maxNumber {
		return "", appErrors.ErrInvalidSlot
	}

	return string(letter) + strconv.Itoa(n), nil
}

// Valid reports whether the label normalises successfully.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// All enumerates every canonical slot label in rack/position order.
func All() []string {
	out := make([]string, 0, (maxLetter-minLetter+1)*maxNumber)
	for letter := minLetter; letter <= maxLetter; letter++ {
		for n := minNumber; n <= maxNumber; n++ {
			out = append(out, string(letter)+strconv.Itoa(n))
		}
	}
	return out
}
