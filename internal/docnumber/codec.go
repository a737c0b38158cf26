package docnumber

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDigits is returned by Format when the user-entered part of a
// document number is not exactly four ASCII digits.
var ErrInvalidDigits = errors.New("document number must be exactly 4 digits")

// Format builds the full protocol number for a document:
// prefix + 4 digits + "/" + 2-digit year.
func Format(prefix, userDigits string, year int) (string, error) {
	if !isFourDigits(userDigits) {
		return "", ErrInvalidDigits
	}
	return fmt.Sprintf("%s%s/%02d", prefix, userDigits, year%100), nil
}

// ExtractUserDigits pulls the user-editable digits out of a stored full
// number. The read path is deliberately lenient: it tolerates a missing
// prefix, a missing year suffix, and digit strings of the wrong length, so
// that numbers entered before the current convention still display and can
// be corrected by the operator. Validation happens only on the write path,
// in Format. A blank input returns ok=false.
func ExtractUserDigits(fullNumber, prefix string) (digits string, ok bool) {
	s := strings.TrimSpace(fullNumber)
	if s == "" {
		return "", false
	}
	s = strings.TrimPrefix(s, prefix)
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s), true
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
