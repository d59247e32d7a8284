package profile

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone validates a phone number and returns its canonical form.
// Numbers with a country prefix are validated and formatted as E.164;
// bare national numbers are accepted as 10 to 15 digits and kept as-is.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", ErrInvalidPhone
	}

	if strings.HasPrefix(phone, "+") {
		parsed, err := phonenumbers.Parse(phone, "")
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return "", ErrInvalidPhone
		}
		return phonenumbers.Format(parsed, phonenumbers.E164), nil
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if len(digits) != len(phone) || len(digits) < 10 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}

	return digits, nil
}
