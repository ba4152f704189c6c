package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var defaultRegions = []string{
	"US",
	"GB",
}

// NormalizePhone formats a recognizable number as E.164. Numbers that no
// supported region can parse are returned trimmed, so the loose format check
// in the validator stays the final arbiter.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range defaultRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}
