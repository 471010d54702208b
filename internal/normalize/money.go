package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var moneyNumberRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParseMoney converts an upstream money value into a dollar figure.
// Numbers pass through; strings are stripped of "$" and "," and a
// case-insensitive K or M suffix multiplies by a thousand or a million.
// Anything unparseable returns nil, never 0: zero dollars and
// "unspecified" are different facts.
func ParseMoney(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		return parseMoneyString(t)
	default:
		return nil
	}
}

func parseMoneyString(s string) *float64 {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, "$", ""), ",", "")
	match := moneyNumberRe.FindString(cleaned)
	if match == "" {
		return nil
	}

	num, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}

	lower := strings.ToLower(cleaned)
	switch {
	case strings.Contains(lower, "k"):
		num *= 1_000
	case strings.Contains(lower, "m"):
		num *= 1_000_000
	}

	return &num
}
