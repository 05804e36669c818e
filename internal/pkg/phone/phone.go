package phone

import "regexp"

// Icelandic mobile numbers in E.164: +354 followed by seven digits.
var icelandic = regexp.MustCompile(`^(\+354)(\d{3})(\d{4})$`)

// Format renders a number for display: +3546478001 -> +354 647 8001.
// Non-Icelandic numbers pass through unchanged.
func Format(number string) string {
	if number == "" {
		return ""
	}
	if m := icelandic.FindStringSubmatch(number); m != nil {
		return m[1] + " " + m[2] + " " + m[3]
	}
	return number
}

// Mask hides the middle digits: +3546478001 -> +354 *** 8001.
// Used wherever the API tells a shopper which number a code went to.
func Mask(number string) string {
	if number == "" {
		return ""
	}
	if m := icelandic.FindStringSubmatch(number); m != nil {
		return m[1] + " *** " + m[3]
	}
	return number
}
