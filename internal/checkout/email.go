package checkout

import "strings"

// ValidEmail applies the conservative email-shape rule used by the checkout
// form: exactly one '@', non-empty local and domain parts, no leading,
// trailing or consecutive dots on either side, and a dotted domain. It is
// deliberately stricter than RFC 5322; a payment receipt address that fails
// this rule is worth rejecting up front.
func ValidEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || at != strings.LastIndexByte(s, '@') {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if !validEmailPart(local, "!#$%&'*+-/=?^_`{|}~.") {
		return false
	}
	if !validEmailPart(domain, "-.") {
		return false
	}
	return strings.Contains(domain, ".")
}

func validEmailPart(part, extra string) bool {
	if part == "" {
		return false
	}
	if part[0] == '.' || part[len(part)-1] == '.' || strings.Contains(part, "..") {
		return false
	}
	for i := 0; i < len(part); i++ {
		c := part[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case strings.IndexByte(extra, c) >= 0:
		default:
			return false
		}
	}
	return true
}
