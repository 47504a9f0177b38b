package util

import (
	"net/mail"
	"strings"
)

// BareAddress extracts the plain e-mail address from a From header value
// such as "Acme Sales <sales@acme.example>". Falls back to a lowercase
// trim of the input when the header does not parse.
func BareAddress(from string) string {
	addr, err := mail.ParseAddress(from)
	if err == nil {
		return strings.ToLower(strings.TrimSpace(addr.Address))
	}

	cleaned := strings.TrimSpace(from)
	if start := strings.LastIndex(cleaned, "<"); start >= 0 {
		if end := strings.Index(cleaned[start:], ">"); end > 0 {
			cleaned = cleaned[start+1 : start+end]
		}
	}
	return strings.ToLower(strings.TrimSpace(cleaned))
}
