package engine

import (
	"strings"
)

// replyPrefixes are stripped repeatedly from subjects so replies and forwards
// land on the originating thread. "R:" and "I:" are the Italian client forms.
var replyPrefixes = []string{"re:", "fwd:", "fw:", "r:", "i:"}

// NormalizeAddress canonicalizes a sender address: display names are dropped
// and the address is lowercased, so "Ada <A@X.com>" and "a@x.com" collide.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if start := strings.LastIndex(addr, "<"); start >= 0 {
		if end := strings.Index(addr[start:], ">"); end > 0 {
			addr = addr[start+1 : start+end]
		}
	}
	return strings.ToLower(strings.TrimSpace(addr))
}

// NormalizeSubject lowercases a subject and strips reply/forward prefixes
func NormalizeSubject(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range replyPrefixes {
			if strings.HasPrefix(s, prefix) {
				s = strings.TrimSpace(s[len(prefix):])
				stripped = true
			}
		}
	}
	return s
}

// ThreadKey derives the deterministic thread identifier from sender and
// subject. The same exchange always maps to the same key.
func ThreadKey(sender, subject string) string {
	return slug(NormalizeAddress(sender)) + "_" + slug(NormalizeSubject(subject))
}

// slug reduces a normalized token to a stable identifier fragment
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '@', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
