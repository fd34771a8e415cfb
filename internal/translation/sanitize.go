package translation

import "strings"

const fence = "```"

// Sanitize strips the decoration a model tends to add around a document:
// surrounding whitespace and a Markdown code fence (with or without a
// language tag). Applying it to clean content is a no-op.
func Sanitize(s string) string {
	for {
		next := stripFence(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, fence) {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			// Drop the whole opening line, including any language tag
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, fence)
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)

	return strings.TrimSpace(s)
}
