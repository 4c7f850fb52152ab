// Package times implements the message-to-timestamp pipeline: extracting
// candidate time substrings from Discord markup, resolving them to wall-clock
// values, and rendering auto-localizing timestamp replies.
package times

import (
	"regexp"
	"strings"
)

var (
	// Discord inline elements: user mentions, channel mentions, and
	// custom/animated emoji. Stripped before candidate scanning so an emoji
	// is never mistaken for a time token.
	rgxDiscordElems = regexp.MustCompile(`<(@!?|#)\d{17,20}>|<a?:[A-Za-z0-9_.]{2,32}:\d{17,20}>`)
	// Anything else delimited by angle brackets, no nesting.
	rgxMarkers = regexp.MustCompile(`<[^<>][^<>]+>`)
)

// Extract returns the ordered time-expression candidates in a message body:
// every `<...>` run left after mention/emoji markup removal, delimiters
// stripped, hyperlinks discarded. Pure function over text.
func Extract(content string) []string {
	content = rgxDiscordElems.ReplaceAllString(content, "")
	markers := rgxMarkers.FindAllString(content, -1)
	var out []string
	for _, m := range markers {
		candidate := m[1 : len(m)-1]
		if strings.HasPrefix(candidate, "http") {
			continue
		}
		out = append(out, candidate)
	}
	return out
}
