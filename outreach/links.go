package outreach

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// MaxLinkBodyChars is the longest body placed in a compose link.
	MaxLinkBodyChars = 1800

	// TrimmedSuffix marks a body cut to fit in a link.
	TrimmedSuffix = "\n\n[Trimmed for URL]"
)

// Subject returns the email subject used for student outreach.
func Subject(studentName string) string {
	return "Inquiry from " + strings.TrimSpace(studentName)
}

// LinkBody cuts body to MaxLinkBodyChars characters when it reaches that length.
func LinkBody(body string) string {
	if utf8.RuneCountInString(body) < MaxLinkBodyChars {
		return body
	}
	return string([]rune(body)[:MaxLinkBodyChars]) + TrimmedSuffix
}

// MailtoLink returns a mailto: URL that opens a prefilled draft.
func MailtoLink(to, studentName, body string) string {
	return "mailto:" + strings.TrimSpace(to) +
		"?subject=" + escape(Subject(studentName)) +
		"&body=" + escape(LinkBody(body))
}

// GmailLink returns a Gmail compose URL with the same draft.
func GmailLink(to, studentName, body string) string {
	return "https://mail.google.com/mail/?view=cm&fs=1" +
		"&to=" + escape(strings.TrimSpace(to)) +
		"&su=" + escape(Subject(studentName)) +
		"&body=" + escape(LinkBody(body))
}

// escape percent-encodes s for a query value, using %20 for spaces so mail
// clients do not show literal plus signs.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
