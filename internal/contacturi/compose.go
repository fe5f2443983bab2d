// Package contacturi builds the URIs that hand a message to an external
// channel: mail clients, SMS composers, WhatsApp and webmail.
package contacturi

import (
	"net/url"
	"strings"
)

const (
	// WebmailComposeBase is the webmail compose view. Compose parameters go
	// in the fragment after it; the query string is ignored by the service.
	WebmailComposeBase = "https://mail.google.com/mail/u/0/#inbox?compose=new"
	whatsAppBase       = "https://wa.me/"
)

// unreserved undoes url.QueryEscape where it is stricter than
// encodeURIComponent, so !'()* stay literal. Spaces become %20, never '+',
// since mail and SMS handlers do not decode '+'.
var unreserved = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s for use inside a URI component, with
// the same output as encodeURIComponent.
func EncodeComponent(s string) string {
	return unreserved.Replace(url.QueryEscape(s))
}

// encodeAddress is EncodeComponent with '@' left literal, which mailto
// paths allow.
func encodeAddress(addr string) string {
	return strings.ReplaceAll(EncodeComponent(strings.TrimSpace(addr)), "%40", "@")
}

// MailtoURI returns a bare mailto: link for address.
func MailtoURI(address string) string {
	return "mailto:" + encodeAddress(address)
}

// EmailURI returns mailto:<address>?subject=..&body=..
func EmailURI(address, subject, body string) string {
	return "mailto:" + encodeAddress(address) +
		"?subject=" + EncodeComponent(subject) +
		"&body=" + EncodeComponent(body)
}

// SMSURI returns an sms: URI. Apple devices expect the body after '&',
// everyone else after '?'.
func SMSURI(number, body string, apple bool) string {
	joiner := "?"
	if apple {
		joiner = "&"
	}
	return "sms:" + smsNumber(number) + joiner + "body=" + EncodeComponent(body)
}

// smsNumber reduces number to its digits, keeping a leading '+'.
func smsNumber(number string) string {
	if strings.HasPrefix(strings.TrimSpace(number), "+") {
		return "+" + Digits(number)
	}
	return Digits(number)
}

// WhatsAppURI returns a wa.me link. The number is reduced to its digits,
// so "+91 63887 94311" and "916388794311" give the same link.
func WhatsAppURI(number, text string) string {
	return whatsAppBase + Digits(number) + "?text=" + EncodeComponent(text)
}

// WebmailComposeURI returns the webmail compose link with to, su and body
// appended to the fragment.
func WebmailComposeURI(address, subject, body string) string {
	params := []string{
		"to=" + EncodeComponent(strings.TrimSpace(address)),
		"su=" + EncodeComponent(subject),
		"body=" + EncodeComponent(body),
	}
	return WebmailComposeBase + "&" + strings.Join(params, "&")
}

// TelURI returns tel:+<digits> for a phone number in international form.
func TelURI(number string) string {
	return "tel:+" + Digits(number)
}

// Digits strips everything but ASCII digits from a phone number.
func Digits(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
