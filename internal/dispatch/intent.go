// Package dispatch routes a contact intent to the channel a visitor's
// browser can actually open, and hands the resulting URI to a Host.
package dispatch

import (
	"fmt"
	"strings"
)

// Channel is the external communication channel an intent targets.
type Channel int

const (
	Email Channel = iota
	SMS
	WhatsApp
)

func (c Channel) String() string {
	switch c {
	case Email:
		return "email"
	case SMS:
		return "sms"
	case WhatsApp:
		return "whatsapp"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ParseChannel accepts the names String returns.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email", "mail":
		return Email, nil
	case "sms", "text":
		return SMS, nil
	case "whatsapp", "wa":
		return WhatsApp, nil
	default:
		return 0, fmt.Errorf("unknown channel %q", s)
	}
}

// Intent describes one message to hand off. It is built fresh for every
// user action and passed by value.
type Intent struct {
	Channel Channel
	// Recipient is an email address for Email, a phone number otherwise.
	Recipient string
	// Subject is only used by Email.
	Subject string
	Body    string
}

func NewIntent(ch Channel, recipient, subject, body string) Intent {
	return Intent{Channel: ch, Recipient: recipient, Subject: subject, Body: body}
}
