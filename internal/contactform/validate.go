// Package contactform validates the contact form and runs its submit
// lifecycle: Idle, Submitting, Succeeded, then back to Idle.
package contactform

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field names as they appear in the HTML form.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// MinMessageLength is the shortest accepted message, in characters.
const MinMessageLength = 10

// Loose on purpose: something@something.something, no RFC parsing.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Fields are the user-entered values.
type Fields struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Errors maps a field name to its error message. Empty means valid.
type Errors map[string]string

// Validate checks every field and reports all failures together.
func Validate(f Fields) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Name is required"
	}

	if strings.TrimSpace(f.Email) == "" {
		errs[FieldEmail] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		errs[FieldEmail] = "Email is invalid"
	}

	if strings.TrimSpace(f.Message) == "" {
		errs[FieldMessage] = "Message is required"
	} else if utf8.RuneCountInString(f.Message) < MinMessageLength {
		errs[FieldMessage] = "Message must be at least 10 characters"
	}

	return errs
}
