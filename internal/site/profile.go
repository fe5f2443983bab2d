// Package site holds the portfolio owner's contact details and the fixed
// messages behind the "start a project" and "schedule a call" shortcuts.
package site

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio-contact/internal/contacturi"
	"github.com/Zachkp/portfolio-contact/internal/dispatch"
)

// NamePlaceholder in a template body is replaced with the owner's first name.
const NamePlaceholder = "{name}"

// Template is a canned message.
type Template struct {
	Subject string `yaml:"subject" json:"subject,omitempty"`
	Body    string `yaml:"body" json:"body"`
}

// Link is a social or external profile link.
type Link struct {
	Name        string `yaml:"name" json:"name"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Card is one entry of the "Let's connect" list.
type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Link  string `json:"link"`
}

// Profile is the site owner's public contact information.
type Profile struct {
	OwnerName      string `yaml:"owner_name"`
	Tagline        string `yaml:"tagline"`
	About          string `yaml:"about"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	SMSNumber      string `yaml:"sms_number"`
	WhatsAppNumber string `yaml:"whatsapp_number"`
	Location       string `yaml:"location"`
	LocationURL    string `yaml:"location_url"`
	ResumeURL      string `yaml:"resume_url"`
	Socials        []Link `yaml:"socials"`

	FormSubject  string   `yaml:"form_subject"`
	StartProject Template `yaml:"start_project"`
	ScheduleCall Template `yaml:"schedule_call"`
}

// Load reads a YAML profile from path on top of Default. An empty path
// returns Default unchanged.
func Load(path string) (Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read site profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse site profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("site profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the fields every handoff depends on.
func (p Profile) Validate() error {
	var errs []error
	if !strings.Contains(p.Email, "@") {
		errs = append(errs, fmt.Errorf("email %q is not an address", p.Email))
	}
	if len(contacturi.Digits(p.SMSNumber)) < 7 {
		errs = append(errs, fmt.Errorf("sms_number %q needs at least 7 digits", p.SMSNumber))
	}
	if len(contacturi.Digits(p.WhatsAppNumber)) < 7 {
		errs = append(errs, fmt.Errorf("whatsapp_number %q needs at least 7 digits", p.WhatsAppNumber))
	}
	if p.ResumeURL != "" && !isWebURL(p.ResumeURL) {
		errs = append(errs, fmt.Errorf("resume_url %q must be an absolute http(s) URL", p.ResumeURL))
	}
	if p.LocationURL != "" && !isWebURL(p.LocationURL) {
		errs = append(errs, fmt.Errorf("location_url %q must be an absolute http(s) URL", p.LocationURL))
	}
	return errors.Join(errs...)
}

// isWebURL reports an absolute http or https URL. Card links are rendered
// as trusted URLs, so nothing else may get through.
func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// FirstName is the first word of OwnerName.
func (p Profile) FirstName() string {
	if fields := strings.Fields(p.OwnerName); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

func (p Profile) fill(body string) string {
	return strings.ReplaceAll(body, NamePlaceholder, p.FirstName())
}

// StartProjectIntent is the fixed quotation request email.
func (p Profile) StartProjectIntent() dispatch.Intent {
	return dispatch.NewIntent(dispatch.Email, p.Email, p.StartProject.Subject, p.fill(p.StartProject.Body))
}

// ScheduleCallIntent is the fixed WhatsApp call request.
func (p Profile) ScheduleCallIntent() dispatch.Intent {
	return dispatch.NewIntent(dispatch.WhatsApp, p.WhatsAppNumber, "", p.fill(p.ScheduleCall.Body))
}

// ContactCards lists email, phone and location with their links.
func (p Profile) ContactCards() []Card {
	cards := []Card{
		{Title: "Email", Value: p.Email, Link: contacturi.MailtoURI(p.Email)},
	}
	if p.Phone != "" {
		cards = append(cards, Card{Title: "Phone", Value: p.Phone, Link: contacturi.TelURI(p.Phone)})
	}
	if p.Location != "" {
		cards = append(cards, Card{Title: "Location", Value: p.Location, Link: p.LocationURL})
	}
	return cards
}
