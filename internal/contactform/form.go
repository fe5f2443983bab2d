package contactform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/internal/envclass"
	"github.com/Zachkp/portfolio-contact/internal/site"
)

// ErrBusy is returned when a submission is already in flight.
var ErrBusy = errors.New("contactform: submission already in progress")

// State is the form's submit lifecycle state.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	DefaultSubmitDelay   = 1500 * time.Millisecond
	DefaultSuccessWindow = 4 * time.Second
)

// Sender hands validated fields off. It has no result: dispatch is
// fire-and-forget.
type Sender func(ctx context.Context, f Fields)

// Form holds one contact form instance.
type Form struct {
	mu     sync.Mutex
	fields Fields
	errs   Errors
	state  State
	revert Timer

	clock         Clock
	submitDelay   time.Duration
	successWindow time.Duration
	onChange      func(State)
}

type Option func(*Form)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(f *Form) { f.clock = c }
}

// WithTimings sets how long Submitting is held after dispatch and how long
// Succeeded is shown before reverting to Idle.
func WithTimings(submitDelay, successWindow time.Duration) Option {
	return func(f *Form) {
		f.submitDelay = submitDelay
		f.successWindow = successWindow
	}
}

// OnStateChange registers a callback run after every transition.
func OnStateChange(fn func(State)) Option {
	return func(f *Form) { f.onChange = fn }
}

func NewForm(opts ...Option) *Form {
	f := &Form{
		errs:          Errors{},
		clock:         realClock{},
		submitDelay:   DefaultSubmitDelay,
		successWindow: DefaultSuccessWindow,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Set updates one field and clears any error shown for it.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldName:
		f.fields.Name = value
	case FieldEmail:
		f.fields.Email = value
	case FieldMessage:
		f.fields.Message = value
	default:
		return fmt.Errorf("contactform: unknown field %q", field)
	}
	delete(f.errs, field)
	return nil
}

// Fill sets every field at once.
func (f *Form) Fill(fields Fields) {
	_ = f.Set(FieldName, fields.Name)
	_ = f.Set(FieldEmail, fields.Email)
	_ = f.Set(FieldMessage, fields.Message)
}

func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(Errors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates the form. Invalid input returns the field errors and
// leaves the form Idle. Valid input moves to Submitting, calls send, holds
// for the submit delay, then moves to Succeeded with the fields cleared.
// Succeeded reverts to Idle on its own after the success window.
//
// A cancelled ctx only cuts the delay short; the form still succeeds since
// send has already run.
func (f *Form) Submit(ctx context.Context, send Sender) (Errors, error) {
	return f.submit(ctx, nil, send)
}

// SubmitFields replaces the form's fields and submits them in one step, so
// a request arriving while another is Submitting gets ErrBusy without
// touching the in-flight input.
func (f *Form) SubmitFields(ctx context.Context, fields Fields, send Sender) (Errors, error) {
	return f.submit(ctx, &fields, send)
}

func (f *Form) submit(ctx context.Context, fill *Fields, send Sender) (Errors, error) {
	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	if fill != nil {
		f.fields = *fill
	}
	errs := Validate(f.fields)
	f.errs = errs
	if len(errs) > 0 {
		f.mu.Unlock()
		out := make(Errors, len(errs))
		for k, v := range errs {
			out[k] = v
		}
		return out, nil
	}
	if f.revert != nil {
		f.revert.Stop()
		f.revert = nil
	}
	f.state = Submitting
	fields := f.fields
	f.mu.Unlock()
	f.notify(Submitting)

	send(ctx, fields)

	select {
	case <-f.clock.After(f.submitDelay):
	case <-ctx.Done():
	}

	f.mu.Lock()
	f.state = Succeeded
	f.fields = Fields{}
	f.errs = Errors{}
	f.revert = f.clock.AfterFunc(f.successWindow, f.expireSuccess)
	f.mu.Unlock()
	f.notify(Succeeded)

	return nil, nil
}

func (f *Form) expireSuccess() {
	f.mu.Lock()
	if f.state != Succeeded {
		f.mu.Unlock()
		return
	}
	f.state = Idle
	f.revert = nil
	f.mu.Unlock()
	f.notify(Idle)
}

func (f *Form) notify(s State) {
	if f.onChange != nil {
		f.onChange(s)
	}
}

// Intent builds the handoff for a submitted form: a text message to the
// owner on mobile devices, an email everywhere else.
func Intent(fields Fields, env envclass.Profile, owner site.Profile) dispatch.Intent {
	body := fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s",
		strings.TrimSpace(fields.Name), strings.TrimSpace(fields.Email), fields.Message)

	if env.Mobile {
		return dispatch.NewIntent(dispatch.SMS, owner.SMSNumber, "", body)
	}
	return dispatch.NewIntent(dispatch.Email, owner.Email, owner.FormSubject, body)
}
