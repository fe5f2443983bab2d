package web

import (
	"sync"
	"time"

	"github.com/Zachkp/portfolio-contact/internal/contactform"
)

// formRegistry keeps one contact form per visitor, so Submitting and
// Succeeded carry over between requests and a second submit while the
// first is in flight gets ErrBusy.
type formRegistry struct {
	mu        sync.Mutex
	forms     map[string]*visitorForm
	newForm   func() *contactform.Form
	idleAfter time.Duration
	lastSweep time.Time
}

type visitorForm struct {
	form     *contactform.Form
	lastSeen time.Time
}

func newFormRegistry(newForm func() *contactform.Form) *formRegistry {
	return &formRegistry{
		forms:     make(map[string]*visitorForm),
		newForm:   newForm,
		idleAfter: 10 * time.Minute,
		lastSweep: time.Now(),
	}
}

// get returns the form for key, creating it on first use.
func (r *formRegistry) get(key string) *contactform.Form {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.sweep(now)

	v, ok := r.forms[key]
	if !ok {
		v = &visitorForm{form: r.newForm()}
		r.forms[key] = v
	}
	v.lastSeen = now
	return v.form
}

// sweep drops forms idle for longer than idleAfter, never one that is
// still Submitting. Runs under r.mu.
func (r *formRegistry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.idleAfter {
		return
	}
	r.lastSweep = now
	for key, v := range r.forms {
		if now.Sub(v.lastSeen) > r.idleAfter && v.form.State() != contactform.Submitting {
			delete(r.forms, key)
		}
	}
}

func (r *formRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}
