package dispatch

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned by Host.OpenNew when no new browsing context
// could be opened, typically because of a pop-up blocker.
var ErrUnavailable = errors.New("dispatch: new browsing context unavailable")

// Host is whatever can open URIs for the visitor: a browser page, an HTTP
// response, a desktop opener.
type Host interface {
	// OpenNew opens uri in a new browsing context. It returns
	// ErrUnavailable when that is not possible.
	OpenNew(ctx context.Context, uri string) error
	// Navigate sends the current browsing context to uri.
	Navigate(ctx context.Context, uri string)
}

// CallKind identifies a host call.
type CallKind string

const (
	CallOpenNew  CallKind = "open-new"
	CallNavigate CallKind = "navigate"
)

// Call is one recorded host call.
type Call struct {
	Kind CallKind `json:"kind"`
	URI  string   `json:"uri"`
}

// RecordingHost records calls instead of performing them. With BlockOpen set
// every OpenNew fails with ErrUnavailable.
type RecordingHost struct {
	BlockOpen bool

	mu    sync.Mutex
	calls []Call
}

func (h *RecordingHost) OpenNew(_ context.Context, uri string) error {
	h.record(Call{Kind: CallOpenNew, URI: uri})
	if h.BlockOpen {
		return ErrUnavailable
	}
	return nil
}

func (h *RecordingHost) Navigate(_ context.Context, uri string) {
	h.record(Call{Kind: CallNavigate, URI: uri})
}

// Calls returns a copy of the recorded calls in order.
func (h *RecordingHost) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

func (h *RecordingHost) record(c Call) {
	h.mu.Lock()
	h.calls = append(h.calls, c)
	h.mu.Unlock()
}
