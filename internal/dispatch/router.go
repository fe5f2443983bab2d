package dispatch

import (
	"context"
	"time"

	"github.com/Zachkp/portfolio-contact/internal/contacturi"
	"github.com/Zachkp/portfolio-contact/internal/envclass"
	"github.com/Zachkp/portfolio-contact/internal/metrics"
	"github.com/Zachkp/portfolio-contact/pkg/logging"
)

// Strategy names how an intent was handed off.
type Strategy string

const (
	// NativeCurrent navigates the current context to a native scheme so the
	// OS can offer its app chooser. Used on mobile.
	NativeCurrent Strategy = "native-current"
	// WebmailNew opens the webmail compose view in a new context. Used in
	// embedded webviews, which cannot resolve mailto:.
	WebmailNew Strategy = "webmail-new"
	// NativeNew opens a native scheme in a new context and falls back to the
	// current one if that is blocked. Used on desktop.
	NativeNew Strategy = "native-new"
	// WebLinkNew opens a web link in a new context.
	WebLinkNew Strategy = "weblink-new"
)

// Step is the planned host call for an intent.
type Step struct {
	Strategy Strategy
	URI      string
	// Fallback allows one same-context navigation to URI when the new
	// context cannot be opened.
	Fallback bool
}

// NewContext reports whether the step opens a new browsing context.
func (s Step) NewContext() bool {
	return s.Strategy != NativeCurrent
}

// Plan picks the strategy for an intent. Rules apply in order: mobile,
// webview email, WhatsApp, then desktop native schemes.
func Plan(intent Intent, env envclass.Profile) Step {
	if env.Mobile {
		if intent.Channel == WhatsApp {
			// wa.me already resolves app-vs-web on the device.
			return whatsAppStep(intent)
		}
		return Step{Strategy: NativeCurrent, URI: nativeURI(intent, env)}
	}

	if env.WebView && intent.Channel == Email {
		return Step{
			Strategy: WebmailNew,
			URI:      contacturi.WebmailComposeURI(intent.Recipient, intent.Subject, intent.Body),
		}
	}

	if intent.Channel == WhatsApp {
		return whatsAppStep(intent)
	}

	return Step{Strategy: NativeNew, URI: nativeURI(intent, env), Fallback: true}
}

func whatsAppStep(intent Intent) Step {
	return Step{
		Strategy: WebLinkNew,
		URI:      contacturi.WhatsAppURI(intent.Recipient, intent.Body),
	}
}

func nativeURI(intent Intent, env envclass.Profile) string {
	if intent.Channel == SMS {
		return contacturi.SMSURI(intent.Recipient, intent.Body, env.Apple)
	}
	return contacturi.EmailURI(intent.Recipient, intent.Subject, intent.Body)
}

// Handoff describes a completed dispatch. It never carries message content.
type Handoff struct {
	Channel     Channel
	Strategy    Strategy
	URI         string
	Environment string
	// FallbackAllowed is set when a blocked open may navigate in place.
	FallbackAllowed bool
	FellBack        bool
	At              time.Time
}

// Dispatch plans the intent and performs the host call. It does not fail:
// a blocked new context degrades to one same-context navigation to the
// identical URI, and nothing else is retried.
func Dispatch(ctx context.Context, intent Intent, env envclass.Profile, host Host) Handoff {
	step := Plan(intent, env)
	h := Handoff{
		Channel:         intent.Channel,
		Strategy:        step.Strategy,
		URI:             step.URI,
		Environment:     env.Kind(),
		FallbackAllowed: step.Fallback,
		At:              time.Now().UTC(),
	}

	if !step.NewContext() {
		host.Navigate(ctx, step.URI)
		return h
	}

	if err := host.OpenNew(ctx, step.URI); err != nil && step.Fallback {
		host.Navigate(ctx, step.URI)
		h.FellBack = true
	}
	return h
}

// Recorder keeps a log of handoffs.
type Recorder interface {
	RecordHandoff(ctx context.Context, h Handoff) error
}

// Router is Dispatch with logging, metrics and an optional handoff log.
type Router struct {
	logger   *logging.Logger
	metrics  *metrics.ContactMetrics
	recorder Recorder
}

func NewRouter(logger *logging.Logger, m *metrics.ContactMetrics, rec Recorder) *Router {
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{logger: logger, metrics: m, recorder: rec}
}

func (r *Router) Dispatch(ctx context.Context, intent Intent, env envclass.Profile, host Host) Handoff {
	h := Dispatch(ctx, intent, env, host)

	r.logger.Info("contact handoff",
		"channel", h.Channel.String(),
		"strategy", string(h.Strategy),
		"environment", h.Environment,
		"fell_back", h.FellBack,
	)
	r.metrics.ObserveHandoff(h.Channel.String(), string(h.Strategy), h.Environment, h.FellBack)

	if r.recorder != nil {
		if err := r.recorder.RecordHandoff(ctx, h); err != nil {
			r.logger.Warn("failed to record handoff", "error", err)
		}
	}
	return h
}
