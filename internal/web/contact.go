package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio-contact/internal/contactform"
	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/internal/envclass"
	"github.com/Zachkp/portfolio-contact/internal/handoff"
)

const successMessage = "Thank you! Your message has been sent successfully. I'll get back to you soon."

type cardView struct {
	Title string
	Value string
	Link  template.URL
}

func (s *Server) handleIndex(c *gin.Context) {
	cards := s.owner.ContactCards()
	views := make([]cardView, 0, len(cards))
	for _, card := range cards {
		// tel: links would otherwise be rewritten by html/template.
		views = append(views, cardView{Title: card.Title, Value: card.Value, Link: template.URL(card.Link)})
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"owner": s.owner,
		"cards": views,
	})
}

// HTMX contact form fragment
func (s *Server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title":  "Send Message",
		"fields": contactform.Fields{},
		"errors": contactform.Errors{},
	})
}

func (s *Server) handlePrivacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":         "Privacy Policy",
		"owner":         s.owner.OwnerName,
		"retentionDays": int(s.cfg.VisitRetention.Hours() / 24),
	})
}

// The resume link is forwarded verbatim; the page opens it in a new tab.
func (s *Server) handleResume(c *gin.Context) {
	if s.owner.ResumeURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume not available"})
		return
	}
	c.Redirect(http.StatusFound, s.owner.ResumeURL)
}

func (s *Server) handleContactInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    s.owner.OwnerName,
		"cards":   s.owner.ContactCards(),
		"socials": s.owner.Socials,
		"resume":  s.owner.ResumeURL,
	})
}

func (s *Server) handleClassify(c *gin.Context) {
	sig := envclass.FromRequest(c.Request)
	rule, _ := envclass.MatchWebView(sig)
	c.JSON(http.StatusOK, gin.H{
		"profile":      envclass.Classify(sig),
		"kind":         envclass.Classify(sig).Kind(),
		"webview_rule": rule,
	})
}

// dispatchContext carries the hashed client address down to the handoff log.
func (s *Server) dispatchContext(c *gin.Context) context.Context {
	return handoff.WithClient(c.Request.Context(), s.hashIP(c.ClientIP()))
}

func (s *Server) handleStartProject(c *gin.Context) {
	s.dispatchFixed(c, s.owner.StartProjectIntent())
}

func (s *Server) handleScheduleCall(c *gin.Context) {
	s.dispatchFixed(c, s.owner.ScheduleCallIntent())
}

// dispatchFixed hands off one of the hard-coded shortcut intents. These
// skip validation: their content never comes from the visitor.
func (s *Server) dispatchFixed(c *gin.Context, intent dispatch.Intent) {
	env := envclass.Classify(envclass.FromRequest(c.Request))
	host := newHTTPHost(c)
	h := s.router.Dispatch(s.dispatchContext(c), intent, env, host)
	s.writeHandoff(c, host, h, env, "", nil)
}

func (s *Server) handleContactSubmit(c *gin.Context) {
	var fields contactform.Fields
	if err := c.ShouldBind(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form submission"})
		return
	}

	env := envclass.Classify(envclass.FromRequest(c.Request))
	host := newHTTPHost(c)
	form := s.forms.get(s.visitorKey(c))

	var h dispatch.Handoff
	errs, err := form.SubmitFields(s.dispatchContext(c), fields, func(ctx context.Context, f contactform.Fields) {
		h = s.router.Dispatch(ctx, contactform.Intent(f, env, s.owner), env, host)
	})
	if errors.Is(err, contactform.ErrBusy) {
		s.metrics.ObserveSubmission("busy")
		c.JSON(http.StatusConflict, gin.H{"error": "a message is already being sent"})
		return
	}

	if len(errs) > 0 {
		s.metrics.ObserveSubmission("rejected")
		for field := range errs {
			s.metrics.ObserveValidationFailure(field)
		}
		s.writeValidationErrors(c, fields, errs)
		return
	}

	s.metrics.ObserveSubmission("accepted")
	s.writeHandoff(c, host, h, env, "contact.html", gin.H{
		"title":        "Send Message",
		"success":      successMessage,
		"dismissAfter": s.cfg.SuccessWindow.Milliseconds(),
		"fields":       contactform.Fields{},
		"errors":       contactform.Errors{},
	})
}

func (s *Server) writeValidationErrors(c *gin.Context, fields contactform.Fields, errs contactform.Errors) {
	switch modeOf(c) {
	case modeJSON:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
	case modeHTMX:
		// htmx only swaps 2xx responses by default, so the re-rendered
		// form goes out with 200.
		c.HTML(http.StatusOK, "contact.html", gin.H{"fields": fields, "errors": errs})
	default:
		c.HTML(http.StatusUnprocessableEntity, "contact.html", gin.H{"fields": fields, "errors": errs})
	}
}
