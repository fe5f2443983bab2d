package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/internal/envclass"
)

// PopupBlockedHeader is sent by clients whose window.open was blocked.
const PopupBlockedHeader = "X-Popup-Blocked"

// Handoff actions reported to the client.
const (
	actionOpen     = "open"
	actionNavigate = "navigate"
	actionNone     = "none"
)

// HTTPHost is the dispatch host for one HTTP request. It records the
// router's calls; the response then tells the browser what to do. A client
// that reported a blocked pop-up gets ErrUnavailable from OpenNew.
type HTTPHost struct {
	dispatch.RecordingHost
}

func newHTTPHost(c *gin.Context) *HTTPHost {
	return &HTTPHost{RecordingHost: dispatch.RecordingHost{BlockOpen: popupBlocked(c)}}
}

func popupBlocked(c *gin.Context) bool {
	v := c.GetHeader(PopupBlockedHeader)
	if v == "" {
		v = c.PostForm("popup_blocked")
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// outcome reduces the recorded calls to the single thing the browser must
// do. A blocked open with no fallback leaves nothing to do.
func (h *HTTPHost) outcome() (string, string) {
	calls := h.Calls()
	if len(calls) == 0 {
		return actionNone, ""
	}
	last := calls[len(calls)-1]
	switch {
	case last.Kind == dispatch.CallNavigate:
		return actionNavigate, last.URI
	case h.BlockOpen:
		return actionNone, ""
	default:
		return actionOpen, last.URI
	}
}

type handoffResponse struct {
	Action      string           `json:"action"`
	URI         string           `json:"uri,omitempty"`
	Channel     string           `json:"channel"`
	Strategy    string           `json:"strategy"`
	Fallback    bool             `json:"fallback_available"`
	Environment envclass.Profile `json:"environment"`
	Message     string           `json:"message,omitempty"`
}

type responseMode int

const (
	modeHTML responseMode = iota
	modeHTMX
	modeJSON
)

func modeOf(c *gin.Context) responseMode {
	switch {
	case c.GetHeader("HX-Request") == "true":
		return modeHTMX
	case strings.Contains(c.GetHeader("Accept"), "application/json"),
		strings.HasPrefix(c.ContentType(), "application/json"):
		return modeJSON
	default:
		return modeHTML
	}
}

// writeHandoff answers a dispatch request. fragment, when set, is the HTMX
// fragment rendered alongside the handoff (the form's success notice).
func (s *Server) writeHandoff(c *gin.Context, host *HTTPHost, h dispatch.Handoff, env envclass.Profile, fragment string, data gin.H) {
	action, uri := host.outcome()
	resp := handoffResponse{
		Action:      action,
		URI:         uri,
		Channel:     h.Channel.String(),
		Strategy:    string(h.Strategy),
		Fallback:    h.FallbackAllowed && !h.FellBack,
		Environment: env,
	}
	if msg, ok := data["success"].(string); ok {
		resp.Message = msg
	}

	switch modeOf(c) {
	case modeJSON:
		c.JSON(http.StatusOK, resp)

	case modeHTMX:
		switch action {
		case actionNavigate:
			c.Header("HX-Redirect", uri)
		case actionOpen:
			trigger, _ := json.Marshal(map[string]any{
				"contact-handoff": map[string]any{"uri": uri, "fallback": resp.Fallback},
			})
			c.Header("HX-Trigger", string(trigger))
		}
		if fragment == "" {
			fragment = "handoff.html"
			data = s.handoffData(resp, false)
		}
		c.HTML(http.StatusOK, fragment, data)

	default:
		if action == actionNavigate {
			c.Redirect(http.StatusSeeOther, uri)
			return
		}
		c.HTML(http.StatusOK, "handoff.html", s.handoffData(resp, true))
	}
}

func (s *Server) handoffData(resp handoffResponse, standalonePage bool) gin.H {
	return gin.H{
		// URIs are built by contacturi, so sms: and mailto: are trusted here.
		"uri":            template.URL(resp.URI),
		"channel":        resp.Channel,
		"newTab":         resp.Action == actionOpen,
		"fallback":       resp.Fallback,
		"standalonePage": standalonePage,
	}
}
