// Package envclass decides what kind of browser a visitor is using, based on
// the User-Agent and the display hints the page reports.
//
// The verdict is a best-effort heuristic. A wrong answer only changes which
// contact channel is offered first; it never breaks a handoff.
package envclass

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Signature is the raw runtime information a classification is made from.
type Signature struct {
	UserAgent string
	// Standalone is set when the page reports a standalone display mode
	// (navigator.standalone on iOS home-screen apps).
	Standalone bool
}

// Profile is the classifier's verdict. It is recomputed per request.
type Profile struct {
	Mobile  bool `json:"is_mobile"`
	WebView bool `json:"is_webview"`
	// Apple marks the iPhone/iPad/iPod family, whose sms: URIs join the
	// body with '&' rather than '?'.
	Apple bool `json:"is_apple"`
}

// Desktop reports a conventional desktop browser.
func (p Profile) Desktop() bool {
	return !p.Mobile && !p.WebView
}

// Kind names the profile for logs and metrics.
func (p Profile) Kind() string {
	switch {
	case p.Mobile:
		return "mobile"
	case p.WebView:
		return "webview"
	default:
		return "desktop"
	}
}

// Rule is one webview predicate.
type Rule struct {
	Name  string
	Match func(Signature) bool
}

var (
	mobileTokens  = regexp.MustCompile(`(?i)android|iphone|ipad|ipod|opera mini|iemobile|mobile`)
	appleTokens   = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
	iosDevice     = regexp.MustCompile(`(?i)\b(iPhone|iPod|iPad)\b`)
	wvToken       = regexp.MustCompile(`\bwv\b`)
	versionToken  = regexp.MustCompile(`(?i)Version/[\d.]+`)
	chromeMobile  = regexp.MustCompile(`(?i)Chrome/[.0-9]* Mobile`)
	safariToken   = regexp.MustCompile(`(?i)Safari`)
	genericMobile = regexp.MustCompile(`(?i)Mobile`)
)

// WebViewRules are checked in order; any match marks the signature as an
// embedded in-app browser.
var WebViewRules = []Rule{
	{Name: "ios-inapp", Match: iosInApp},
	{Name: "android-wv-token", Match: func(s Signature) bool { return wvToken.MatchString(s.UserAgent) }},
	{Name: "android-wv-paren", Match: func(s Signature) bool { return strings.Contains(s.UserAgent, "; wv)") }},
	{Name: "android-version-chrome", Match: androidVersionChrome},
	{Name: "generic-mobile-no-safari", Match: genericMobileNoSafari},
	{Name: "standalone", Match: func(s Signature) bool { return s.Standalone }},
}

// Classify builds a Profile from a signature. An empty signature is a
// desktop browser.
func Classify(sig Signature) Profile {
	return Profile{
		Mobile:  IsMobile(sig),
		WebView: IsWebView(sig),
		Apple:   IsApple(sig),
	}
}

// IsMobile reports whether the User-Agent carries a mobile device token.
func IsMobile(sig Signature) bool {
	return mobileTokens.MatchString(sig.UserAgent)
}

// IsApple reports an iPhone, iPad or iPod.
func IsApple(sig Signature) bool {
	return appleTokens.MatchString(sig.UserAgent)
}

// IsWebView reports whether any webview rule matches.
func IsWebView(sig Signature) bool {
	_, ok := MatchWebView(sig)
	return ok
}

// MatchWebView returns the first webview rule that matches.
func MatchWebView(sig Signature) (string, bool) {
	for _, rule := range WebViewRules {
		if rule.Match(sig) {
			return rule.Name, true
		}
	}
	return "", false
}

// iosInApp matches an iOS device token followed by AppleWebKit with no
// Safari marker anywhere after it. RE2 has no lookahead, so the check is
// done on the tail after the last AppleWebKit.
func iosInApp(s Signature) bool {
	loc := iosDevice.FindStringIndex(s.UserAgent)
	if loc == nil {
		return false
	}
	rest := strings.ToLower(s.UserAgent[loc[1]:])
	i := strings.LastIndex(rest, "applewebkit")
	if i < 0 {
		return false
	}
	return !strings.Contains(rest[i+len("applewebkit"):], "safari")
}

func androidVersionChrome(s Signature) bool {
	ua := s.UserAgent
	return versionToken.MatchString(ua) && chromeMobile.MatchString(ua) && !safariToken.MatchString(ua)
}

func genericMobileNoSafari(s Signature) bool {
	return genericMobile.MatchString(s.UserAgent) && !safariToken.MatchString(s.UserAgent)
}

// StandaloneHeader carries the page's standalone display flag.
const StandaloneHeader = "X-Display-Standalone"

// FromRequest reads a signature from an HTTP request. The standalone flag
// comes from StandaloneHeader or a "standalone" form value.
func FromRequest(r *http.Request) Signature {
	sig := Signature{UserAgent: r.UserAgent()}
	if v := r.Header.Get(StandaloneHeader); v != "" {
		sig.Standalone = truthy(v)
	} else if v := r.FormValue("standalone"); v != "" {
		sig.Standalone = truthy(v)
	}
	return sig
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
