package envclass

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	desktopChrome  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	desktopFirefox = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	iphoneSafari   = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	iphoneInApp    = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 Instagram 300.0.0"
	androidChrome  = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	androidWebView = "Mozilla/5.0 (Linux; Android 13; Pixel 7 Build/TQ3A; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/120.0.0.0 Mobile Safari/537.36"
)

func rule(t *testing.T, name string) Rule {
	t.Helper()
	for _, r := range WebViewRules {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no rule named %q", name)
	return Rule{}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want Profile
	}{
		{"empty signature is desktop", Signature{}, Profile{}},
		{"desktop chrome", Signature{UserAgent: desktopChrome}, Profile{}},
		{"desktop firefox", Signature{UserAgent: desktopFirefox}, Profile{}},
		{"iphone safari", Signature{UserAgent: iphoneSafari}, Profile{Mobile: true, Apple: true}},
		{"iphone in-app browser", Signature{UserAgent: iphoneInApp}, Profile{Mobile: true, WebView: true, Apple: true}},
		{"android chrome", Signature{UserAgent: androidChrome}, Profile{Mobile: true}},
		{"android webview", Signature{UserAgent: androidWebView}, Profile{Mobile: true, WebView: true}},
		{"standalone desktop", Signature{UserAgent: desktopChrome, Standalone: true}, Profile{WebView: true}},
		{"opera mini", Signature{UserAgent: "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80) Presto/2.5"}, Profile{Mobile: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sig))
		})
	}
}

func TestClassifyIsCaseInsensitiveForMobileTokens(t *testing.T) {
	assert.True(t, IsMobile(Signature{UserAgent: "something ANDROID something"}))
	assert.True(t, IsApple(Signature{UserAgent: "ipad"}))
	assert.False(t, IsApple(Signature{UserAgent: androidChrome}))
}

func TestProfileKind(t *testing.T) {
	assert.Equal(t, "desktop", Profile{}.Kind())
	assert.Equal(t, "webview", Profile{WebView: true}.Kind())
	assert.Equal(t, "mobile", Profile{Mobile: true, WebView: true}.Kind())
	assert.True(t, Profile{}.Desktop())
	assert.False(t, Profile{WebView: true}.Desktop())
}

func TestWebViewRulesIndividually(t *testing.T) {
	tests := []struct {
		rule string
		ua   string
		want bool
	}{
		{"ios-inapp", iphoneInApp, true},
		{"ios-inapp", iphoneSafari, false},
		{"ios-inapp", "Mozilla/5.0 (iPad; CPU OS 16_0) AppleWebKit/605.1.15 (KHTML, like Gecko) GSA/250", true},
		{"ios-inapp", "iPhone without engine token", false},
		{"ios-inapp", androidWebView, false},
		{"android-wv-token", androidWebView, true},
		{"android-wv-token", androidChrome, false},
		{"android-wv-token", "Mozilla/5.0 (Linux; Android 13; WV)", false},
		{"android-wv-paren", "Mozilla/5.0 (Linux; Android 10; wv) AppleWebKit", true},
		{"android-wv-paren", androidChrome, false},
		{"android-version-chrome", "Mozilla/5.0 (Linux; Android 9) AppleWebKit/537.36 Version/4.0 Chrome/99.0.1 Mobile", true},
		{"android-version-chrome", androidWebView, false},
		{"android-version-chrome", androidChrome, false},
		{"generic-mobile-no-safari", "SomeApp/1.0 Mobile", true},
		{"generic-mobile-no-safari", androidChrome, false},
		{"generic-mobile-no-safari", desktopFirefox, false},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.ua, func(t *testing.T) {
			r := rule(t, tt.rule)
			assert.Equal(t, tt.want, r.Match(Signature{UserAgent: tt.ua}))
		})
	}
}

func TestStandaloneRule(t *testing.T) {
	r := rule(t, "standalone")
	assert.True(t, r.Match(Signature{Standalone: true}))
	assert.False(t, r.Match(Signature{UserAgent: iphoneInApp}))
}

func TestWebViewRuleOrder(t *testing.T) {
	names := make([]string, 0, len(WebViewRules))
	for _, r := range WebViewRules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"ios-inapp",
		"android-wv-token",
		"android-wv-paren",
		"android-version-chrome",
		"generic-mobile-no-safari",
		"standalone",
	}, names)

	name, ok := MatchWebView(Signature{UserAgent: iphoneInApp})
	require.True(t, ok)
	assert.Equal(t, "ios-inapp", name)

	_, ok = MatchWebView(Signature{UserAgent: desktopChrome})
	assert.False(t, ok)
}

// Any browser that says "Mobile" without a Safari token lands in the webview
// bucket, including odd standalone browsers. Known and accepted.
func TestGenericRuleFlagsMobileWithoutSafari(t *testing.T) {
	p := Classify(Signature{UserAgent: "NetSurf/3.10 (Mobile-friendly build)"})
	assert.True(t, p.WebView)
	assert.True(t, p.Mobile)
}

func TestFromRequest(t *testing.T) {
	t.Run("header flag", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", iphoneSafari)
		req.Header.Set(StandaloneHeader, "1")
		sig := FromRequest(req)
		assert.Equal(t, iphoneSafari, sig.UserAgent)
		assert.True(t, sig.Standalone)
	})

	t.Run("form flag", func(t *testing.T) {
		form := url.Values{"standalone": {"true"}}
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", desktopChrome)
		assert.True(t, FromRequest(req).Standalone)
	})

	t.Run("garbage flag is false", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?standalone=yes-please", nil)
		assert.False(t, FromRequest(req).Standalone)
	})

	t.Run("no user agent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Del("User-Agent")
		assert.Equal(t, Profile{}, Classify(FromRequest(req)))
	})
}
