package twocaptcha

import (
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// RecaptchaSolution is the reCAPTCHA answer. Both fields carry the same
// token; the service sends it under both names.
type RecaptchaSolution struct {
	GRecaptchaResponse string `json:"gRecaptchaResponse"`
	Token              string `json:"token"`
}

func decodeRecaptcha(c Content) (RecaptchaSolution, error) {
	switch c.Kind {
	case ContentString:
		return RecaptchaSolution{GRecaptchaResponse: c.Text, Token: c.Text}, nil
	case ContentRecaptcha:
		return RecaptchaSolution{GRecaptchaResponse: c.Field("gRecaptchaResponse"), Token: c.Field("token")}, nil
	default:
		return RecaptchaSolution{}, unexpectedContent("recaptcha", c)
	}
}

// RecaptchaV2 is a reCAPTCHA v2 challenge, optionally the Enterprise
// edition.
type RecaptchaV2 struct {
	proxied
	websiteURL string
	websiteKey string
	dataS      string
	userAgent  string
	cookies    string
	apiDomain  string
	invisible  bool
	enterprise bool
}

func (t *RecaptchaV2) Method() string { return "userrecaptcha" }

func (t *RecaptchaV2) TaskType() string {
	if t.enterprise {
		return t.taskType("RecaptchaV2EnterpriseTaskProxyless", "RecaptchaV2EnterpriseTask")
	}
	return t.taskType("RecaptchaV2TaskProxyless", "RecaptchaV2Task")
}

func (t *RecaptchaV2) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("googlekey", t.websiteKey)
	v.Set("data-s", t.dataS)
	v.Set("userAgent", t.userAgent)
	v.Set("cookies", t.cookies)
	v.Set("domain", t.apiDomain)
	setFlag(v, "invisible", t.invisible)
	setFlag(v, "enterprise", t.enterprise)
	t.encodeProxy(v)
	return v
}

func (t *RecaptchaV2) InitialDelay() time.Duration { return 20 * time.Second }

func (t *RecaptchaV2) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("website key", t.websiteKey); err != nil {
		return err
	}
	return t.validateProxy()
}

func (t *RecaptchaV2) DecodeSolution(c Content) (RecaptchaSolution, error) {
	return decodeRecaptcha(c)
}

// RecaptchaV2Builder stages a RecaptchaV2. WebsiteURL and WebsiteKey are
// required.
type RecaptchaV2Builder struct {
	t RecaptchaV2
}

func NewRecaptchaV2Builder() *RecaptchaV2Builder { return &RecaptchaV2Builder{} }

// WebsiteURL is the full URL of the page where the captcha is loaded.
func (b *RecaptchaV2Builder) WebsiteURL(u string) *RecaptchaV2Builder {
	b.t.websiteURL = u
	return b
}

// WebsiteKey is the data-sitekey of the reCAPTCHA widget.
func (b *RecaptchaV2Builder) WebsiteKey(k string) *RecaptchaV2Builder {
	b.t.websiteKey = k
	return b
}

// DataS is the data-s value found on Google services.
func (b *RecaptchaV2Builder) DataS(s string) *RecaptchaV2Builder {
	b.t.dataS = s
	return b
}

func (b *RecaptchaV2Builder) UserAgent(ua string) *RecaptchaV2Builder {
	b.t.userAgent = ua
	return b
}

// Cookies are set in the worker's browser before loading the page.
func (b *RecaptchaV2Builder) Cookies(cookies []*http.Cookie) *RecaptchaV2Builder {
	b.t.cookies = encodeCookies(cookies)
	return b
}

// APIDomain is the domain the widget is loaded from: google.com or
// recaptcha.net.
func (b *RecaptchaV2Builder) APIDomain(d string) *RecaptchaV2Builder {
	b.t.apiDomain = d
	return b
}

func (b *RecaptchaV2Builder) Invisible() *RecaptchaV2Builder {
	b.t.invisible = true
	return b
}

func (b *RecaptchaV2Builder) Enterprise() *RecaptchaV2Builder {
	b.t.enterprise = true
	return b
}

func (b *RecaptchaV2Builder) Proxy(p *Proxy) *RecaptchaV2Builder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *RecaptchaV2Builder) Build() (*RecaptchaV2, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// RecaptchaV3 is a score-based reCAPTCHA v3 challenge. The service only
// solves it without a proxy.
type RecaptchaV3 struct {
	websiteURL string
	websiteKey string
	action     string
	minScore   float64
	enterprise bool
}

func (t *RecaptchaV3) Method() string   { return "userrecaptcha" }
func (t *RecaptchaV3) TaskType() string { return "RecaptchaV3TaskProxyless" }

func (t *RecaptchaV3) Fields() url.Values {
	v := url.Values{}
	v.Set("version", "v3")
	v.Set("pageurl", t.websiteURL)
	v.Set("googlekey", t.websiteKey)
	v.Set("action", t.action)
	if t.minScore > 0 {
		v.Set("min_score", strconv.FormatFloat(t.minScore, 'f', -1, 64))
	}
	setFlag(v, "enterprise", t.enterprise)
	return v
}

func (t *RecaptchaV3) InitialDelay() time.Duration { return 20 * time.Second }

func (t *RecaptchaV3) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("website key", t.websiteKey); err != nil {
		return err
	}
	if t.minScore < 0 || t.minScore > 1 {
		return invalidf("min score %v is outside [0, 1]", t.minScore)
	}
	return nil
}

func (t *RecaptchaV3) DecodeSolution(c Content) (RecaptchaSolution, error) {
	return decodeRecaptcha(c)
}

type RecaptchaV3Builder struct {
	t RecaptchaV3
}

func NewRecaptchaV3Builder() *RecaptchaV3Builder { return &RecaptchaV3Builder{} }

func (b *RecaptchaV3Builder) WebsiteURL(u string) *RecaptchaV3Builder {
	b.t.websiteURL = u
	return b
}

func (b *RecaptchaV3Builder) WebsiteKey(k string) *RecaptchaV3Builder {
	b.t.websiteKey = k
	return b
}

// Action is the value of the action parameter passed to grecaptcha.execute.
func (b *RecaptchaV3Builder) Action(a string) *RecaptchaV3Builder {
	b.t.action = a
	return b
}

func (b *RecaptchaV3Builder) MinScore(s float64) *RecaptchaV3Builder {
	b.t.minScore = s
	return b
}

func (b *RecaptchaV3Builder) Enterprise() *RecaptchaV3Builder {
	b.t.enterprise = true
	return b
}

func (b *RecaptchaV3Builder) Build() (*RecaptchaV3, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
