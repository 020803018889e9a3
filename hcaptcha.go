package twocaptcha

import (
	"net/url"
	"time"
)

// HCaptchaSolution carries the h-captcha-response token. RespKey and
// UserAgent are set when the service returns them; sites that check
// respKey expect requests from the same user agent.
type HCaptchaSolution struct {
	Token     string `json:"token"`
	RespKey   string `json:"respKey,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

type HCaptcha struct {
	proxied
	websiteURL string
	websiteKey string
	invisible  bool
	data       string
	userAgent  string
}

func (t *HCaptcha) Method() string { return "hcaptcha" }

func (t *HCaptcha) TaskType() string {
	return t.taskType("HCaptchaTaskProxyless", "HCaptchaTask")
}

func (t *HCaptcha) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("sitekey", t.websiteKey)
	setFlag(v, "invisible", t.invisible)
	v.Set("data", t.data)
	v.Set("userAgent", t.userAgent)
	t.encodeProxy(v)
	return v
}

func (t *HCaptcha) InitialDelay() time.Duration { return 20 * time.Second }

func (t *HCaptcha) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("website key", t.websiteKey); err != nil {
		return err
	}
	if t.data != "" && t.userAgent == "" {
		return invalidf("user agent is required when enterprise data is set")
	}
	return t.validateProxy()
}

func (t *HCaptcha) DecodeSolution(c Content) (HCaptchaSolution, error) {
	switch c.Kind {
	case ContentString:
		return HCaptchaSolution{Token: c.Text}, nil
	case ContentToken, ContentRecaptcha:
		// Full replies also carry gRecaptchaResponse and match the
		// reCAPTCHA shape first.
		return HCaptchaSolution{
			Token:     c.Field("token"),
			RespKey:   c.Field("respKey"),
			UserAgent: c.Field("userAgent"),
		}, nil
	default:
		return HCaptchaSolution{}, unexpectedContent("hcaptcha", c)
	}
}

type HCaptchaBuilder struct {
	t HCaptcha
}

func NewHCaptchaBuilder() *HCaptchaBuilder { return &HCaptchaBuilder{} }

func (b *HCaptchaBuilder) WebsiteURL(u string) *HCaptchaBuilder {
	b.t.websiteURL = u
	return b
}

func (b *HCaptchaBuilder) WebsiteKey(k string) *HCaptchaBuilder {
	b.t.websiteKey = k
	return b
}

func (b *HCaptchaBuilder) Invisible() *HCaptchaBuilder {
	b.t.invisible = true
	return b
}

// Data is the enterprise rqdata value. It requires UserAgent.
func (b *HCaptchaBuilder) Data(rqdata string) *HCaptchaBuilder {
	b.t.data = rqdata
	return b
}

func (b *HCaptchaBuilder) UserAgent(ua string) *HCaptchaBuilder {
	b.t.userAgent = ua
	return b
}

func (b *HCaptchaBuilder) Proxy(p *Proxy) *HCaptchaBuilder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *HCaptchaBuilder) Build() (*HCaptcha, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
