package twocaptcha

import (
	"net/url"
	"time"
)

type CapySolution struct {
	CaptchaKey   string `json:"captchakey"`
	ChallengeKey string `json:"challengekey"`
	Answer       string `json:"answer"`
	RespKey      string `json:"respKey,omitempty"`
}

// Capy is a Capy puzzle captcha.
type Capy struct {
	proxied
	websiteURL string
	websiteKey string
	apiServer  string
	userAgent  string
}

func (t *Capy) Method() string { return "capy" }

func (t *Capy) TaskType() string {
	return t.taskType("CapyTaskProxyless", "CapyTask")
}

func (t *Capy) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("captchakey", t.websiteKey)
	v.Set("api_server", t.apiServer)
	v.Set("userAgent", t.userAgent)
	t.encodeProxy(v)
	return v
}

func (t *Capy) InitialDelay() time.Duration { return 15 * time.Second }

func (t *Capy) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("website key", t.websiteKey); err != nil {
		return err
	}
	if t.apiServer != "" {
		if err := requireURL("api server", t.apiServer); err != nil {
			return err
		}
	}
	return t.validateProxy()
}

func (t *Capy) DecodeSolution(c Content) (CapySolution, error) {
	if c.Kind != ContentCapy {
		return CapySolution{}, unexpectedContent("capy", c)
	}
	return CapySolution{
		CaptchaKey:   c.Field("captchakey"),
		ChallengeKey: c.Field("challengekey"),
		Answer:       c.Field("answer"),
		RespKey:      c.Field("respKey"),
	}, nil
}

type CapyBuilder struct {
	t Capy
}

func NewCapyBuilder() *CapyBuilder { return &CapyBuilder{} }

func (b *CapyBuilder) WebsiteURL(u string) *CapyBuilder {
	b.t.websiteURL = u
	return b
}

// WebsiteKey is the captchakey value of the Capy widget.
func (b *CapyBuilder) WebsiteKey(k string) *CapyBuilder {
	b.t.websiteKey = k
	return b
}

func (b *CapyBuilder) APIServer(u string) *CapyBuilder {
	b.t.apiServer = u
	return b
}

func (b *CapyBuilder) UserAgent(ua string) *CapyBuilder {
	b.t.userAgent = ua
	return b
}

func (b *CapyBuilder) Proxy(p *Proxy) *CapyBuilder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *CapyBuilder) Build() (*Capy, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
