package twocaptcha

import (
	"net/url"
	"time"
)

// GeeTestSolution holds the three values the page submits after a
// GeeTest v3 slide.
type GeeTestSolution struct {
	Challenge string `json:"geetest_challenge"`
	Validate  string `json:"geetest_validate"`
	Seccode   string `json:"geetest_seccode"`
}

// GeeTest is a GeeTest v3 challenge. The challenge value is single use:
// fetch a fresh one from the page for every task.
type GeeTest struct {
	proxied
	websiteURL string
	gt         string
	challenge  string
	apiServer  string
	userAgent  string
}

func (t *GeeTest) Method() string { return "geetest" }

func (t *GeeTest) TaskType() string {
	return t.taskType("GeeTestTaskProxyless", "GeeTestTask")
}

func (t *GeeTest) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("gt", t.gt)
	v.Set("challenge", t.challenge)
	v.Set("api_server", t.apiServer)
	v.Set("userAgent", t.userAgent)
	t.encodeProxy(v)
	return v
}

func (t *GeeTest) InitialDelay() time.Duration { return 15 * time.Second }

func (t *GeeTest) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("gt", t.gt); err != nil {
		return err
	}
	if err := requireField("challenge", t.challenge); err != nil {
		return err
	}
	return t.validateProxy()
}

func (t *GeeTest) DecodeSolution(c Content) (GeeTestSolution, error) {
	if c.Kind != ContentGeeTest {
		return GeeTestSolution{}, unexpectedContent("geetest", c)
	}
	return GeeTestSolution{
		Challenge: c.Field("geetest_challenge"),
		Validate:  c.Field("geetest_validate"),
		Seccode:   c.Field("geetest_seccode"),
	}, nil
}

// GeeTestBuilder stages a GeeTest. WebsiteURL, GT and Challenge are
// required.
type GeeTestBuilder struct {
	t GeeTest
}

func NewGeeTestBuilder() *GeeTestBuilder { return &GeeTestBuilder{} }

func (b *GeeTestBuilder) WebsiteURL(u string) *GeeTestBuilder {
	b.t.websiteURL = u
	return b
}

func (b *GeeTestBuilder) GT(gt string) *GeeTestBuilder {
	b.t.gt = gt
	return b
}

func (b *GeeTestBuilder) Challenge(c string) *GeeTestBuilder {
	b.t.challenge = c
	return b
}

// APIServer is the GeeTest API domain, e.g. api-na.geetest.com.
func (b *GeeTestBuilder) APIServer(s string) *GeeTestBuilder {
	b.t.apiServer = s
	return b
}

func (b *GeeTestBuilder) UserAgent(ua string) *GeeTestBuilder {
	b.t.userAgent = ua
	return b
}

func (b *GeeTestBuilder) Proxy(p *Proxy) *GeeTestBuilder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *GeeTestBuilder) Build() (*GeeTest, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
