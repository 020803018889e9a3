package twocaptcha

import (
	"net/url"
	"time"
)

type LeminSolution struct {
	Answer      string `json:"answer"`
	ChallengeID string `json:"challenge_id"`
}

// Lemin is a Lemin cropped-puzzle captcha.
type Lemin struct {
	proxied
	websiteURL string
	captchaID  string
	divID      string
	apiServer  string
	userAgent  string
}

func (t *Lemin) Method() string { return "lemin" }

func (t *Lemin) TaskType() string {
	return t.taskType("LeminTaskProxyless", "LeminTask")
}

func (t *Lemin) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("captcha_id", t.captchaID)
	v.Set("div_id", t.divID)
	v.Set("api_server", t.apiServer)
	v.Set("userAgent", t.userAgent)
	t.encodeProxy(v)
	return v
}

func (t *Lemin) InitialDelay() time.Duration { return 15 * time.Second }

func (t *Lemin) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("captcha id", t.captchaID); err != nil {
		return err
	}
	if err := requireField("div id", t.divID); err != nil {
		return err
	}
	return t.validateProxy()
}

func (t *Lemin) DecodeSolution(c Content) (LeminSolution, error) {
	if c.Kind != ContentLemin {
		return LeminSolution{}, unexpectedContent("lemin", c)
	}
	return LeminSolution{Answer: c.Field("answer"), ChallengeID: c.Field("challenge_id")}, nil
}

type LeminBuilder struct {
	t Lemin
}

func NewLeminBuilder() *LeminBuilder { return &LeminBuilder{} }

func (b *LeminBuilder) WebsiteURL(u string) *LeminBuilder {
	b.t.websiteURL = u
	return b
}

func (b *LeminBuilder) CaptchaID(id string) *LeminBuilder {
	b.t.captchaID = id
	return b
}

// DivID is the id of the element the widget renders into.
func (b *LeminBuilder) DivID(id string) *LeminBuilder {
	b.t.divID = id
	return b
}

func (b *LeminBuilder) APIServer(s string) *LeminBuilder {
	b.t.apiServer = s
	return b
}

func (b *LeminBuilder) UserAgent(ua string) *LeminBuilder {
	b.t.userAgent = ua
	return b
}

func (b *LeminBuilder) Proxy(p *Proxy) *LeminBuilder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *LeminBuilder) Build() (*Lemin, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
