package twocaptcha

import (
	"net/url"
	"time"
)

// CyberSiARA is a CyberSiARA slider challenge. The service requires the
// user agent the token will be used with.
type CyberSiARA struct {
	proxied
	websiteURL  string
	masterURLID string
	userAgent   string
}

func (t *CyberSiARA) Method() string { return "cybersiara" }

func (t *CyberSiARA) TaskType() string {
	return t.taskType("AntiCyberSiAraTaskProxyless", "AntiCyberSiAraTask")
}

func (t *CyberSiARA) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("master_url_id", t.masterURLID)
	v.Set("userAgent", t.userAgent)
	t.encodeProxy(v)
	return v
}

func (t *CyberSiARA) InitialDelay() time.Duration { return 15 * time.Second }

func (t *CyberSiARA) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("master url id", t.masterURLID); err != nil {
		return err
	}
	if err := requireField("user agent", t.userAgent); err != nil {
		return err
	}
	return t.validateProxy()
}

func (t *CyberSiARA) DecodeSolution(c Content) (TokenSolution, error) {
	return decodeToken("cybersiara", c)
}

type CyberSiARABuilder struct {
	t CyberSiARA
}

func NewCyberSiARABuilder() *CyberSiARABuilder { return &CyberSiARABuilder{} }

func (b *CyberSiARABuilder) WebsiteURL(u string) *CyberSiARABuilder {
	b.t.websiteURL = u
	return b
}

// MasterURLID is the MasterUrlId parameter of the widget script.
func (b *CyberSiARABuilder) MasterURLID(id string) *CyberSiARABuilder {
	b.t.masterURLID = id
	return b
}

func (b *CyberSiARABuilder) UserAgent(ua string) *CyberSiARABuilder {
	b.t.userAgent = ua
	return b
}

func (b *CyberSiARABuilder) Proxy(p *Proxy) *CyberSiARABuilder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *CyberSiARABuilder) Build() (*CyberSiARA, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
