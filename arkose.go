package twocaptcha

import (
	"encoding/json"
	"net/url"
	"time"
)

// TokenSolution is a single-token answer.
type TokenSolution struct {
	Token string `json:"token"`
}

func decodeToken(variant string, c Content) (TokenSolution, error) {
	switch c.Kind {
	case ContentString:
		return TokenSolution{Token: c.Text}, nil
	case ContentToken:
		return TokenSolution{Token: c.Field("token")}, nil
	default:
		return TokenSolution{}, unexpectedContent(variant, c)
	}
}

// ArkoseLabs is an Arkose Labs (FunCaptcha) challenge.
type ArkoseLabs struct {
	proxied
	websiteURL string
	publicKey  string
	subdomain  string
	data       string
	userAgent  string
}

func (t *ArkoseLabs) Method() string { return "funcaptcha" }

func (t *ArkoseLabs) TaskType() string {
	return t.taskType("FunCaptchaTaskProxyless", "FunCaptchaTask")
}

func (t *ArkoseLabs) Fields() url.Values {
	v := url.Values{}
	v.Set("pageurl", t.websiteURL)
	v.Set("publickey", t.publicKey)
	v.Set("surl", t.subdomain)
	v.Set("data", t.data)
	v.Set("userAgent", t.userAgent)
	t.encodeProxy(v)
	return v
}

func (t *ArkoseLabs) InitialDelay() time.Duration { return 20 * time.Second }

func (t *ArkoseLabs) Validate() error {
	if err := requireURL("website url", t.websiteURL); err != nil {
		return err
	}
	if err := requireField("public key", t.publicKey); err != nil {
		return err
	}
	if t.subdomain != "" {
		if err := requireURL("subdomain", t.subdomain); err != nil {
			return err
		}
	}
	if t.data != "" && !json.Valid([]byte(t.data)) {
		return invalidf("data blob is not valid JSON")
	}
	return t.validateProxy()
}

func (t *ArkoseLabs) DecodeSolution(c Content) (TokenSolution, error) {
	return decodeToken("arkose labs", c)
}

type ArkoseLabsBuilder struct {
	t ArkoseLabs
}

func NewArkoseLabsBuilder() *ArkoseLabsBuilder { return &ArkoseLabsBuilder{} }

func (b *ArkoseLabsBuilder) WebsiteURL(u string) *ArkoseLabsBuilder {
	b.t.websiteURL = u
	return b
}

func (b *ArkoseLabsBuilder) PublicKey(k string) *ArkoseLabsBuilder {
	b.t.publicKey = k
	return b
}

// Subdomain is the Arkose Labs service URL (surl), e.g.
// https://client-api.arkoselabs.com.
func (b *ArkoseLabsBuilder) Subdomain(u string) *ArkoseLabsBuilder {
	b.t.subdomain = u
	return b
}

// Data is the JSON blob some sites pass to the widget.
func (b *ArkoseLabsBuilder) Data(blob map[string]string) *ArkoseLabsBuilder {
	if len(blob) == 0 {
		b.t.data = ""
		return b
	}
	raw, _ := json.Marshal(blob)
	b.t.data = string(raw)
	return b
}

func (b *ArkoseLabsBuilder) UserAgent(ua string) *ArkoseLabsBuilder {
	b.t.userAgent = ua
	return b
}

func (b *ArkoseLabsBuilder) Proxy(p *Proxy) *ArkoseLabsBuilder {
	b.t.proxy = copyProxy(p)
	return b
}

func (b *ArkoseLabsBuilder) Build() (*ArkoseLabs, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
