package twocaptcha

import (
	"net/http"
	"net/url"
	"strings"
)

// proxied is embedded by variants that can route the remote worker
// through a caller-supplied proxy. The type tag switches between the
// proxyless and the proxy form.
type proxied struct {
	proxy *Proxy
}

func (p proxied) taskType(proxyless, withProxy string) string {
	if p.proxy != nil {
		return withProxy
	}
	return proxyless
}

func (p proxied) encodeProxy(v url.Values) {
	if p.proxy != nil {
		p.proxy.encode(v)
	}
}

func (p proxied) validateProxy() error {
	if p.proxy == nil {
		return nil
	}
	return p.proxy.validate()
}

func copyProxy(p *Proxy) *Proxy {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidf("%s is required", name)
	}
	return nil
}

// requireURL checks that value is an absolute http(s) URL.
func requireURL(name, value string) error {
	if err := requireField(name, value); err != nil {
		return err
	}
	u, err := url.Parse(value)
	if err != nil {
		return invalidf("%s %q: %v", name, value, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidf("%s %q is not an absolute http(s) URL", name, value)
	}
	return nil
}

func setFlag(v url.Values, key string, on bool) {
	if on {
		v.Set(key, "1")
	}
}

// encodeCookies renders cookies in the service's KEY:Value;KEY2:Value2
// form.
func encodeCookies(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		parts = append(parts, c.Name+":"+c.Value)
	}
	return strings.Join(parts, ";")
}

func unexpectedContent(variant string, c Content) error {
	return schemaError("decode", "%s solution cannot be read from %s content", variant, c.Kind)
}
