package twocaptcha

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Widget is a captcha found in an HTML page.
type Widget struct {
	Kind    string `json:"kind"`
	SiteKey string `json:"sitekey,omitempty"`
}

// widgetClasses maps the container class of each widget to its kind.
// Only kinds this package can solve are listed.
var widgetClasses = []struct {
	class string
	kind  string
}{
	{"h-captcha", "hcaptcha"},
	{"g-recaptcha", "recaptcha"},
	{"geetest_holder", "geetest"},
	{"lemin-cropped-captcha", "lemin"},
}

// scriptMarkers identify widgets that are injected by script rather
// than declared in markup.
var scriptMarkers = []struct {
	marker string
	kind   string
}{
	{"hcaptcha.com/1/api.js", "hcaptcha"},
	{"www.google.com/recaptcha", "recaptcha"},
	{"www.recaptcha.net/recaptcha", "recaptcha"},
	{"static.geetest.com", "geetest"},
	{"arkoselabs.com", "arkose"},
	{"funcaptcha.com", "arkose"},
	{"api.capy.me", "capy"},
	{"cybersiara.com", "cybersiara"},
	{"api.leminnow.com", "lemin"},
}

// DetectWidgets parses an HTML page and returns the captcha widgets it
// declares. Elements with a data-sitekey attribute come first, in
// document order, with their key. Script includes of known providers
// follow without a key, in document order, when no keyed element of
// that kind exists.
func DetectWidgets(body []byte) ([]Widget, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var (
		widgets []Widget
		scripts []string
		keyed   = make(map[string]bool)
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key := attr(n, "data-sitekey"); key != "" {
				kind := widgetKind(attr(n, "class"))
				widgets = append(widgets, Widget{Kind: kind, SiteKey: key})
				keyed[kind] = true
			}
			if n.Data == "script" {
				if src := attr(n, "src"); src != "" {
					scripts = append(scripts, src)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, src := range scripts {
		for _, m := range scriptMarkers {
			if strings.Contains(src, m.marker) && !keyed[m.kind] {
				widgets = append(widgets, Widget{Kind: m.kind})
				keyed[m.kind] = true
			}
		}
	}
	return widgets, nil
}

func widgetKind(class string) string {
	for _, field := range strings.Fields(class) {
		for _, wc := range widgetClasses {
			if field == wc.class {
				return wc.kind
			}
		}
	}
	return "unknown"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
