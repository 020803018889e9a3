package twocaptcha

import (
	tls "github.com/refraction-networking/utls"
)

// BrowserProfile pairs a TLS ClientHello with the headers that browser
// sends on an XHR to a JSON API.
type BrowserProfile struct {
	Name     string
	TLSHello tls.ClientHelloID
	Headers  [][2]string
}

func lookupProfile(name string) (BrowserProfile, bool) {
	switch name {
	case "chrome":
		return chromeProfile(), true
	case "firefox":
		return firefoxProfile(), true
	default:
		return BrowserProfile{}, false
	}
}

// apiHeaders returns the profile headers for browser, or a plain client
// identification when no profile is selected.
func apiHeaders(browser string) [][2]string {
	if p, ok := lookupProfile(browser); ok {
		return p.Headers
	}
	return [][2]string{{"User-Agent", "twocaptcha-go/1.0"}}
}

func chromeProfile() BrowserProfile {
	return BrowserProfile{
		Name:     "chrome",
		TLSHello: tls.HelloChrome_Auto,
		Headers: [][2]string{
			{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"},
			{"Accept-Language", "en-US,en;q=0.9"},
			{"Sec-Ch-Ua", `"Chromium";v="133", "Not(A:Brand";v="99", "Google Chrome";v="133"`},
			{"Sec-Ch-Ua-Mobile", "?0"},
			{"Sec-Ch-Ua-Platform", `"Windows"`},
			{"Sec-Fetch-Site", "cross-site"},
			{"Sec-Fetch-Mode", "cors"},
			{"Sec-Fetch-Dest", "empty"},
		},
	}
}

func firefoxProfile() BrowserProfile {
	return BrowserProfile{
		Name:     "firefox",
		TLSHello: tls.HelloFirefox_Auto,
		Headers: [][2]string{
			{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:134.0) Gecko/20100101 Firefox/134.0"},
			{"Accept-Language", "en-US,en;q=0.5"},
			{"Sec-Fetch-Dest", "empty"},
			{"Sec-Fetch-Mode", "cors"},
			{"Sec-Fetch-Site", "cross-site"},
		},
	}
}
