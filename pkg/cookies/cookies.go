// Package cookies reads individual cookie values out of cookie header
// strings and cookie jars. The session model depends on the transport owning
// credentials, so nothing here caches or mutates state.
package cookies

import (
	"net/http"
	"net/url"
	"strings"
)

// Value returns the decoded value of the named cookie in a raw cookie
// string of the form "a=1; b=2". The second return reports whether the
// cookie was present at all, so callers can distinguish "absent" from
// an empty value. Values containing '=' are preserved intact.
func Value(raw, name string) (string, bool) {
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, found := strings.Cut(part, "=")
		if !found || k != name {
			continue
		}
		if decoded, err := url.QueryUnescape(v); err == nil {
			return decoded, true
		}
		return v, true
	}
	return "", false
}

// FromJar returns the value of the named cookie the jar would send to u.
// It reports absence the same way Value does. A nil jar never has cookies.
func FromJar(jar http.CookieJar, u *url.URL, name string) (string, bool) {
	if jar == nil || u == nil {
		return "", false
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// FromRequest returns the value of the named cookie already attached to req.
func FromRequest(req *http.Request, name string) (string, bool) {
	c, err := req.Cookie(name)
	if err != nil {
		return "", false
	}
	if decoded, err := url.QueryUnescape(c.Value); err == nil {
		return decoded, true
	}
	return c.Value, true
}
