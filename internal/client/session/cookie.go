package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/avoskres/salondesk/internal/common"
)

// JarCookies keeps the auth_token cookie in an http.CookieJar. The jar is
// attached to the API client's transport, so every outgoing request carries
// the same credential that server-side middleware reads from the cookie.
type JarCookies struct {
	jar     http.CookieJar
	siteURL *url.URL
	path    string
}

// NewJarCookies builds a cookie backend scoped to siteURL. The cookie path
// is the deployment base path, or "/" when the app is deployed at the root.
func NewJarCookies(siteURL *url.URL, basePath string) (*JarCookies, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	path := basePath
	if path == "" {
		path = "/"
	}

	return &JarCookies{jar: jar, siteURL: siteURL, path: path}, nil
}

// Jar exposes the underlying cookie jar for wiring into an http.Client.
func (c *JarCookies) Jar() http.CookieJar {
	return c.jar
}

func (c *JarCookies) SetAccessCookie(token string) {
	c.jar.SetCookies(c.siteURL, []*http.Cookie{{
		Name:     common.AccessTokenKey,
		Value:    token,
		Path:     c.path,
		MaxAge:   common.AccessCookieMaxAge,
		Expires:  time.Now().Add(common.AccessCookieMaxAge * time.Second),
		SameSite: http.SameSiteLaxMode,
	}})
}

func (c *JarCookies) ClearAccessCookie() {
	c.jar.SetCookies(c.siteURL, []*http.Cookie{{
		Name:     common.AccessTokenKey,
		Value:    "",
		Path:     c.path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteLaxMode,
	}})
}

// AccessCookie returns the current auth_token cookie value, if present and
// not expired.
func (c *JarCookies) AccessCookie() (string, bool) {
	for _, ck := range c.jar.Cookies(c.siteURL) {
		if ck.Name == common.AccessTokenKey {
			return ck.Value, true
		}
	}
	return "", false
}
