package guidepress

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// cacheRule assigns a Cache-Control value to the requests it matches.
type cacheRule struct {
	match func(r *http.Request) bool
	value string
	// vary marks responses that differ between a full page and an htmx
	// partial for the same URL.
	vary bool
}

func pathPrefix(prefix string) func(*http.Request) bool {
	return func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, prefix) }
}

func pathSuffix(suffix string) func(*http.Request) bool {
	return func(r *http.Request) bool { return strings.HasSuffix(r.URL.Path, suffix) }
}

func pathIn(paths ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		for _, p := range paths {
			if r.URL.Path == p {
				return true
			}
		}
		return false
	}
}

// cacheRules are tried in order; the first match wins. Uploads never change
// once written (names are made unique), while guide.js and the wasm binary
// keep their names across deploys.
var cacheRules = []cacheRule{
	{match: pathPrefix("/public/" + uploadsSubdir + "/"), value: "public, max-age=31536000, immutable"},
	{match: pathPrefix("/public/"), value: "public, max-age=86400"},
	{match: pathPrefix("/admin"), value: "no-store"},
	{match: pathIn("/sitemap.xml", "/feed.xml", "/robots.txt", "/favicon.svg"), value: "public, max-age=86400"},
	{match: pathSuffix("/schema.json"), value: "public, max-age=3600"},
	{match: isPartialRequest, value: "no-cache", vary: true},
	{match: func(*http.Request) bool { return true }, value: "public, max-age=3600", vary: true},
}

func cachePolicy(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		for _, rule := range cacheRules {
			if !rule.match(r) {
				continue
			}
			h := c.Response().Header()
			h.Set("Cache-Control", rule.value)
			if rule.vary {
				h.Add("Vary", "HX-Request")
			}
			break
		}
		return next(c)
	}
}
