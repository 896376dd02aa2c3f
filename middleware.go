package guidepress

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// contentSecurityPolicy admits the inline JSON-LD blocks, htmx and the
// WebAssembly scroll-spy loaded by guide.js.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' 'unsafe-inline' 'wasm-unsafe-eval'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' https: data:",
	"font-src 'self'",
	"connect-src 'self'",
	"frame-ancestors 'none'",
}, "; ")

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)
	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus:     true,
			LogURI:        true,
			LogMethod:     true,
			LogLatency:    true,
			LogRemoteIP:   true,
			LogValuesFunc: logRequest,
		}),
		middleware.Recover(),
		middleware.GzipWithConfig(middleware.GzipConfig{
			Level: 5,
			// Uploads are already JPEG.
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/public/"+uploadsSubdir+"/")
			},
		}),
		middleware.SecureWithConfig(middleware.SecureConfig{
			XSSProtection:         "1; mode=block",
			ContentTypeNosniff:    "nosniff",
			XFrameOptions:         "DENY",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
			ContentSecurityPolicy: contentSecurityPolicy,
			HSTSMaxAge:            31536000,
		}),
		session.Middleware(a.newSessionStore()),
		middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "header:X-CSRF-Token,form:_csrf",
			CookieName:     "_csrf",
			CookiePath:     "/admin",
			CookieSameSite: http.SameSiteStrictMode,
			CookieSecure:   a.Config.CookieSecure,
			Skipper: func(c echo.Context) bool {
				return !strings.HasPrefix(c.Request().URL.Path, "/admin")
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return c.String(http.StatusForbidden, "Forbidden")
			},
		}),
		middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
			RedirectCode: http.StatusMovedPermanently,
			Skipper: func(c echo.Context) bool {
				return isFilePath(c.Request().URL.Path)
			},
		}),
		cachePolicy,
	)
}

func logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	kind := "page"
	if isPartialRequest(c.Request()) {
		kind = "partial"
	}
	if v.Status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s %s -> %d (%s, %s)", v.RemoteIP, v.Method, v.URI, v.Status, kind, v.Latency)
		return nil
	}
	c.Logger().Infof("%s %s %s -> %d (%s, %s)", v.RemoteIP, v.Method, v.URI, v.Status, kind, v.Latency)
	return nil
}

// isFilePath reports whether p names a file (guide.js, schema.json,
// sitemap.xml, an upload) rather than a page, which always ends in a slash.
func isFilePath(p string) bool {
	return path.Ext(p) != ""
}

func isPartialRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
