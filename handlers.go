package guidepress

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// isPartial reports whether an htmx request asked for the named fragment.
func isPartial(c echo.Context, name string) bool {
	return c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == name
}

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	guides, err := a.Cache.ListGuides(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	view := OpenHomeView(a.Config, guides, tags, tag, c.Logger())
	defer view.Close()
	if isPartial(c, "home") {
		return Render(c, a.Views.HomePartial(view))
	}
	return Render(c, a.Views.Home(view))
}

// openGuide loads a published guide and composes its page view. A missing
// guide yields (nil, nil) after the 404 page has been written.
func (a *App) openGuide(c echo.Context) (*PageView, error) {
	g, err := a.Cache.GetGuide(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return nil, err
	}
	guides, err := a.Cache.ListGuides("")
	if err != nil {
		return nil, err
	}
	return OpenPageView(a.Config, g, guides, c.Logger())
}

func (a *App) handleGuide(c echo.Context) error {
	view, err := a.openGuide(c)
	if err != nil || view == nil {
		return err
	}
	defer view.Close()
	if isPartial(c, "guide") {
		return Render(c, a.Views.GuidePartial(view))
	}
	return Render(c, a.Views.Guide(view))
}

// handleGuideSchema serves the graphs a guide page mounts, as one JSON array.
func (a *App) handleGuideSchema(c echo.Context) error {
	view, err := a.openGuide(c)
	if err != nil || view == nil {
		return err
	}
	defer view.Close()
	return c.Blob(http.StatusOK, "application/ld+json; charset=utf-8", []byte(view.GraphsJSON()))
}

func (a *App) handleSitemap(c echo.Context) error {
	guides, err := a.Cache.ListGuides("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, guides)
}

func (a *App) handleFeed(c echo.Context) error {
	guides, err := a.Cache.ListGuides("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, guides)
}

func handleGuidesRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

// handleRobots serves the user's robots.txt, or a default pointing at the
// sitemap when none exists.
func (a *App) handleRobots(c echo.Context) error {
	err := c.File(a.Config.StaticDir + "/robots.txt")
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		return err
	}
	return c.String(http.StatusOK, "User-agent: *\nDisallow: /admin/\nSitemap: "+BuildURL(a.Config.URL)+"sitemap.xml\n")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
