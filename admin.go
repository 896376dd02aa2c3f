package guidepress

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/guidepress/schema"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminGuide(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	g, err := a.Store.GetGuideAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminForm(g, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("admin login failed from %s", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	g, msg := guideFromForm(c.FormValue)
	if msg != "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
	}
	if _, err := ResolveBreadcrumbs(a.Config, g); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape("Breadcrumbs rejected: "+err.Error()))
	}
	if err := a.Store.SaveGuide(g); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteGuide(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	guides, err := a.Store.ListAllGuides()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(guides, msg, CsrfToken(c)))
}

// guideFromForm builds a Guide from the admin form. A non-empty message
// means the form was rejected.
func guideFromForm(value func(string) string) (Guide, string) {
	field := func(name string) string { return strings.TrimSpace(value(name)) }

	title := field("title")
	slug := field("slug")
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return Guide{}, "Slug is required. Add a title or slug."
	}
	date := field("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Guide{}, "Invalid date format. Use YYYY-MM-DD."
	}
	updated := field("updated")
	if updated != "" {
		if _, err := time.Parse("2006-01-02", updated); err != nil {
			return Guide{}, "Invalid updated date. Use YYYY-MM-DD."
		}
	}

	g := Guide{
		Slug:        slug,
		Title:       title,
		Description: field("description"),
		Date:        date,
		Updated:     updated,
		Tags:        FilterEmpty(strings.Split(value("tags"), ",")),
		HeroImage:   field("hero_image"),
		Content:     value("content"),
		Published:   value("published") != "",
		Venues:      ParseVenues(value("venues")),
		FAQ:         ParseFAQ(value("faq")),
		Breadcrumbs: ParseBreadcrumbs(value("breadcrumbs")),
	}
	if name := field("city_name"); name != "" {
		g.City = &schema.Place{
			Name:        name,
			Description: field("city_description"),
			Address:     field("city_address"),
			URL:         field("city_url"),
			Image:       field("city_image"),
		}
	}
	return g, ""
}

// splitLine splits a "a | b | c" form line into exactly n trimmed fields.
func splitLine(line string, n int) []string {
	parts := strings.SplitN(line, "|", n)
	out := make([]string, n)
	for i := range parts {
		out[i] = strings.TrimSpace(parts[i])
	}
	return out
}

func formLines(raw string) []string {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ParseFAQ reads one "Question | Answer" pair per line. Entries are numbered
// from 1; lines missing either half are ignored.
func ParseFAQ(raw string) []schema.FAQEntry {
	var faq []schema.FAQEntry
	for _, l := range formLines(raw) {
		f := splitLine(l, 2)
		if f[0] == "" || f[1] == "" {
			continue
		}
		faq = append(faq, schema.FAQEntry{ID: len(faq) + 1, Question: f[0], Answer: f[1]})
	}
	return faq
}

// FormatFAQ is the inverse of ParseFAQ, for pre-filling the admin form.
func FormatFAQ(faq []schema.FAQEntry) string {
	lines := make([]string, len(faq))
	for i, e := range faq {
		lines[i] = e.Question + " | " + e.Answer
	}
	return strings.Join(lines, "\n")
}

// ParseVenues reads one "Name | Type | Address | URL" venue per line.
// Only the name is required.
func ParseVenues(raw string) []schema.Place {
	var venues []schema.Place
	for _, l := range formLines(raw) {
		f := splitLine(l, 4)
		if f[0] == "" {
			continue
		}
		venues = append(venues, schema.Place{Name: f[0], Type: f[1], Address: f[2], URL: f[3]})
	}
	return venues
}

// FormatVenues is the inverse of ParseVenues.
func FormatVenues(venues []schema.Place) string {
	lines := make([]string, len(venues))
	for i, v := range venues {
		lines[i] = strings.Join([]string{v.Name, v.Type, v.Address, v.URL}, " | ")
	}
	return strings.Join(lines, "\n")
}

// ParseBreadcrumbs reads one "Name | URL" crumb per line.
func ParseBreadcrumbs(raw string) []schema.Crumb {
	var crumbs []schema.Crumb
	for _, l := range formLines(raw) {
		f := splitLine(l, 2)
		if f[0] == "" || f[1] == "" {
			continue
		}
		crumbs = append(crumbs, schema.Crumb{Name: f[0], URL: f[1]})
	}
	return crumbs
}

// FormatBreadcrumbs is the inverse of ParseBreadcrumbs.
func FormatBreadcrumbs(crumbs []schema.Crumb) string {
	lines := make([]string, len(crumbs))
	for i, c := range crumbs {
		lines[i] = c.Name + " | " + c.URL
	}
	return strings.Join(lines, "\n")
}

// FormatImageSize renders a byte count for the image list.
func FormatImageSize(n int) string {
	if n < 1<<10 {
		return strconv.Itoa(n) + " B"
	}
	if n < 1<<20 {
		return strconv.Itoa(n>>10) + " KB"
	}
	return strconv.FormatFloat(float64(n)/(1<<20), 'f', 1, 64) + " MB"
}
