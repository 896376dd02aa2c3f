// Package views provides default templates for a guidepress site. Sites that
// want their own markup supply a guidepress.ViewFuncs of their own; these
// templates show the markup the browser client expects.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/guidepress"
	"github.com/eringen/guidepress/head"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages maps each page to the files parsed on top of layout.html.
var pages = map[string][]string{
	"home":            {"home.html"},
	"guide":           {"guide.html"},
	"admin_login":     {"admin_login.html"},
	"admin_dashboard": {"admin_dashboard.html", "admin_form.html"},
	"admin_form":      {"admin_form.html"},
	"admin_images":    {"admin_images.html"},
	"not_found":       {"errors.html"},
	"server_error":    {"errors.html"},
}

var answerPolicy = bluemonday.UGCPolicy()

// Set is a parsed template set bound to one site.
type Set struct {
	cfg   guidepress.SiteConfig
	pages map[string]*template.Template
}

// Parse loads the embedded templates.
func Parse(cfg guidepress.SiteConfig) (*Set, error) {
	base, err := template.New("base").Funcs(funcs()).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("views: parse layout: %w", err)
	}
	s := &Set{cfg: cfg, pages: make(map[string]*template.Template, len(pages))}
	for name, files := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, err := t.ParseFS(templateFS, "templates/"+f); err != nil {
				return nil, fmt.Errorf("views: parse %s: %w", f, err)
			}
		}
		s.pages[name] = t
	}
	return s, nil
}

// New returns ViewFuncs backed by the embedded templates.
func New(cfg guidepress.SiteConfig) (guidepress.ViewFuncs, error) {
	s, err := Parse(cfg)
	if err != nil {
		return guidepress.ViewFuncs{}, err
	}
	return s.ViewFuncs(), nil
}

// ViewFuncs adapts the set to the engine's view hooks. Partials render the
// contents of the swapped page container plus a <title> for htmx.
func (s *Set) ViewFuncs() guidepress.ViewFuncs {
	return guidepress.ViewFuncs{
		Home:         func(v *guidepress.HomeView) templ.Component { return s.render("home", "layout", v) },
		HomePartial:  func(v *guidepress.HomeView) templ.Component { return s.render("home", "partial", v) },
		Guide:        func(v *guidepress.PageView) templ.Component { return s.render("guide", "layout", v) },
		GuidePartial: func(v *guidepress.PageView) templ.Component { return s.render("guide", "partial", v) },
		AdminLogin: func(showError bool, csrf string) templ.Component {
			return s.render("admin_login", "layout", s.data("Admin", csrf, map[string]any{"ShowError": showError}))
		},
		AdminDashboard: func(guides []guidepress.Guide, msg, csrf string) templ.Component {
			return s.render("admin_dashboard", "layout", s.data("Admin", csrf, map[string]any{
				"Guides":  guides,
				"Message": msg,
				"Guide":   guidepress.Guide{},
			}))
		},
		AdminForm: func(g guidepress.Guide, csrf string) templ.Component {
			return s.render("admin_form", "form", s.data("Admin", csrf, map[string]any{"Guide": g}))
		},
		AdminImages: func(images []guidepress.Image, csrf string) templ.Component {
			return s.render("admin_images", "images", s.data("Admin", csrf, map[string]any{"Images": images}))
		},
		NotFound: func() templ.Component {
			return s.render("not_found", "layout", s.data("Not found", "", map[string]any{"Code": 404}))
		},
		ServerError: func() templ.Component {
			return s.render("server_error", "layout", s.data("Something went wrong", "", map[string]any{"Code": 500}))
		},
	}
}

func (s *Set) data(title, csrf string, extra map[string]any) map[string]any {
	extra["Config"] = s.cfg
	extra["CSRF"] = csrf
	extra["Meta"] = guidepress.PageMeta{Title: title + " | " + s.cfg.Name}
	return extra
}

func (s *Set) render(page, name string, data any) templ.Component {
	t := s.pages[page]
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"headNodes":         headNodes,
		"answer":            answerHTML,
		"tagClass":          TagClass,
		"joinTags":          guidepress.JoinTags,
		"formatFAQ":         guidepress.FormatFAQ,
		"formatVenues":      guidepress.FormatVenues,
		"formatBreadcrumbs": guidepress.FormatBreadcrumbs,
		"formatSize":        guidepress.FormatImageSize,
		"uploadPath":        guidepress.UploadPath,
	}
}

func headNodes(doc *head.Document) (template.HTML, error) {
	var b strings.Builder
	if err := doc.Render(&b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func answerHTML(s string) template.HTML {
	return template.HTML(answerPolicy.Sanitize(s))
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag--active"
	}
	return "tag"
}
