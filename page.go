package guidepress

import (
	"html/template"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/guidepress/head"
	"github.com/eringen/guidepress/markdown"
	"github.com/eringen/guidepress/schema"
	"github.com/eringen/guidepress/scrollspy"
)

// FAQSectionID anchors the FAQ block rendered after the guide body.
const FAQSectionID = "guide-faq"

// ReservedIDs are element ids the page layout uses; guide headings never
// take them.
var ReservedIDs = []string{FAQSectionID, scrollspy.PageID, scrollspy.RootID, scrollspy.GraphsID}

// HomeView is the view model for the guide listing.
type HomeView struct {
	Config    SiteConfig
	Meta      PageMeta
	Guides    []Guide
	Tags      []string
	ActiveTag string
	Head      *head.Document
	Graphs    []schema.Graph

	handle *head.Handle
}

// Close releases the structured data mounted for this view.
func (v *HomeView) Close() {
	v.handle.Dispose()
}

// PageView is one rendering of a guide page. It owns the JSON-LD nodes
// mounted into Head for the duration of the render; Close releases them.
type PageView struct {
	Config      SiteConfig
	Meta        PageMeta
	Guide       Guide
	Body        template.HTML
	Sections    []scrollspy.Section
	Breadcrumbs []schema.Crumb
	Related     []Guide
	Head        *head.Document
	Graphs      []schema.Graph

	handle *head.Handle
}

// Close releases the structured data mounted for this view. Safe to call
// more than once.
func (v *PageView) Close() {
	v.handle.Dispose()
}

// GraphsJSON returns the mounted graphs as one JSON array, exactly as they
// appear in the head, for client-side re-injection after a partial swap.
func (v *PageView) GraphsJSON() template.JS {
	return graphsJSON(v.Head)
}

// GraphsJSON returns the mounted graphs as one JSON array.
func (v *HomeView) GraphsJSON() template.JS {
	return graphsJSON(v.Head)
}

func graphsJSON(doc *head.Document) template.JS {
	nodes := doc.Nodes()
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == head.TypeLDJSON {
			parts = append(parts, n.Text)
		}
	}
	return template.JS("[" + strings.Join(parts, ",") + "]")
}

// ActivationOffset is handed to the browser scroll-spy.
func (v *PageView) ActivationOffset() float64 { return v.Config.ActivationOffset }

// HeaderClearance is handed to the browser navigator.
func (v *PageView) HeaderClearance() float64 { return v.Config.HeaderClearance }

// OpenHomeView builds the listing view and mounts the site-level graphs.
func OpenHomeView(cfg SiteConfig, guides []Guide, tags []string, activeTag string, logger echo.Logger) *HomeView {
	graphs := []schema.Graph{
		schema.WebSite(cfg.Name, BuildURL(cfg.URL), cfg.Description),
		schema.Organization(cfg.Name, BuildURL(cfg.URL), cfg.Logo),
	}
	doc := head.NewDocument()
	h := head.NewInjector(doc, head.WithLogger(logger)).Mount(head.Graphs(graphs)...)

	metaURL := BuildURL(cfg.URL)
	if activeTag != "" {
		metaURL += "?tag=" + PathEscape(activeTag)
	}
	return &HomeView{
		Config: cfg,
		Meta: PageMeta{
			Title:       cfg.Name,
			Description: cfg.Description,
			URL:         metaURL,
			OGType:      "website",
		},
		Guides:    guides,
		Tags:      tags,
		ActiveTag: activeTag,
		Head:      doc,
		Graphs:    graphs,
		handle:    h,
	}
}

// OpenPageView composes a guide page: it renders the body, derives the
// section list, builds the page's graphs and mounts them into a fresh head.
// Invalid structured data is logged and left out; the page still renders.
// The caller must Close the view when the render is done.
func OpenPageView(cfg SiteConfig, g Guide, all []Guide, logger echo.Logger) (*PageView, error) {
	body, err := markdown.Render(g.Content, ReservedIDs...)
	if err != nil {
		return nil, err
	}

	sections := make([]scrollspy.Section, 0, len(body.Sections())+1)
	add := func(s scrollspy.Section) {
		var ok bool
		if sections, ok = appendSection(sections, s); !ok {
			logger.Warnf("guide %s: skip section %q: id %q is empty or taken", g.Slug, s.Label, s.ID)
		}
	}
	for _, h := range body.Sections() {
		add(scrollspy.Section{ID: h.ID, Label: h.Text})
	}
	if len(g.FAQ) > 0 {
		add(scrollspy.Section{ID: FAQSectionID, Label: "FAQ"})
	}

	crumbs := GuideBreadcrumbs(cfg, g, logger)
	graphs := []schema.Graph{schema.Organization(cfg.Name, BuildURL(cfg.URL), cfg.Logo)}
	pageGraphs, err := schema.Build(GuidePageData(cfg, g, crumbs))
	if err != nil {
		logger.Errorf("guide %s: structured data: %v", g.Slug, err)
	} else {
		graphs = append(graphs, pageGraphs...)
	}

	doc := head.NewDocument()
	h := head.NewInjector(doc, head.WithLogger(logger)).Mount(head.Graphs(graphs)...)

	return &PageView{
		Config: cfg,
		Meta: PageMeta{
			Title:       g.Title + " | " + cfg.Name,
			Description: g.Description,
			URL:         BuildURL(cfg.URL, "guides", g.Slug),
			OGType:      "article",
			Image:       AbsURL(cfg.URL, g.HeroImage),
		},
		Guide:       g,
		Body:        template.HTML(body.HTML),
		Sections:    sections,
		Breadcrumbs: crumbs,
		Related:     FilterRelatedGuides(g, all),
		Head:        doc,
		Graphs:      graphs,
		handle:      h,
	}, nil
}

// appendSection adds s unless its id is empty or already listed.
func appendSection(sections []scrollspy.Section, s scrollspy.Section) ([]scrollspy.Section, bool) {
	if s.ID == "" {
		return sections, false
	}
	for _, have := range sections {
		if have.ID == s.ID {
			return sections, false
		}
	}
	return append(sections, s), true
}

// GuidePageData maps a guide onto the structured-data builders' input.
func GuidePageData(cfg SiteConfig, g Guide, crumbs []schema.Crumb) schema.PageData {
	modified := g.Updated
	if modified == "" {
		modified = g.Date
	}
	return schema.PageData{
		Article: schema.ArticleData{
			Title:         g.Title,
			Description:   g.Description,
			URL:           BuildURL(cfg.URL, "guides", g.Slug),
			Image:         AbsURL(cfg.URL, g.HeroImage),
			Author:        cfg.Author,
			Publisher:     cfg.Name,
			PublisherLogo: cfg.Logo,
			DatePublished: g.Date,
			DateModified:  modified,
			Keywords:      g.Tags,
		},
		Breadcrumbs: crumbs,
		FAQ:         g.FAQ,
		City:        g.City,
		Venues:      g.Venues,
	}
}

// DefaultBreadcrumbs is Home → Guides → the guide itself.
func DefaultBreadcrumbs(cfg SiteConfig, g Guide) []schema.Crumb {
	return []schema.Crumb{
		{Name: "Home", URL: BuildURL(cfg.URL)},
		{Name: "Guides", URL: BuildURL(cfg.URL, "guides")},
		{Name: g.Title, URL: BuildURL(cfg.URL, "guides", g.Slug)},
	}
}

// ResolveBreadcrumbs returns the guide's own trail resolved against the
// site URL, or the default trail when it has none. When the override is
// invalid the default trail is returned together with the reason.
func ResolveBreadcrumbs(cfg SiteConfig, g Guide) ([]schema.Crumb, error) {
	if len(g.Breadcrumbs) == 0 {
		return DefaultBreadcrumbs(cfg, g), nil
	}
	crumbs := make([]schema.Crumb, len(g.Breadcrumbs))
	for i, c := range g.Breadcrumbs {
		crumbs[i] = schema.Crumb{Name: c.Name, URL: AbsURL(cfg.URL, c.URL)}
	}
	if err := schema.ValidateBreadcrumb(crumbs, BuildURL(cfg.URL)); err != nil {
		return DefaultBreadcrumbs(cfg, g), err
	}
	return crumbs, nil
}

// GuideBreadcrumbs is ResolveBreadcrumbs with problems logged instead of
// returned. A root-only trail is kept but logged for review.
func GuideBreadcrumbs(cfg SiteConfig, g Guide, logger echo.Logger) []schema.Crumb {
	crumbs, err := ResolveBreadcrumbs(cfg, g)
	if err != nil {
		logger.Warnf("guide %s: %v; using default trail", g.Slug, err)
		return crumbs
	}
	if schema.NeedsReview(crumbs) {
		logger.Warnf("guide %s: breadcrumb trail only contains the site root", g.Slug)
	}
	return crumbs
}
