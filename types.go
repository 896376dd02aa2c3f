package guidepress

import "github.com/eringen/guidepress/schema"

// Guide is the core content type stored in SQLite and rendered by templates.
type Guide struct {
	Title       string
	Description string
	Date        string // YYYY-MM-DD, first published
	Updated     string // YYYY-MM-DD, optional
	Tags        []string
	HeroImage   string // site-relative image path
	Link        string
	Slug        string
	Content     string // markdown
	Published   bool

	City        *schema.Place
	Venues      []schema.Place
	FAQ         []schema.FAQEntry
	Breadcrumbs []schema.Crumb // optional override of the default trail
}

// Image is an uploaded, resized image available to guides.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}
