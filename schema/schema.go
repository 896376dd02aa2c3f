// Package schema builds schema.org structured-data graphs for guide pages.
//
// Every builder is a pure function: it reads its arguments, never mutates
// them, and returns fresh maps. Optional blocks with no content come back
// as a nil Graph so callers can concatenate results without emitting empty
// JSON-LD.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Context is the JSON-LD vocabulary used by every builder.
const Context = "https://schema.org"

// ErrInvalidPageData is returned when required page fields are missing or malformed.
var ErrInvalidPageData = errors.New("schema: invalid page data")

// Object is a single schema.org node.
type Object = map[string]any

// Graph is an ordered sequence of schema objects.
type Graph []Object

// MarshalJSON encodes a single-object graph as that object and a longer
// graph as a JSON array.
func (g Graph) MarshalJSON() ([]byte, error) {
	switch len(g) {
	case 0:
		return []byte("[]"), nil
	case 1:
		return json.Marshal(g[0])
	default:
		return json.Marshal([]Object(g))
	}
}

// Marshal serializes g, reporting values that cannot be encoded.
func (g Graph) Marshal() ([]byte, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal graph: %w", err)
	}
	return b, nil
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FAQEntry is a question/answer pair. Answer may contain HTML.
type FAQEntry struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Place describes a city or a venue.
type Place struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"` // schema.org type, e.g. "TouristAttraction", "Restaurant"
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	URL         string `json:"url,omitempty"`
	Image       string `json:"image,omitempty"`
}

// ArticleData carries the fields of an Article block.
type ArticleData struct {
	Title         string
	Description   string
	URL           string // absolute or site-relative
	Image         string
	Author        string
	Publisher     string
	PublisherLogo string
	DatePublished string
	DateModified  string
	Keywords      []string
}

// PageData is everything a guide page contributes to its structured data.
type PageData struct {
	Article     ArticleData
	Breadcrumbs []Crumb
	FAQ         []FAQEntry
	City        *Place
	Venues      []Place
}

var stripPolicy = bluemonday.StrictPolicy()

// Organization returns an Organization block.
func Organization(name, url, logo string) Graph {
	m := Object{
		"@context": Context,
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logo != "" {
		m["logo"] = logo
	}
	return Graph{m}
}

// WebSite returns a WebSite block.
func WebSite(name, url, description string) Graph {
	m := Object{
		"@context": Context,
		"@type":    "WebSite",
		"name":     name,
		"url":      url,
	}
	if description != "" {
		m["description"] = description
	}
	return Graph{m}
}

// Article returns an Article block for a guide.
func Article(d ArticleData) (Graph, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidPageData)
	}
	if strings.TrimSpace(d.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidPageData)
	}
	if !validURL(d.URL) {
		return nil, fmt.Errorf("%w: url %q must be absolute or site-relative", ErrInvalidPageData, d.URL)
	}
	m := Object{
		"@context":    Context,
		"@type":       "Article",
		"headline":    d.Title,
		"description": d.Description,
		"url":         d.URL,
		"mainEntityOfPage": Object{
			"@type": "WebPage",
			"@id":   d.URL,
		},
	}
	if d.Image != "" {
		m["image"] = d.Image
	}
	if d.Author != "" {
		m["author"] = Object{"@type": "Person", "name": d.Author}
	}
	if d.Publisher != "" {
		pub := Object{"@type": "Organization", "name": d.Publisher}
		if d.PublisherLogo != "" {
			pub["logo"] = Object{"@type": "ImageObject", "url": d.PublisherLogo}
		}
		m["publisher"] = pub
	}
	if d.DatePublished != "" {
		m["datePublished"] = d.DatePublished
	}
	if d.DateModified != "" {
		m["dateModified"] = d.DateModified
	}
	if len(d.Keywords) > 0 {
		m["keywords"] = strings.Join(d.Keywords, ", ")
	}
	return Graph{m}, nil
}

// BreadcrumbList returns a BreadcrumbList block, or nil for an empty trail.
func BreadcrumbList(crumbs []Crumb) Graph {
	if len(crumbs) == 0 {
		return nil
	}
	el := make([]Object, 0, len(crumbs))
	for i, c := range crumbs {
		el = append(el, Object{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     c.URL,
		})
	}
	return Graph{{
		"@context":        Context,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}}
}

// FAQPage returns a FAQPage block, or nil when there are no entries.
func FAQPage(entries []FAQEntry) Graph {
	if len(entries) == 0 {
		return nil
	}
	qs := make([]Object, 0, len(entries))
	for _, e := range entries {
		qs = append(qs, Object{
			"@type": "Question",
			"name":  e.Question,
			"acceptedAnswer": Object{
				"@type": "Answer",
				"text":  PlainText(e.Answer),
			},
		})
	}
	return Graph{{
		"@context":   Context,
		"@type":      "FAQPage",
		"mainEntity": qs,
	}}
}

// City returns a City block.
func City(p Place) Graph {
	m := placeObject(p, "City")
	m["@context"] = Context
	return Graph{m}
}

// Venues returns an ItemList of venue blocks, or nil when there are none.
func Venues(places []Place) Graph {
	if len(places) == 0 {
		return nil
	}
	items := make([]Object, 0, len(places))
	for i, p := range places {
		items = append(items, Object{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     placeObject(p, "TouristAttraction"),
		})
	}
	return Graph{{
		"@context":        Context,
		"@type":           "ItemList",
		"itemListElement": items,
	}}
}

// Build composes every block a guide page needs, in a fixed order:
// Article, BreadcrumbList, FAQPage, City, venues. Absent optional blocks
// are omitted.
func Build(d PageData) ([]Graph, error) {
	article, err := Article(d.Article)
	if err != nil {
		return nil, err
	}
	graphs := []Graph{article}
	if g := BreadcrumbList(d.Breadcrumbs); g != nil {
		graphs = append(graphs, g)
	}
	if g := FAQPage(d.FAQ); g != nil {
		graphs = append(graphs, g)
	}
	if d.City != nil && d.City.Name != "" {
		graphs = append(graphs, City(*d.City))
	}
	if g := Venues(d.Venues); g != nil {
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// ValidateBreadcrumb checks that the trail starts at rootURL and never
// revisits a URL.
func ValidateBreadcrumb(crumbs []Crumb, rootURL string) error {
	if len(crumbs) == 0 {
		return fmt.Errorf("%w: empty breadcrumb trail", ErrInvalidPageData)
	}
	if normalizeURL(crumbs[0].URL) != normalizeURL(rootURL) {
		return fmt.Errorf("%w: breadcrumb must start at %q, got %q", ErrInvalidPageData, rootURL, crumbs[0].URL)
	}
	seen := make(map[string]struct{}, len(crumbs))
	for _, c := range crumbs {
		u := normalizeURL(c.URL)
		if _, dup := seen[u]; dup {
			return fmt.Errorf("%w: breadcrumb revisits %q", ErrInvalidPageData, c.URL)
		}
		seen[u] = struct{}{}
	}
	return nil
}

// NeedsReview reports a trail that only contains the site root.
func NeedsReview(crumbs []Crumb) bool {
	return len(crumbs) == 1
}

// PlainText strips markup from rich answer content.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(stripPolicy.Sanitize(s))), " ")
}

func placeObject(p Place, defaultType string) Object {
	typ := p.Type
	if typ == "" {
		typ = defaultType
	}
	m := Object{
		"@type": typ,
		"name":  p.Name,
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.Address != "" {
		m["address"] = Object{"@type": "PostalAddress", "streetAddress": p.Address}
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	return m
}

func validURL(u string) bool {
	switch {
	case strings.HasPrefix(u, "/"):
		return !strings.HasPrefix(u, "//")
	case strings.HasPrefix(u, "https://"), strings.HasPrefix(u, "http://"):
		return len(u) > len("https://")
	}
	return false
}

func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return "/"
	}
	return strings.TrimRight(u, "/") + "/"
}
