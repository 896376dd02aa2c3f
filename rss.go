package guidepress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	PubDate     string        `xml:"pubDate"`
	GUID        string        `xml:"guid"`
	Categories  []string      `xml:"category"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

func (a *App) renderRSS(c echo.Context, guides []Guide) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(guides))
	for _, g := range guides {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", g.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		guideURL := BuildURL(base, "guides", g.Slug)
		item := rssItem{
			Title:       g.Title,
			Link:        guideURL,
			Description: g.Description,
			PubDate:     pubDate,
			GUID:        guideURL,
			Categories:  g.Tags,
		}
		if g.HeroImage != "" {
			item.Enclosure = &rssEnclosure{URL: AbsURL(base, g.HeroImage), Type: "image/jpeg"}
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
