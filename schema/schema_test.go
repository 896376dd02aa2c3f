package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage() PageData {
	return PageData{
		Article: ArticleData{
			Title:         "Three Days in Lisbon",
			Description:   "Where to stay, eat and wander.",
			URL:           "https://guides.example.com/guides/lisbon/",
			Author:        "Ana",
			Publisher:     "Guides",
			DatePublished: "2026-03-01",
			Keywords:      []string{"portugal", "city-break"},
		},
		Breadcrumbs: []Crumb{
			{Name: "Home", URL: "https://guides.example.com/"},
			{Name: "Guides", URL: "https://guides.example.com/guides/"},
			{Name: "Lisbon", URL: "https://guides.example.com/guides/lisbon/"},
		},
		FAQ: []FAQEntry{
			{ID: 1, Question: "Is Lisbon walkable?", Answer: "<p>Yes, but <strong>hilly</strong>.</p>"},
		},
		City:   &Place{Name: "Lisbon", Description: "Capital of Portugal"},
		Venues: []Place{{Name: "Time Out Market", Type: "FoodEstablishment"}, {Name: "Belém Tower"}},
	}
}

func TestBuildProducesValidJSONForEveryBlock(t *testing.T) {
	graphs, err := Build(samplePage())
	require.NoError(t, err)
	require.Len(t, graphs, 5)

	types := make([]string, 0, len(graphs))
	for _, g := range graphs {
		b, err := g.Marshal()
		require.NoError(t, err)
		assert.True(t, json.Valid(b), "invalid JSON: %s", b)

		var obj map[string]any
		require.NoError(t, json.Unmarshal(b, &obj))
		assert.Equal(t, Context, obj["@context"])
		types = append(types, obj["@type"].(string))
	}
	assert.Equal(t, []string{"Article", "BreadcrumbList", "FAQPage", "City", "ItemList"}, types)
}

func TestBuildOmitsEmptyOptionalBlocks(t *testing.T) {
	page := samplePage()
	page.FAQ = nil
	page.City = nil
	page.Venues = []Place{}
	page.Breadcrumbs = nil

	graphs, err := Build(page)
	require.NoError(t, err)
	require.Len(t, graphs, 1)

	b, err := graphs[0].Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "FAQPage")
}

func TestFAQPageEmptyIsNil(t *testing.T) {
	assert.Nil(t, FAQPage(nil))
	assert.Nil(t, FAQPage([]FAQEntry{}))
}

func TestFAQAnswerIsPlainText(t *testing.T) {
	g := FAQPage([]FAQEntry{{ID: 7, Question: "Q?", Answer: "<p>Fish &amp; chips\n  <em>daily</em></p>"}})
	require.Len(t, g, 1)
	qs := g[0]["mainEntity"].([]Object)
	answer := qs[0]["acceptedAnswer"].(Object)
	assert.Equal(t, "Fish & chips daily", answer["text"])
}

func TestArticleRejectsMissingFields(t *testing.T) {
	cases := []ArticleData{
		{Description: "d", URL: "/x/"},
		{Title: "t", URL: "/x/"},
		{Title: "t", Description: "d", URL: "relative/path"},
		{Title: "t", Description: "d", URL: "//cdn.example.com/x"},
		{Title: "t", Description: "d"},
	}
	for _, c := range cases {
		_, err := Article(c)
		assert.True(t, errors.Is(err, ErrInvalidPageData), "expected ErrInvalidPageData for %+v, got %v", c, err)
	}

	_, err := Article(ArticleData{Title: "t", Description: "d", URL: "/guides/t/"})
	assert.NoError(t, err)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	page := samplePage()
	before, err := json.Marshal(page)
	require.NoError(t, err)

	_, err = Build(page)
	require.NoError(t, err)

	after, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestBreadcrumbPositions(t *testing.T) {
	g := BreadcrumbList(samplePage().Breadcrumbs)
	require.Len(t, g, 1)
	items := g[0]["itemListElement"].([]Object)
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i+1, it["position"])
	}
	assert.Nil(t, BreadcrumbList(nil))
}

func TestValidateBreadcrumb(t *testing.T) {
	root := "https://guides.example.com"
	crumbs := samplePage().Breadcrumbs

	assert.NoError(t, ValidateBreadcrumb(crumbs, root))
	assert.ErrorIs(t, ValidateBreadcrumb(nil, root), ErrInvalidPageData)
	assert.ErrorIs(t, ValidateBreadcrumb(crumbs[1:], root), ErrInvalidPageData)

	cyclic := append(append([]Crumb{}, crumbs...), Crumb{Name: "Back", URL: "https://guides.example.com/guides"})
	assert.ErrorIs(t, ValidateBreadcrumb(cyclic, root), ErrInvalidPageData)
}

func TestNeedsReview(t *testing.T) {
	assert.True(t, NeedsReview([]Crumb{{Name: "Home", URL: "/"}}))
	assert.False(t, NeedsReview(samplePage().Breadcrumbs))
	assert.False(t, NeedsReview(nil))
}

func TestGraphMarshalShapes(t *testing.T) {
	single := Organization("Guides", "https://guides.example.com/", "")
	b, err := single.Marshal()
	require.NoError(t, err)
	assert.Equal(t, byte('{'), b[0])

	multi := Graph{single[0], WebSite("Guides", "https://guides.example.com/", "")[0]}
	b, err = multi.Marshal()
	require.NoError(t, err)
	assert.Equal(t, byte('['), b[0])
}

func TestGraphMarshalReportsUnserializableValues(t *testing.T) {
	g := Graph{{"@type": "Thing", "live": make(chan int)}}
	_, err := g.Marshal()
	assert.Error(t, err)
}
