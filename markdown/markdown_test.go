package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

const guideBody = `# Lisbon

Intro paragraph.

## Where to Stay

Alfama or Baixa.

### Budget

Hostels.

## Getting Around

Tram 28.

## Where to Stay
`

func TestRenderHeadingsGetIDs(t *testing.T) {
	doc, err := Render(guideBody)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(doc.Headings) != 5 {
		t.Fatalf("got %d headings, want 5: %+v", len(doc.Headings), doc.Headings)
	}
	if doc.Headings[1].ID != "where-to-stay" {
		t.Errorf("ID = %q, want %q", doc.Headings[1].ID, "where-to-stay")
	}
	if !strings.Contains(doc.HTML, `id="where-to-stay"`) {
		t.Errorf("HTML should keep heading ids: %q", doc.HTML)
	}
}

func TestRenderSectionsAreLevelTwoInOrder(t *testing.T) {
	doc, err := Render(guideBody)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	sections := doc.Sections()
	want := []string{"Where to Stay", "Getting Around", "Where to Stay"}
	if len(sections) != len(want) {
		t.Fatalf("got %d sections, want %d", len(sections), len(want))
	}
	for i, s := range sections {
		if s.Text != want[i] {
			t.Errorf("section %d = %q, want %q", i, s.Text, want[i])
		}
	}
	if sections[0].ID == sections[2].ID {
		t.Errorf("duplicate headings should get distinct ids, both %q", sections[0].ID)
	}
}

func TestRenderMarksSectionHeadings(t *testing.T) {
	doc, err := Render("## Getting Around\n\n### Budget\n")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(doc.HTML, `data-section="Getting Around"`) {
		t.Errorf("h2 should carry data-section: %q", doc.HTML)
	}
	if strings.Count(doc.HTML, "data-section") != 1 {
		t.Errorf("only h2 should carry data-section: %q", doc.HTML)
	}
}

func TestRenderStripsRawHTML(t *testing.T) {
	doc, err := Render("Hello <script>alert(1)</script> world\n\n<iframe src=\"https://evil\"></iframe>")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(doc.HTML, "<script") || strings.Contains(doc.HTML, "<iframe") {
		t.Errorf("raw HTML should not survive: %q", doc.HTML)
	}
}

func TestRenderAffiliateLinks(t *testing.T) {
	doc, err := Render("[Book a room](https://hotels.example.com/?aff=42)")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(doc.HTML, `href="https://hotels.example.com/?aff=42"`) {
		t.Errorf("link href missing: %q", doc.HTML)
	}
	if !strings.Contains(doc.HTML, "nofollow") {
		t.Errorf("external links should be nofollow: %q", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `target="_blank"`) {
		t.Errorf("external links should open in a new tab: %q", doc.HTML)
	}
}

func TestRenderTables(t *testing.T) {
	doc, err := Render("| Month | Temp |\n|---|---|\n| May | 22 |\n")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(doc.HTML, "<table>") || !strings.Contains(doc.HTML, "<td>22</td>") {
		t.Errorf("GFM table not rendered: %q", doc.HTML)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("**bold**").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<strong>bold</strong>") {
		t.Errorf("got %q", buf.String())
	}
}

func TestRenderAvoidsReservedIDs(t *testing.T) {
	doc, err := Render("## Guide FAQ\n\n## Guide\n\n## Page\n\n## Page\n", "guide-faq", "guide", "page")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := []string{"guide-faq-1", "guide-1", "page-1", "page-2"}
	if len(doc.Headings) != len(want) {
		t.Fatalf("got %d headings, want %d", len(doc.Headings), len(want))
	}
	for i, h := range doc.Headings {
		if h.ID != want[i] {
			t.Errorf("heading %d ID = %q, want %q", i, h.ID, want[i])
		}
	}
	if strings.Contains(doc.HTML, `id="guide-faq"`) || strings.Contains(doc.HTML, `id="page"`) {
		t.Errorf("HTML uses a reserved id: %q", doc.HTML)
	}
}
