package guidepress

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/guidepress/schema"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "guides.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func lisbonGuide() Guide {
	return Guide{
		Slug:        "lisbon-food",
		Title:       "Eating Lisbon",
		Description: "Where to eat in Lisbon",
		Date:        "2024-05-01",
		Updated:     "2024-06-10",
		Tags:        []string{"Food", " Portugal "},
		HeroImage:   "/public/uploads/tram.jpg",
		Content:     "## Breakfast\n\nPastéis.\n\n## Dinner\n\nFish.",
		Published:   true,
		City:        &schema.Place{Name: "Lisbon", Description: "Capital of Portugal"},
		Venues: []schema.Place{
			{Name: "Time Out Market", Type: "FoodEstablishment", Address: "Av. 24 de Julho"},
			{Name: "Castelo de São Jorge"},
		},
		FAQ: []schema.FAQEntry{
			{ID: 1, Question: "Is tipping expected?", Answer: "<p>Not <b>required</b>.</p>"},
		},
		Breadcrumbs: []schema.Crumb{
			{Name: "Home", URL: "/"},
			{Name: "Portugal", URL: "/?tag=portugal"},
		},
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetGuide(t *testing.T) {
	s := setupTestStore(t)
	guide := lisbonGuide()

	if err := s.SaveGuide(guide); err != nil {
		t.Fatalf("SaveGuide failed: %v", err)
	}
	got, err := s.GetGuide("lisbon-food")
	if err != nil {
		t.Fatalf("GetGuide failed: %v", err)
	}

	if got.Title != guide.Title {
		t.Errorf("Title = %q, want %q", got.Title, guide.Title)
	}
	if got.Updated != "2024-06-10" {
		t.Errorf("Updated = %q, want %q", got.Updated, "2024-06-10")
	}
	if got.Link != "/guides/lisbon-food/" {
		t.Errorf("Link = %q, want %q", got.Link, "/guides/lisbon-food/")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "food" || got.Tags[1] != "portugal" {
		t.Errorf("Tags = %v, want [food portugal]", got.Tags)
	}
	if got.City == nil || got.City.Name != "Lisbon" {
		t.Errorf("City = %+v, want Lisbon", got.City)
	}
	if len(got.Venues) != 2 || got.Venues[0].Type != "FoodEstablishment" {
		t.Errorf("Venues = %+v", got.Venues)
	}
	if len(got.FAQ) != 1 || got.FAQ[0].Answer != guide.FAQ[0].Answer {
		t.Errorf("FAQ = %+v", got.FAQ)
	}
	if len(got.Breadcrumbs) != 2 || got.Breadcrumbs[1].URL != "/?tag=portugal" {
		t.Errorf("Breadcrumbs = %+v", got.Breadcrumbs)
	}
}

func TestSaveGuideWithoutOptionalBlocks(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveGuide(Guide{Slug: "plain", Title: "Plain", Date: "2024-01-01", Published: true}); err != nil {
		t.Fatalf("SaveGuide failed: %v", err)
	}
	got, err := s.GetGuide("plain")
	if err != nil {
		t.Fatalf("GetGuide failed: %v", err)
	}
	if got.City != nil || got.Venues != nil || got.FAQ != nil || got.Breadcrumbs != nil {
		t.Errorf("expected empty optional blocks, got %+v", got)
	}
	if got.Tags != nil {
		t.Errorf("Tags = %v, want nil", got.Tags)
	}
}

func TestSaveGuideRequiresSlug(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveGuide(Guide{Title: "No slug"}); err == nil {
		t.Fatal("expected error for empty slug")
	}
}

func TestSaveGuideUpdate(t *testing.T) {
	s := setupTestStore(t)
	guide := lisbonGuide()
	if err := s.SaveGuide(guide); err != nil {
		t.Fatalf("SaveGuide failed: %v", err)
	}

	guide.Title = "Eating Lisbon, Again"
	guide.FAQ = nil
	if err := s.SaveGuide(guide); err != nil {
		t.Fatalf("SaveGuide update failed: %v", err)
	}

	got, err := s.GetGuide(guide.Slug)
	if err != nil {
		t.Fatalf("GetGuide failed: %v", err)
	}
	if got.Title != "Eating Lisbon, Again" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.FAQ != nil {
		t.Errorf("FAQ = %+v, want nil after update", got.FAQ)
	}
}

func TestDraftsAreHidden(t *testing.T) {
	s := setupTestStore(t)
	draft := lisbonGuide()
	draft.Published = false
	if err := s.SaveGuide(draft); err != nil {
		t.Fatalf("SaveGuide failed: %v", err)
	}

	if _, err := s.GetGuide(draft.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGuide on draft: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetGuideAny(draft.Slug); err != nil {
		t.Errorf("GetGuideAny on draft failed: %v", err)
	}

	guides, err := s.ListGuides("")
	if err != nil {
		t.Fatalf("ListGuides failed: %v", err)
	}
	if len(guides) != 0 {
		t.Errorf("ListGuides returned %d guides, want 0", len(guides))
	}
	all, err := s.ListAllGuides()
	if err != nil {
		t.Fatalf("ListAllGuides failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListAllGuides returned %d guides, want 1", len(all))
	}
	tags, err := s.ListTags()
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("ListTags = %v, want none from drafts", tags)
	}
}

func TestListGuidesByTagAndOrder(t *testing.T) {
	s := setupTestStore(t)
	for _, g := range []Guide{
		{Slug: "porto", Title: "Porto", Date: "2024-02-01", Tags: []string{"portugal"}, Published: true},
		{Slug: "lisbon", Title: "Lisbon", Date: "2024-03-01", Tags: []string{"Portugal", "food"}, Published: true},
		{Slug: "rome", Title: "Rome", Date: "2024-04-01", Tags: []string{"italy", "food"}, Published: true},
	} {
		if err := s.SaveGuide(g); err != nil {
			t.Fatalf("SaveGuide(%s) failed: %v", g.Slug, err)
		}
	}

	guides, err := s.ListGuides("")
	if err != nil {
		t.Fatalf("ListGuides failed: %v", err)
	}
	if len(guides) != 3 || guides[0].Slug != "rome" || guides[2].Slug != "porto" {
		t.Errorf("ListGuides order = %v", slugs(guides))
	}

	pt, err := s.ListGuides("PORTUGAL")
	if err != nil {
		t.Fatalf("ListGuides(tag) failed: %v", err)
	}
	if got := slugs(pt); len(got) != 2 || got[0] != "lisbon" || got[1] != "porto" {
		t.Errorf("ListGuides(portugal) = %v, want [lisbon porto]", got)
	}

	tags, err := s.ListTags()
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	want := []string{"food", "italy", "portugal"}
	if len(tags) != len(want) {
		t.Fatalf("ListTags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestDeleteGuide(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveGuide(lisbonGuide()); err != nil {
		t.Fatalf("SaveGuide failed: %v", err)
	}
	if err := s.DeleteGuide("lisbon-food"); err != nil {
		t.Fatalf("DeleteGuide failed: %v", err)
	}
	if _, err := s.GetGuideAny("lisbon-food"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestImages(t *testing.T) {
	s := setupTestStore(t)
	older := Image{Filename: "a.jpg", OriginalName: "A.png", Width: 1200, Height: 800, Size: 1024,
		UploadedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)}
	newer := Image{Filename: "b.jpg", OriginalName: "B.png", Width: 640, Height: 480, Size: 512,
		UploadedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)}
	for _, img := range []Image{older, newer} {
		if err := s.SaveImage(img); err != nil {
			t.Fatalf("SaveImage failed: %v", err)
		}
	}

	images, err := s.ListImages()
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(images) != 2 || images[0].Filename != "b.jpg" {
		t.Errorf("ListImages = %+v, want newest first", images)
	}

	exists, err := s.ImageExists("a.jpg")
	if err != nil || !exists {
		t.Errorf("ImageExists(a.jpg) = %v, %v", exists, err)
	}
	if err := s.DeleteImage("a.jpg"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	exists, err = s.ImageExists("a.jpg")
	if err != nil || exists {
		t.Errorf("ImageExists after delete = %v, %v", exists, err)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{",food,lisbon,", []string{"food", "lisbon"}},
		{"food", []string{"food"}},
		{",,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := ParseTags(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func slugs(guides []Guide) []string {
	out := make([]string, len(guides))
	for i, g := range guides {
		out[i] = g.Slug
	}
	return out
}
