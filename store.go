package guidepress

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/eringen/guidepress/schema"
)

// ErrNotFound is returned when a requested guide does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database and provides CRUD operations for guides and images.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS guides (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    date TEXT NOT NULL,
    updated TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL,
    hero_image TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    city TEXT NOT NULL DEFAULT '',
    venues TEXT NOT NULL DEFAULT '',
    faq TEXT NOT NULL DEFAULT '',
    breadcrumbs TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const guideColumns = `slug, title, description, date, updated, tags, hero_image, content, city, venues, faq, breadcrumbs, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuide(r rowScanner) (Guide, error) {
	var g Guide
	var tags, city, venues, faq, crumbs string
	var published int
	if err := r.Scan(&g.Slug, &g.Title, &g.Description, &g.Date, &g.Updated, &tags, &g.HeroImage,
		&g.Content, &city, &venues, &faq, &crumbs, &published); err != nil {
		return Guide{}, err
	}
	g.Tags = ParseTags(tags)
	g.Link = "/guides/" + g.Slug + "/"
	g.Published = published == 1
	if city != "" {
		var p schema.Place
		if err := json.Unmarshal([]byte(city), &p); err != nil {
			return Guide{}, fmt.Errorf("decode city for %s: %w", g.Slug, err)
		}
		g.City = &p
	}
	if err := decodeColumn(venues, &g.Venues); err != nil {
		return Guide{}, fmt.Errorf("decode venues for %s: %w", g.Slug, err)
	}
	if err := decodeColumn(faq, &g.FAQ); err != nil {
		return Guide{}, fmt.Errorf("decode faq for %s: %w", g.Slug, err)
	}
	if err := decodeColumn(crumbs, &g.Breadcrumbs); err != nil {
		return Guide{}, fmt.Errorf("decode breadcrumbs for %s: %w", g.Slug, err)
	}
	return g, nil
}

func decodeColumn[T any](raw string, dst *[]T) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func encodeColumn(v any, empty bool) (string, error) {
	if empty {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) queryGuides(query string, args ...any) ([]Guide, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guides []Guide
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		guides = append(guides, g)
	}
	return guides, rows.Err()
}

// ListGuides returns all published guides ordered by date descending.
// If tag is non-empty, results are filtered to guides containing that tag.
func (s *Store) ListGuides(tag string) ([]Guide, error) {
	if tag == "" {
		return s.queryGuides(`SELECT ` + guideColumns + ` FROM guides WHERE published = 1 ORDER BY date DESC, slug`)
	}
	return s.queryGuides(`SELECT `+guideColumns+` FROM guides WHERE published = 1 AND instr(lower(tags), ',' || ? || ',') > 0 ORDER BY date DESC, slug`,
		normalizeTag(tag))
}

// ListAllGuides returns every guide (published and drafts) ordered by date descending.
func (s *Store) ListAllGuides() ([]Guide, error) {
	return s.queryGuides(`SELECT ` + guideColumns + ` FROM guides ORDER BY date DESC, slug`)
}

// ListTags returns a sorted, deduplicated slice of all tags from published guides.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM guides WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetGuide returns a single published guide by slug.
func (s *Store) GetGuide(slug string) (Guide, error) {
	return scanGuide(s.db.QueryRow(`SELECT `+guideColumns+` FROM guides WHERE slug = ? AND published = 1`, slug))
}

// GetGuideAny returns a guide by slug regardless of published status (for admin).
func (s *Store) GetGuideAny(slug string) (Guide, error) {
	return scanGuide(s.db.QueryRow(`SELECT `+guideColumns+` FROM guides WHERE slug = ?`, slug))
}

// SaveGuide upserts a guide. Tags are normalized to lowercase.
func (s *Store) SaveGuide(g Guide) error {
	if g.Slug == "" {
		return errors.New("guidepress: guide slug is required")
	}
	normalizedTags := make([]string, len(g.Tags))
	for i, t := range g.Tags {
		normalizedTags[i] = normalizeTag(t)
	}
	tagString := "," + strings.Join(normalizedTags, ",") + ","

	city, err := encodeColumn(g.City, g.City == nil)
	if err != nil {
		return fmt.Errorf("encode city: %w", err)
	}
	venues, err := encodeColumn(g.Venues, len(g.Venues) == 0)
	if err != nil {
		return fmt.Errorf("encode venues: %w", err)
	}
	faq, err := encodeColumn(g.FAQ, len(g.FAQ) == 0)
	if err != nil {
		return fmt.Errorf("encode faq: %w", err)
	}
	crumbs, err := encodeColumn(g.Breadcrumbs, len(g.Breadcrumbs) == 0)
	if err != nil {
		return fmt.Errorf("encode breadcrumbs: %w", err)
	}
	published := 0
	if g.Published {
		published = 1
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO guides (`+guideColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Slug, g.Title, g.Description, g.Date, g.Updated, tagString, g.HeroImage, g.Content,
		city, venues, faq, crumbs, published)
	return err
}

// DeleteGuide removes a guide by slug.
func (s *Store) DeleteGuide(slug string) error {
	_, err := s.db.Exec(`DELETE FROM guides WHERE slug = ?`, slug)
	return err
}

// SaveImage records an uploaded image.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether filename is already recorded.
func (s *Store) ImageExists(filename string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteImage removes an image record.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// ParseTags splits a comma-delimited tag string (e.g. ",food,lisbon,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
