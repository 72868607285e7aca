package content

import (
	_ "embed"
	"fmt"
	"sync"

	"spectrumhub/models"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed pages.yaml
var pagesYAML []byte

//go:embed sample_stories.yaml
var sampleStoriesYAML []byte

// Card is one block of text inside a page section.
type Card struct {
	Title string   `yaml:"title" json:"title"`
	Body  string   `yaml:"body,omitempty" json:"body,omitempty"`
	Items []string `yaml:"items,omitempty" json:"items,omitempty"`
	Link  string   `yaml:"link,omitempty" json:"link,omitempty"`
}

type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Cards   []Card `yaml:"cards" json:"cards"`
}

// Page is a static informational page.
type Page struct {
	Slug     string    `yaml:"slug" json:"slug"`
	Title    string    `yaml:"title" json:"title"`
	Subtitle string    `yaml:"subtitle" json:"subtitle"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// PageSummary is the listing entry for a page.
type PageSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type sampleStory struct {
	Title        string `yaml:"title"`
	AuthorName   string `yaml:"author_name"`
	Relationship string `yaml:"relationship"`
	Content      string `yaml:"content"`
}

var (
	loadOnce sync.Once
	pages    []Page
	bySlug   map[string]Page
	samples  []sampleStory
	loadErr  error
)

func load() {
	if err := yaml.Unmarshal(pagesYAML, &pages); err != nil {
		loadErr = fmt.Errorf("failed to parse pages: %w", err)
		return
	}
	if err := yaml.Unmarshal(sampleStoriesYAML, &samples); err != nil {
		loadErr = fmt.Errorf("failed to parse sample stories: %w", err)
		return
	}
	bySlug = lo.KeyBy(pages, func(p Page) string { return p.Slug })
}

// Pages returns every page in display order.
func Pages() ([]Page, error) {
	loadOnce.Do(load)
	return pages, loadErr
}

// Summaries lists slug and title of every page.
func Summaries() ([]PageSummary, error) {
	all, err := Pages()
	if err != nil {
		return nil, err
	}
	return lo.Map(all, func(p Page, _ int) PageSummary {
		return PageSummary{Slug: p.Slug, Title: p.Title}
	}), nil
}

// PageBySlug looks up a page by slug. The bool is false for unknown slugs.
func PageBySlug(slug string) (Page, bool, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Page{}, false, loadErr
	}
	p, ok := bySlug[slug]
	return p, ok, nil
}

// SampleStories returns the stories used to seed an empty story board.
// They are returned unsaved and already approved.
func SampleStories() ([]models.Story, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	return lo.Map(samples, func(s sampleStory, _ int) models.Story {
		return models.Story{
			Title:        s.Title,
			AuthorName:   s.AuthorName,
			Relationship: s.Relationship,
			Content:      s.Content,
			Approved:     true,
		}
	}), nil
}
