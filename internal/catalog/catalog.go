// Package catalog holds the static movie list and the search filter over it.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed movies.yaml
var defaultCatalog []byte

// placeholderHost marks poster URLs that should be replaced by generated artwork.
const placeholderHost = "placehold.co"

// ErrNotFound is returned when a movie id is not in the catalog.
var ErrNotFound = errors.New("movie not found")

// Movie is one catalog entry.
type Movie struct {
	ID          int     `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Year        int     `yaml:"year" json:"year"`
	Genre       string  `yaml:"genre" json:"genre"`
	Description string  `yaml:"description" json:"description"`
	Rating      float64 `yaml:"rating" json:"rating"`
	AgeRating   string  `yaml:"age_rating" json:"ageRating"`
	PosterURL   string  `yaml:"poster_url" json:"posterUrl"`
}

// NeedsPoster reports whether the movie only has placeholder artwork.
func (m Movie) NeedsPoster() bool {
	return strings.Contains(m.PosterURL, placeholderHost)
}

// InitialStars converts the 0-10 rating into a star count out of total.
func (m Movie) InitialStars(total int) int {
	stars := int(math.Round(m.Rating / 2))
	return max(0, min(stars, total))
}

type catalogFile struct {
	Movies []Movie `yaml:"movies"`
}

// Catalog is a read-mostly list of movies that can be swapped atomically.
type Catalog struct {
	movies atomic.Pointer[[]Movie]
}

// New creates a catalog over the given movies.
func New(movies []Movie) *Catalog {
	c := &Catalog{}
	c.replace(movies)
	return c
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	movies, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return New(movies), nil
}

// Open loads a catalog from path, or the embedded one when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	movies, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(movies), nil
}

// ReadFile reads and parses a catalog YAML file.
func ReadFile(path string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	movies, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return movies, nil
}

// Parse decodes catalog YAML and checks that ids are present and unique.
func Parse(data []byte) ([]Movie, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(f.Movies))
	for i, m := range f.Movies {
		if m.ID <= 0 {
			return nil, fmt.Errorf("movie %d (%q): id must be positive", i, m.Title)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate movie id %d", m.ID)
		}
		if strings.TrimSpace(m.Title) == "" {
			return nil, fmt.Errorf("movie %d: title is required", m.ID)
		}
		if m.Rating < 0 || m.Rating > 10 {
			return nil, fmt.Errorf("movie %d: rating %.1f out of range 0-10", m.ID, m.Rating)
		}
		seen[m.ID] = true
	}
	return f.Movies, nil
}

// All returns the current movie list. Callers must not modify it.
func (c *Catalog) All() []Movie {
	return *c.movies.Load()
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.All())
}

// Get returns the movie with the given id.
func (c *Catalog) Get(id int) (Movie, error) {
	for _, m := range c.All() {
		if m.ID == id {
			return m, nil
		}
	}
	return Movie{}, ErrNotFound
}

// Search filters the current list by query. See Filter.
func (c *Catalog) Search(query string) []Movie {
	return Filter(c.All(), query)
}

func (c *Catalog) replace(movies []Movie) {
	list := make([]Movie, len(movies))
	copy(list, movies)
	c.movies.Store(&list)
}
