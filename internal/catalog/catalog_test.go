package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMovies() []Movie {
	return []Movie{
		{ID: 1, Title: "Inception", Genre: "Sci-Fi", Rating: 8.8, PosterURL: "https://placehold.co/500x750.png"},
		{ID: 2, Title: "The Dark Knight", Genre: "Action", Rating: 9.0, PosterURL: "https://image.example/dk.jpg"},
		{ID: 3, Title: "Paddington 2", Genre: "Comedy", Rating: 7.8},
		{ID: 4, Title: "Action Jackson", Genre: "Comedy", Rating: 4.9},
	}
}

func TestFilter(t *testing.T) {
	movies := testMovies()

	t.Run("empty query returns input unchanged", func(t *testing.T) {
		got := Filter(movies, "")
		assert.Equal(t, movies, got)
	})

	t.Run("matches title case-insensitively", func(t *testing.T) {
		got := Filter(movies, "dark")
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].ID)
	})

	t.Run("matches genre", func(t *testing.T) {
		got := Filter(movies, "COMEDY")
		require.Len(t, got, 2)
		assert.Equal(t, 3, got[0].ID)
		assert.Equal(t, 4, got[1].ID)
	})

	t.Run("matches title or genre in original order", func(t *testing.T) {
		got := Filter(movies, "action")
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].ID)
		assert.Equal(t, 4, got[1].ID)
	})

	t.Run("no match", func(t *testing.T) {
		got := Filter(movies, "western")
		assert.Empty(t, got)
	})

	t.Run("result is exactly the matching subset", func(t *testing.T) {
		for _, q := range []string{"a", "In", "sci", "2", "zz"} {
			got := Filter(movies, q)
			var want []Movie
			for _, m := range movies {
				lq := strings.ToLower(q)
				if strings.Contains(strings.ToLower(m.Title), lq) || strings.Contains(strings.ToLower(m.Genre), lq) {
					want = append(want, m)
				}
			}
			assert.ElementsMatch(t, want, got, "query %q", q)
		}
	})
}

func TestMovie_NeedsPoster(t *testing.T) {
	movies := testMovies()
	assert.True(t, movies[0].NeedsPoster())
	assert.False(t, movies[1].NeedsPoster())
	assert.False(t, movies[2].NeedsPoster())
}

func TestMovie_InitialStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   int
	}{
		{0, 0},
		{4.9, 2},
		{5.0, 3},
		{7.8, 4},
		{9.0, 5},
		{10, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Movie{Rating: tt.rating}.InitialStars(5), "rating %.1f", tt.rating)
	}

	assert.Equal(t, 3, Movie{Rating: 10}.InitialStars(3))
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 10)

	m, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Inception", m.Title)

	m, err = c.Get(13)
	require.NoError(t, err)
	assert.Equal(t, "1917", m.Title)

	_, err = c.Get(9999)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, m := range c.All() {
		assert.Contains(t, Genres, m.Genre, "movie %q has an unknown genre", m.Title)
	}
}

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		movies, err := Parse([]byte(`
movies:
  - id: 7
    title: Heat
    year: 1995
    genre: Crime
    rating: 8.3
    age_rating: R
    poster_url: https://placehold.co/500x750.png
`))
		require.NoError(t, err)
		require.Len(t, movies, 1)
		assert.Equal(t, "Heat", movies[0].Title)
		assert.Equal(t, "R", movies[0].AgeRating)
		assert.True(t, movies[0].NeedsPoster())
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := Parse([]byte("movies:\n  - {id: 1, title: A}\n  - {id: 1, title: B}\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := Parse([]byte("movies:\n  - {title: A}\n"))
		assert.Error(t, err)
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := Parse([]byte("movies:\n  - {id: 1, title: A, rating: 11}\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("movies: [\n"))
		assert.Error(t, err)
	})
}

func TestCatalog_Search(t *testing.T) {
	c := New(testMovies())
	assert.Len(t, c.Search(""), 4)
	assert.Len(t, c.Search("paddington"), 1)
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("movies:\n  - {id: 1, title: A}\n"), 0o644))

	c, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	reloaded := make(chan error, 16)
	w, err := NewWatcher(WatcherConfig{
		Catalog:  c,
		Path:     path,
		Debounce: 10 * time.Millisecond,
		OnReload: func(count int, err error) {
			select {
			case reloaded <- err:
			default:
			}
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	t.Run("picks up new list", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("movies:\n  - {id: 1, title: A}\n  - {id: 2, title: B}\n"), 0o644))

		assert.Eventually(t, func() bool { return c.Len() == 2 }, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("keeps previous list on bad file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("movies: [\n"), 0o644))

		deadline := time.After(5 * time.Second)
		for failed := false; !failed; {
			select {
			case err := <-reloaded:
				failed = err != nil
			case <-deadline:
				t.Fatal("reload of the bad file was not attempted")
			}
		}
		assert.Equal(t, 2, c.Len())
	})

	t.Run("refuses an empty list", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("movies: []\n"), 0o644))

		deadline := time.After(5 * time.Second)
		for failed := false; !failed; {
			select {
			case err := <-reloaded:
				failed = err != nil
			case <-deadline:
				t.Fatal("reload of the empty file was not attempted")
			}
		}
		assert.Equal(t, 2, c.Len())
	})
}
