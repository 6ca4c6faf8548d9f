// Package actions is the boundary between the HTTP and CLI surfaces and the
// AI provider: it validates input, calls the provider once and applies the
// fallbacks the pages rely on.
package actions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/abdulachik/cinetrivia/internal/ai"
	"github.com/abdulachik/cinetrivia/internal/catalog"
	"github.com/abdulachik/cinetrivia/internal/config"
	"github.com/abdulachik/cinetrivia/internal/metrics"
	"github.com/abdulachik/cinetrivia/internal/rating"
)

// User-facing failure messages. The detailed error is only logged.
const (
	MsgRecommendFailed = "Failed to get recommendation. Please try again."
	MsgFunFactFailed   = "Could not fetch a fun fact. Please try again later."
)

// ErrNoProvider is returned by AI actions when the service was built
// without a provider.
var ErrNoProvider = errors.New("no AI provider configured")

// Store persists ratings.
type Store interface {
	UpsertRating(ctx context.Context, sessionID string, movieID, stars int) error
	GetRating(ctx context.Context, sessionID string, movieID int) (int, bool, error)
	ListRatings(ctx context.Context, sessionID string) (map[int]int, error)
}

// Service runs the user-triggered actions.
type Service struct {
	provider    ai.Provider
	store       Store
	catalog     *catalog.Catalog
	placeholder string
	timeout     time.Duration
	posterCache *expirable.LRU[string, string] // nil disables caching
	posters     singleflight.Group
}

// Config holds the dependencies of a Service.
type Config struct {
	Provider        ai.Provider
	Store           Store
	Catalog         *catalog.Catalog
	PlaceholderURL  string
	PosterCacheTTL  time.Duration // 0 disables the poster cache
	PosterCacheSize int
	Timeout         time.Duration // per provider call
}

const defaultPosterCacheSize = 256

// NewService creates a Service.
func NewService(cfg Config) *Service {
	placeholder := cfg.PlaceholderURL
	if placeholder == "" {
		placeholder = config.DefaultPlaceholderPoster
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	s := &Service{
		provider:    cfg.Provider,
		store:       cfg.Store,
		catalog:     cfg.Catalog,
		placeholder: placeholder,
		timeout:     timeout,
	}
	if cfg.PosterCacheTTL > 0 {
		size := cfg.PosterCacheSize
		if size <= 0 {
			size = defaultPosterCacheSize
		}
		s.posterCache = expirable.NewLRU[string, string](size, nil, cfg.PosterCacheTTL)
	}
	return s
}

// Catalog returns the catalog the service serves.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Placeholder returns the fallback poster URL.
func (s *Service) Placeholder() string { return s.placeholder }

// PosterResult is the poster to show for a movie or recommendation.
type PosterResult struct {
	URL       string `json:"url"`
	Generated bool   `json:"generated"`
	Cached    bool   `json:"cached"`
	Fallback  bool   `json:"fallback"`
	Reason    string `json:"reason,omitempty"`
}

// RecommendResult is a recommendation together with its poster.
type RecommendResult struct {
	Phrase         string            `json:"phrase"`
	Recommendation ai.Recommendation `json:"recommendation"`
	Poster         PosterResult      `json:"poster"`
}

// Recommend validates the form, asks for a recommendation and draws its
// poster for the session. Poster problems never fail the recommendation.
func (s *Service) Recommend(ctx context.Context, sessionID string, form RecommendForm) (*RecommendResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if s.provider == nil {
		return nil, ErrNoProvider
	}

	phrase := form.Phrase()
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, err := s.provider.Recommend(callCtx, ai.RecommendInput{MoodOrGenre: phrase})
	if err != nil {
		return nil, fmt.Errorf("recommend %q: %w", phrase, err)
	}

	poster := s.poster(ctx, sessionID, ai.PosterInput{
		Title:       rec.Title,
		Description: rec.Description,
		Genre:       rec.Genre,
	}, s.placeholder)

	return &RecommendResult{Phrase: phrase, Recommendation: *rec, Poster: poster}, nil
}

// FunFact returns one piece of trivia about the movie.
func (s *Service) FunFact(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", errors.New("movie title is required")
	}
	if s.provider == nil {
		return "", ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fact, err := s.provider.FunFact(ctx, ai.FunFactInput{MovieTitle: title})
	if err != nil {
		return "", fmt.Errorf("fun fact for %q: %w", title, err)
	}
	return fact.Text, nil
}

// Poster returns the artwork for a catalog movie as seen by one session.
// Movies with real artwork keep it; placeholder movies get a generated
// poster, or their placeholder when generation fails.
func (s *Service) Poster(ctx context.Context, sessionID string, movie catalog.Movie) PosterResult {
	if !movie.NeedsPoster() {
		return PosterResult{URL: movie.PosterURL}
	}

	fallback := movie.PosterURL
	if fallback == "" {
		fallback = s.placeholder
	}
	return s.poster(ctx, sessionID, ai.PosterInput{
		Title:       movie.Title,
		Description: movie.Description,
		Genre:       movie.Genre,
	}, fallback)
}

// GeneratePoster calls the provider directly, without cache or fallback.
func (s *Service) GeneratePoster(ctx context.Context, in ai.PosterInput) (*ai.Poster, error) {
	if in.Title == "" {
		return nil, errors.New("poster title is required")
	}
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.provider.GeneratePoster(ctx, in)
}

// poster serves the session's cached or a freshly generated poster, falling
// back to the given URL. Generated posters are kept in memory per session
// and never shared with other sessions. Concurrent requests of one session
// for the same poster share one generation, which runs to completion even if
// the caller that started it goes away so that the result still lands in the
// session's cache.
func (s *Service) poster(ctx context.Context, sessionID string, in ai.PosterInput, fallback string) PosterResult {
	key := sessionID + ":" + PosterKey(in)

	if uri, ok := s.cachedPoster(key); ok {
		return PosterResult{URL: uri, Generated: true, Cached: true}
	}
	if s.provider == nil {
		return fallbackResult(fallback, ErrNoProvider)
	}

	ch := s.posters.DoChan(key, func() (any, error) {
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		poster, err := s.provider.GeneratePoster(genCtx, in)
		if err != nil {
			return nil, err
		}
		if s.posterCache != nil {
			s.posterCache.Add(key, poster.DataURI)
		}
		return poster.DataURI, nil
	})

	select {
	case <-ctx.Done():
		return fallbackResult(fallback, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			slog.Warn("poster generation failed, using placeholder", "movie", in.Title, "error", res.Err)
			return fallbackResult(fallback, res.Err)
		}
		return PosterResult{URL: res.Val.(string), Generated: true}
	}
}

func (s *Service) cachedPoster(key string) (string, bool) {
	if s.posterCache == nil {
		return "", false
	}
	uri, ok := s.posterCache.Get(key)
	metrics.RecordPosterCache(ok)
	return uri, ok
}

func fallbackResult(url string, err error) PosterResult {
	metrics.PosterFallbacksTotal.Inc()
	return PosterResult{URL: url, Fallback: true, Reason: FallbackReason(err)}
}

// FallbackReason describes why a poster could not be generated.
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, ai.ErrUnsupported):
		return "provider cannot generate images"
	case errors.Is(err, ErrNoProvider):
		return "no AI provider configured"
	case errors.Is(err, ai.ErrEmptyResponse):
		return "provider returned no image"
	case errors.Is(err, ai.ErrInvalidResponse):
		return "provider returned an invalid image"
	case errors.Is(err, context.DeadlineExceeded):
		return "poster generation timed out"
	case errors.Is(err, context.Canceled):
		return "poster request canceled"
	default:
		return "poster generation failed"
	}
}

// PosterKey identifies a poster in the cache by what it depicts.
func PosterKey(in ai.PosterInput) string {
	sum := sha256.Sum256([]byte(in.Title + "\x00" + in.Genre + "\x00" + in.Description))
	return "poster:" + hex.EncodeToString(sum[:16])
}

// Rate commits a star rating for the session and returns the updated widget.
func (s *Service) Rate(ctx context.Context, sessionID string, movieID, stars int) (*rating.Widget, error) {
	if sessionID == "" {
		return nil, errors.New("session is required")
	}
	movie, err := s.catalog.Get(movieID)
	if err != nil {
		return nil, err
	}

	w, err := s.Widget(ctx, sessionID, movie)
	if err != nil {
		return nil, err
	}
	if err := w.Select(stars); err != nil {
		return nil, err
	}
	if err := s.store.UpsertRating(ctx, sessionID, movieID, stars); err != nil {
		return nil, err
	}
	return w, nil
}

// Ratings returns the session's committed ratings keyed by movie id.
func (s *Service) Ratings(ctx context.Context, sessionID string) (map[int]int, error) {
	if sessionID == "" {
		return map[int]int{}, nil
	}
	return s.store.ListRatings(ctx, sessionID)
}

// Widget returns the star widget for a movie: the session's committed rating
// when there is one, otherwise the movie's rating scaled to stars.
func (s *Service) Widget(ctx context.Context, sessionID string, movie catalog.Movie) (*rating.Widget, error) {
	initial := movie.InitialStars(rating.DefaultTotal)
	if sessionID != "" {
		stars, ok, err := s.store.GetRating(ctx, sessionID, movie.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			initial = stars
		}
	}
	return rating.New(initial, rating.DefaultTotal), nil
}

// Widgets returns the star widgets for a list of movies, in the same order,
// reading the session's ratings once.
func (s *Service) Widgets(ctx context.Context, sessionID string, movies []catalog.Movie) ([]*rating.Widget, error) {
	ratings, err := s.Ratings(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	widgets := make([]*rating.Widget, len(movies))
	for i, m := range movies {
		initial := m.InitialStars(rating.DefaultTotal)
		if stars, ok := ratings[m.ID]; ok {
			initial = stars
		}
		widgets[i] = rating.New(initial, rating.DefaultTotal)
	}
	return widgets, nil
}
