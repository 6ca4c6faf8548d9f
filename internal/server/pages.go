package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abdulachik/cinetrivia/internal/actions"
	"github.com/abdulachik/cinetrivia/internal/catalog"
	"github.com/abdulachik/cinetrivia/internal/rating"
	"github.com/abdulachik/cinetrivia/internal/validation"
)

type option struct {
	Name    string
	Checked bool
}

type movieView struct {
	Movie   catalog.Movie
	MovieID int
	Stars   []rating.Star
}

type homeData struct {
	Query     string
	Movies    []movieView
	Genres    []option
	Moods     []option
	FormError string
	Error     string
	Result    *actions.RecommendResult
}

type detailData struct {
	Movie  movieView
	Poster actions.PosterResult
}

type funFactData struct {
	Movie catalog.Movie
	Fact  string
	Error string
}

type errorData struct {
	Message string
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := s.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to execute template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "error", errorData{Message: message})
}

func (s *Server) homeData(r *http.Request, form actions.RecommendForm) (*homeData, error) {
	query := r.URL.Query().Get("q")
	movies := s.svc.Catalog().Search(query)
	widgets, err := s.svc.Widgets(r.Context(), SessionID(r.Context()), movies)
	if err != nil {
		return nil, err
	}
	views := make([]movieView, len(movies))
	for i, m := range movies {
		views[i] = newMovieView(m, widgets[i])
	}

	data := &homeData{Query: query, Movies: views}
	for _, g := range catalog.Genres {
		data.Genres = append(data.Genres, option{Name: g, Checked: slices.Contains(form.Genres, g)})
	}
	for _, m := range catalog.Moods {
		data.Moods = append(data.Moods, option{Name: m, Checked: form.Mood == m})
	}
	return data, nil
}

func newMovieView(m catalog.Movie, w *rating.Widget) movieView {
	return movieView{
		Movie:   m,
		MovieID: m.ID,
		Stars:   w.Stars(),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	data, err := s.homeData(r, actions.RecommendForm{})
	if err != nil {
		slog.Error("failed to load ratings", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Something went wrong while loading the movies.")
		return
	}
	s.render(w, http.StatusOK, "home", data)
}

func (s *Server) handleRecommendForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	form := actions.RecommendForm{Genres: r.PostForm["genres"], Mood: r.PostForm.Get("mood")}

	data, err := s.homeData(r, form)
	if err != nil {
		slog.Error("failed to load ratings", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Something went wrong while loading the movies.")
		return
	}

	// rejected forms never supersede a pending request
	if err := form.Validate(); err != nil {
		data.FormError = formMessage(err)
		s.render(w, http.StatusUnprocessableEntity, "home", data)
		return
	}

	ctx, ticket := s.begin(r, "recommendation")
	defer ticket.Done()

	res, err := s.svc.Recommend(ctx, SessionID(r.Context()), form)
	if stale(ctx, ticket, "recommendation", err) {
		http.Error(w, "superseded", http.StatusConflict)
		return
	}

	switch {
	case err != nil:
		slog.Error("recommendation failed", "error", err)
		data.Error = actions.MsgRecommendFailed
		s.render(w, http.StatusBadGateway, "home", data)
	default:
		data.Result = res
		s.render(w, http.StatusOK, "home", data)
	}
}

// formMessage picks the message shown under the recommendation form.
func formMessage(err error) string {
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	if msg := verr.FieldMessage("genres"); msg != "" {
		return msg
	}
	return verr.Error()
}

// movieParam resolves the {id} URL parameter against the catalog.
func (s *Server) movieParam(r *http.Request) (catalog.Movie, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return catalog.Movie{}, catalog.ErrNotFound
	}
	return s.svc.Catalog().Get(id)
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		s.renderError(w, http.StatusNotFound, "Movie not found.")
		return
	}

	widget, err := s.svc.Widget(r.Context(), SessionID(r.Context()), movie)
	if err != nil {
		slog.Error("failed to load rating", "error", err)
		s.renderError(w, http.StatusInternalServerError, "Something went wrong while loading the movie.")
		return
	}

	ctx, ticket := s.begin(r, "poster:"+strconv.Itoa(movie.ID))
	defer ticket.Done()

	poster := s.svc.Poster(ctx, SessionID(r.Context()), movie)
	if stale(ctx, ticket, "poster", nil) {
		http.Error(w, "superseded", http.StatusConflict)
		return
	}

	s.render(w, http.StatusOK, "detail", detailData{
		Movie:  newMovieView(movie, widget),
		Poster: poster,
	})
}

func (s *Server) handleFunFactPage(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		s.renderError(w, http.StatusNotFound, "Movie not found.")
		return
	}

	ctx, ticket := s.begin(r, "funfact:"+strconv.Itoa(movie.ID))
	defer ticket.Done()

	fact, err := s.svc.FunFact(ctx, movie.Title)
	if stale(ctx, ticket, "funfact", err) {
		http.Error(w, "superseded", http.StatusConflict)
		return
	}

	data := funFactData{Movie: movie, Fact: fact}
	status := http.StatusOK
	if err != nil {
		slog.Error("fun fact failed", "movie", movie.Title, "error", err)
		data.Error = actions.MsgFunFactFailed
		status = http.StatusBadGateway
	}
	s.render(w, status, "funfact", data)
}

func (s *Server) handleRateForm(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		s.renderError(w, http.StatusNotFound, "Movie not found.")
		return
	}

	stars, err := strconv.Atoi(r.FormValue("stars"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid rating.")
		return
	}

	if _, err := s.svc.Rate(r.Context(), SessionID(r.Context()), movie.ID, stars); err != nil {
		if errors.Is(err, rating.ErrOutOfRange) {
			s.renderError(w, http.StatusBadRequest, "Invalid rating.")
			return
		}
		slog.Error("failed to save rating", "movie", movie.Title, "error", err)
		s.renderError(w, http.StatusInternalServerError, "Could not save your rating.")
		return
	}

	target := "/movies/" + strconv.Itoa(movie.ID)
	if ref := r.Referer(); ref != "" && sameOrigin(r, ref) {
		target = ref
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
