package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abdulachik/cinetrivia/internal/actions"
	"github.com/abdulachik/cinetrivia/internal/ai"
	"github.com/abdulachik/cinetrivia/internal/catalog"
	"github.com/abdulachik/cinetrivia/internal/rating"
	"github.com/abdulachik/cinetrivia/internal/validation"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields()})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// decodeRequest decodes the body into v and validates it.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeBody(w, r, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		writeValidationError(w, verr)
		return false
	}
	return true
}

func writeSuperseded(w http.ResponseWriter) {
	writeError(w, http.StatusConflict, "superseded")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func sameOrigin(r *http.Request, ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.Host == r.Host
}

type movieResponse struct {
	catalog.Movie
	UserRating int `json:"userRating,omitempty"`
}

func (s *Server) apiOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"genres": catalog.Genres,
		"moods":  catalog.Moods,
	})
}

func (s *Server) apiMovies(w http.ResponseWriter, r *http.Request) {
	movies := s.svc.Catalog().Search(r.URL.Query().Get("q"))
	if movies == nil {
		movies = []catalog.Movie{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"movies": movies,
		"count":  len(movies),
	})
}

func (s *Server) apiMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	ratings, err := s.svc.Ratings(r.Context(), SessionID(r.Context()))
	if err != nil {
		slog.Error("failed to load ratings", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load rating")
		return
	}
	writeJSON(w, http.StatusOK, movieResponse{Movie: movie, UserRating: ratings[movie.ID]})
}

type rateRequest struct {
	Stars int `json:"stars" validate:"required,gte=1,lte=5"`
}

// ratingResponse is the star widget state of one movie for the session.
type ratingResponse struct {
	MovieID int           `json:"movieId"`
	Rating  int           `json:"rating"`
	Preview int           `json:"preview,omitempty"`
	Stars   []rating.Star `json:"stars"`
}

func newRatingResponse(movieID int, w *rating.Widget) ratingResponse {
	return ratingResponse{MovieID: movieID, Rating: w.Rating(), Preview: w.Preview(), Stars: w.Stars()}
}

// apiRating returns the star widget of a movie. With ?hover=k the stars show
// the preview for slot k while the committed rating stays unchanged.
func (s *Server) apiRating(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	widget, err := s.svc.Widget(r.Context(), SessionID(r.Context()), movie)
	if err != nil {
		slog.Error("failed to load rating", "movie", movie.Title, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load rating")
		return
	}

	if h := r.URL.Query().Get("hover"); h != "" {
		k, err := strconv.Atoi(h)
		if err != nil {
			writeError(w, http.StatusBadRequest, "hover must be a number")
			return
		}
		widget.Hover(k)
	}
	writeJSON(w, http.StatusOK, newRatingResponse(movie.ID, widget))
}

func (s *Server) apiRate(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	var req rateRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	widget, err := s.svc.Rate(r.Context(), SessionID(r.Context()), movie.ID, req.Stars)
	if err != nil {
		if errors.Is(err, rating.ErrOutOfRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to save rating", "movie", movie.Title, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save rating")
		return
	}
	writeJSON(w, http.StatusOK, newRatingResponse(movie.ID, widget))
}

func (s *Server) apiRecommend(w http.ResponseWriter, r *http.Request) {
	var form actions.RecommendForm
	if err := decodeBody(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// rejected forms never supersede a pending request
	if err := form.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx, ticket := s.begin(r, "recommendation")
	defer ticket.Done()

	res, err := s.svc.Recommend(ctx, SessionID(r.Context()), form)
	if stale(ctx, ticket, "recommendation", err) {
		writeSuperseded(w)
		return
	}

	switch {
	case err != nil:
		slog.Error("recommendation failed", "error", err)
		writeError(w, http.StatusBadGateway, actions.MsgRecommendFailed)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

type funFactRequest struct {
	MovieTitle string `json:"movieTitle" validate:"max=200"`
	MovieID    int    `json:"movieId" validate:"gte=0"`
}

func (s *Server) apiFunFact(w http.ResponseWriter, r *http.Request) {
	var req funFactRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	title := strings.TrimSpace(req.MovieTitle)
	widget := "funfact:" + title
	if req.MovieID != 0 {
		movie, err := s.svc.Catalog().Get(req.MovieID)
		if err != nil {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		title = movie.Title
		widget = "funfact:" + strconv.Itoa(movie.ID)
	}
	if title == "" {
		writeError(w, http.StatusBadRequest, "movieTitle or movieId is required")
		return
	}

	ctx, ticket := s.begin(r, widget)
	defer ticket.Done()

	fact, err := s.svc.FunFact(ctx, title)
	if stale(ctx, ticket, "funfact", err) {
		writeSuperseded(w)
		return
	}
	if err != nil {
		slog.Error("fun fact failed", "movie", title, "error", err)
		writeError(w, http.StatusBadGateway, actions.MsgFunFactFailed)
		return
	}
	writeJSON(w, http.StatusOK, ai.FunFact{Text: fact})
}

type posterRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Genre       string `json:"genre" validate:"max=50"`
}

func (s *Server) apiGeneratePoster(w http.ResponseWriter, r *http.Request) {
	var req posterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}

	ctx, ticket := s.begin(r, "poster:"+req.Title)
	defer ticket.Done()

	poster, err := s.svc.GeneratePoster(ctx, ai.PosterInput{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
	})
	if stale(ctx, ticket, "poster", err) {
		writeSuperseded(w)
		return
	}
	switch {
	case errors.Is(err, ai.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, actions.FallbackReason(err))
	case err != nil:
		slog.Error("poster generation failed", "movie", req.Title, "error", err)
		writeError(w, http.StatusBadGateway, "Image generation failed.")
	default:
		writeJSON(w, http.StatusOK, poster)
	}
}

func (s *Server) apiMoviePoster(w http.ResponseWriter, r *http.Request) {
	movie, err := s.movieParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	ctx, ticket := s.begin(r, "poster:"+strconv.Itoa(movie.ID))
	defer ticket.Done()

	poster := s.svc.Poster(ctx, SessionID(r.Context()), movie)
	if stale(ctx, ticket, "poster", nil) {
		writeSuperseded(w)
		return
	}
	writeJSON(w, http.StatusOK, poster)
}
