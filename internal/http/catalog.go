package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/catalog"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/dates"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/docstore"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/domain"
	"github.com/ThaiNguyen-DEV/cinema-ticket-booking-app/internal/repository"
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type catalogResponse struct {
	Status         catalog.Status           `json:"status"`
	Strategy       catalog.Strategy         `json:"strategy,omitempty"`
	Reference      *time.Time               `json:"reference,omitempty"`
	Generation     uint64                   `json:"generation,omitempty"`
	UpdatedAt      *time.Time               `json:"updatedAt,omitempty"`
	Stale          bool                     `json:"stale,omitempty"`
	Current        []movieResponse          `json:"current"`
	Upcoming       []movieResponse          `json:"upcoming"`
	Unclassifiable []unclassifiableResponse `json:"unclassifiable"`
	Promotions     []promotionResponse      `json:"promotions"`
	Error          *errorResponse           `json:"error,omitempty"`
}

type movieResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Genre           string     `json:"genre"`
	PosterURL       string     `json:"posterUrl"`
	TrailerURL      string     `json:"trailerUrl,omitempty"`
	Synopsis        string     `json:"synopsis,omitempty"`
	Cast            string     `json:"cast,omitempty"`
	Director        string     `json:"director,omitempty"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	ReleaseDate     *time.Time `json:"releaseDate"`
	EndDate         *time.Time `json:"endDate"`
	MissingFields   []string   `json:"missingFields,omitempty"`
}

type unclassifiableResponse struct {
	movieResponse
	Problems []problemResponse `json:"problems"`
}

type problemResponse struct {
	Field  string `json:"field"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

type promotionResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"imageUrl"`
	ArticleID string     `json:"articleId,omitempty"`
	CreatedAt *time.Time `json:"createdAt"`
}

type articleResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"imageUrl"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
}

// handleGetCatalog serves the refresher's state, or classifies on demand when
// the request names a reference instant with ?at=.
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	if raw := strings.TrimSpace(r.URL.Query().Get("at")); raw != "" {
		ref, err := parseReference(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		snap, err := s.loader.Load(r.Context(), ref)
		if err != nil {
			s.respondJSON(w, http.StatusServiceUnavailable, catalogResponse{
				Status:         catalog.StatusFailed,
				Reference:      &ref,
				Current:        []movieResponse{},
				Upcoming:       []movieResponse{},
				Unclassifiable: []unclassifiableResponse{},
				Promotions:     []promotionResponse{},
				Error:          fetchFailed(err),
			})
			return
		}
		resp := toCatalogResponse(&snap)
		resp.Status = catalog.StatusReady
		s.respondJSON(w, http.StatusOK, resp)
		return
	}

	state := s.refresher.State()
	if state.Status == catalog.StatusIdle {
		refreshed, err := s.refresher.Refresh(context.WithoutCancel(r.Context()))
		if errors.Is(err, catalog.ErrSuperseded) {
			refreshed = s.refresher.State()
		}
		state = refreshed
	}
	s.respondState(w, state)
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid bearer token")
		return
	}

	state, err := s.refresher.Refresh(context.WithoutCancel(r.Context()))
	if errors.Is(err, catalog.ErrSuperseded) {
		s.respondError(w, http.StatusConflict, "SUPERSEDED", "A newer refresh replaced this one")
		return
	}
	s.respondState(w, state)
}

// respondState never renders a failed refresh as an empty catalog: failures
// are 503 with the error and, when one exists, the last good snapshot.
func (s *Server) respondState(w http.ResponseWriter, state catalog.State) {
	resp := toCatalogResponse(state.Snapshot)
	resp.Status = state.Status
	resp.Generation = state.Generation
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt.UTC()
		resp.UpdatedAt = &updated
	}

	switch state.Status {
	case catalog.StatusFailed:
		resp.Stale = state.Stale()
		resp.Error = fetchFailed(state.Err)
		s.respondJSON(w, http.StatusServiceUnavailable, resp)
	case catalog.StatusReady:
		s.respondJSON(w, http.StatusOK, resp)
	default:
		if state.Snapshot != nil {
			s.respondJSON(w, http.StatusOK, resp)
			return
		}
		s.respondJSON(w, http.StatusAccepted, resp)
	}
}

func (s *Server) handleListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := s.content.ListPromotions(r.Context())
	if err != nil {
		s.logger.Printf("list promotions error: %v", err)
		s.respondError(w, http.StatusServiceUnavailable, "FETCH_FAILED", "Failed to load promotions")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"items": toPromotionResponses(catalog.OrderPromotions(promos))})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.content.GetMovie(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondLookupError(w, "movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.content.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondLookupError(w, "article", err)
		return
	}
	s.respondJSON(w, http.StatusOK, articleResponse{
		ID:        article.ID,
		Title:     article.Title,
		ImageURL:  article.ImageURL,
		Content:   article.Content,
		CreatedAt: domain.NormalizedTime(article.CreatedAt),
	})
}

func (s *Server) respondLookupError(w http.ResponseWriter, kind string, err error) {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, docstore.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", kind+" not found")
		return
	}
	s.logger.Printf("get %s error: %v", kind, err)
	s.respondError(w, http.StatusServiceUnavailable, "FETCH_FAILED", "Failed to load "+kind)
}

// parseReference accepts any date string the normalizer understands, plus
// three all-digit forms: YYYY, compact YYYYMMDD, and epoch milliseconds of
// nine or more digits. Other digit runs are ambiguous and rejected.
func parseReference(raw string) (time.Time, error) {
	v := dates.FromString(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		switch {
		case raw[0] == '-' || raw[0] == '+':
			return time.Time{}, fmt.Errorf("invalid at: %q is a signed number", raw)
		case len(raw) == 8:
			compact, err := time.Parse("20060102", raw)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid at: %q", raw)
			}
			v = dates.FromTime(compact)
		case len(raw) > 8:
			v = dates.FromMillis(float64(ms))
		case len(raw) != 4:
			return time.Time{}, fmt.Errorf("invalid at: %q is neither a date nor epoch milliseconds", raw)
		}
	}
	ref, err := dates.Normalize(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at: %q", raw)
	}
	return ref, nil
}

func fetchFailed(err error) *errorResponse {
	if err == nil {
		return nil
	}
	return &errorResponse{Code: "FETCH_FAILED", Message: err.Error()}
}

func toCatalogResponse(snap *catalog.Snapshot) catalogResponse {
	resp := catalogResponse{
		Current:        []movieResponse{},
		Upcoming:       []movieResponse{},
		Unclassifiable: []unclassifiableResponse{},
		Promotions:     []promotionResponse{},
	}
	if snap == nil {
		return resp
	}

	ref := snap.Reference.UTC()
	resp.Reference = &ref
	resp.Strategy = snap.Strategy
	for _, movie := range snap.Current {
		resp.Current = append(resp.Current, toMovieResponse(movie))
	}
	for _, movie := range snap.Upcoming {
		resp.Upcoming = append(resp.Upcoming, toMovieResponse(movie))
	}

	paired := len(snap.Failures) == len(snap.Unclassifiable)
	for i, movie := range snap.Unclassifiable {
		entry := unclassifiableResponse{movieResponse: toMovieResponse(movie), Problems: []problemResponse{}}
		if paired {
			entry.Problems = append(entry.Problems, toProblemResponse(snap.Failures[i]))
		}
		resp.Unclassifiable = append(resp.Unclassifiable, entry)
	}

	resp.Promotions = toPromotionResponses(snap.Promotions)
	return resp
}

func toProblemResponse(f catalog.Failure) problemResponse {
	p := problemResponse{Field: f.Field}
	if f.Err != nil {
		p.Kind = f.Err.Kind.String()
		p.Reason = f.Err.Reason
		if f.Err.Raw != nil {
			p.Raw = fmt.Sprint(f.Err.Raw)
		}
	}
	return p
}

func toMovieResponse(movie domain.MovieRecord) movieResponse {
	return movieResponse{
		ID:              movie.ID,
		Title:           movie.Title,
		Genre:           movie.Genre,
		PosterURL:       movie.PosterURL,
		TrailerURL:      movie.TrailerURL,
		Synopsis:        movie.Synopsis,
		Cast:            movie.Cast,
		Director:        movie.Director,
		DurationMinutes: movie.DurationMinutes,
		Rating:          movie.Rating,
		ReleaseDate:     domain.NormalizedTime(movie.ReleaseDate),
		EndDate:         domain.NormalizedTime(movie.EndDate),
		MissingFields:   movie.MissingFields(),
	}
}

func toPromotionResponses(promos []domain.PromotionRecord) []promotionResponse {
	out := make([]promotionResponse, 0, len(promos))
	for _, p := range promos {
		out = append(out, promotionResponse{
			ID:        p.ID,
			Title:     p.Title,
			ImageURL:  p.ImageURL,
			ArticleID: p.ArticleID,
			CreatedAt: domain.NormalizedTime(p.CreatedAt),
		})
	}
	return out
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token != "" && token == s.cfg.AuthToken
}
