package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"elitestay/internal/app"
	"elitestay/internal/domain"
)

type Handlers struct {
	Auth     *app.AuthService
	Repo     *app.PropertyRepository
	Search   *app.SearchService
	Bookings *app.BookingRecorder
	Sessions *app.SessionRegistry
	Profiles *app.ProfileService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signup", h.signUp)
		r.Post("/auth/signin", h.signIn)
		r.Get("/properties", h.listProperties)
		r.Get("/search", h.searchByName)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.Auth))
			r.Post("/auth/signout", h.signOut)
			r.Get("/me", h.me)
			r.Put("/me/location", h.reportLocation)
			r.Get("/properties/{id}", h.propertyDetails)
			r.Post("/properties/{id}/bookings", h.book)
			r.Get("/places/suggest", h.suggest)
			r.Get("/places/{placeId}/properties", h.searchByPlace)
			r.Get("/shortlist", h.listShortlist)
			r.Put("/shortlist/{id}", h.addShortlist)
			r.Delete("/shortlist/{id}", h.removeShortlist)
			r.Get("/bookings", h.listBookings)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeCacheable serves v with a weak ETag and answers 304 when it matches.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

// sortedProperties turns a snapshot into a stable, id-ordered list.
func sortedProperties(m map[domain.PropertyID]domain.Property) []domain.Property {
	out := make([]domain.Property, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func authMessage(err error) string {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return err.Error()
}

// ---- auth ----

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var in credentialsBody
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := h.Auth.SignUp(r.Context(), in.Email, in.Password)
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		writeProblem(w, http.StatusConflict, "Conflict", authMessage(err))
	case errors.Is(err, domain.ErrAuthFailed):
		writeProblem(w, http.StatusBadRequest, "Sign Up Failed", authMessage(err))
	case err != nil:
		log.Error().Err(err).Msg("sign up failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "could not create account")
	default:
		writeJSON(w, http.StatusCreated, u)
	}
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var in credentialsBody
	if !decodeBody(w, r, &in) {
		return
	}
	g, err := h.Auth.SignIn(r.Context(), in.Email, in.Password)
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		writeProblem(w, http.StatusUnauthorized, "Sign In Failed", authMessage(err))
	case err != nil:
		log.Error().Err(err).Msg("sign in failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "could not sign in")
	default:
		writeJSON(w, http.StatusOK, g)
	}
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
		log.Error().Err(err).Msg("sign out failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "could not sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- profile ----

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, h.Profiles.Profile(s.UserID, s.Email))
}

type locationBody struct {
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	PermissionGranted bool     `json:"permissionGranted"`
}

func (h *Handlers) reportLocation(w http.ResponseWriter, r *http.Request) {
	var in locationBody
	if !decodeBody(w, r, &in) {
		return
	}
	var c *domain.Coordinates
	if in.Latitude != nil && in.Longitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180 {
			writeProblem(w, http.StatusBadRequest, "Invalid Location", "latitude or longitude out of range")
			return
		}
		c = &domain.Coordinates{Latitude: *in.Latitude, Longitude: *in.Longitude}
	}
	h.Profiles.ReportLocation(sessionFrom(r.Context()).UserID, c, in.PermissionGranted)
	w.WriteHeader(http.StatusNoContent)
}

// ---- properties ----

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	writeCacheable(w, r, sortedProperties(h.Search.All(r.Context())))
}

func (h *Handlers) detailsView(r *http.Request) *app.DetailsView {
	s := sessionFrom(r.Context())
	st := h.Sessions.State(s.ID)
	return app.NewDetailsView(h.Repo, st.Shortlist, h.Bookings, s.UserID)
}

func (h *Handlers) propertyDetails(w http.ResponseWriter, r *http.Request) {
	snap := h.detailsView(r).Load(r.Context(), chi.URLParam(r, "id"))
	if snap.State == app.StateNotFound {
		writeJSON(w, http.StatusNotFound, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handlers) book(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.FetchOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Warn().Err(err).Msg("booking property lookup failed")
		writeProblem(w, http.StatusBadGateway, "Store Unavailable", "could not load the property, the booking was not made")
		return
	}
	if p == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "property not found")
		return
	}
	v := h.detailsView(r)
	v.Show(p)
	snap, err := v.Book(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotRecorded) {
			writeProblem(w, http.StatusBadGateway, "Booking Not Recorded", "the booking could not be saved, please try again")
			return
		}
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, h.Bookings.History(r.Context(), s.UserID))
}

// ---- places & search ----

type suggestResponse struct {
	Query       string                   `json:"query"`
	Suggestions []domain.PlaceSuggestion `json:"suggestions"`
}

func (h *Handlers) suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	feed := h.Sessions.State(sessionFrom(r.Context()).ID).Feed
	res, err := feed.Query(r.Context(), q)
	if errors.Is(err, domain.ErrSuperseded) {
		writeProblem(w, http.StatusConflict, "Superseded", "a newer query replaced this one")
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: res})
}

type placeMatches struct {
	Place      domain.Place      `json:"place"`
	Properties []domain.Property `json:"properties"`
}

func (h *Handlers) searchByPlace(w http.ResponseWriter, r *http.Request) {
	h.Sessions.State(sessionFrom(r.Context()).ID).Feed.Clear()
	place, matches, err := h.Search.SearchByPlace(r.Context(), chi.URLParam(r, "placeId"))
	switch {
	case errors.Is(err, domain.ErrPlaceNotResolved):
		writeProblem(w, http.StatusNotFound, "Place Not Found", "the selected place could not be resolved")
	case err != nil:
		log.Warn().Err(err).Msg("place resolve failed")
		writeProblem(w, http.StatusBadGateway, "Places Unavailable", "could not reach the places provider")
	default:
		writeJSON(w, http.StatusOK, placeMatches{Place: place, Properties: sortedProperties(matches)})
	}
}

type nameMatches struct {
	Place      string            `json:"place"`
	Properties []domain.Property `json:"properties"`
}

func (h *Handlers) searchByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("place")
	writeCacheable(w, r, nameMatches{Place: name, Properties: sortedProperties(h.Search.SearchByName(r.Context(), name))})
}

// ---- shortlist ----

func (h *Handlers) shortlist(r *http.Request) *app.ShortlistStore {
	return h.Sessions.State(sessionFrom(r.Context()).ID).Shortlist
}

func (h *Handlers) listShortlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.shortlist(r).List())
}

func (h *Handlers) addShortlist(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.FetchOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Warn().Err(err).Msg("shortlist property lookup failed")
		writeProblem(w, http.StatusBadGateway, "Store Unavailable", "could not load the property")
		return
	}
	if p == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "property not found")
		return
	}
	sl := h.shortlist(r)
	sl.Add(*p)
	writeJSON(w, http.StatusOK, sl.List())
}

func (h *Handlers) removeShortlist(w http.ResponseWriter, r *http.Request) {
	h.shortlist(r).Remove(domain.Property{ID: chi.URLParam(r, "id")})
	w.WriteHeader(http.StatusNoContent)
}
