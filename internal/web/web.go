package web

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomcal/internal/booking"
	"roomcal/internal/calendar"
	"roomcal/internal/config"
	"roomcal/internal/fetch"
	"roomcal/internal/ics"
	appLog "roomcal/internal/log"
	"roomcal/internal/pipeline"
	"roomcal/internal/submit"
	"roomcal/internal/view"
)

// User-facing messages, mirroring the booking page's Spanish locale.
const (
	msgBookingCreated = "Reserva creada con éxito"
	msgGenericFailure = "Ocurrió un error al procesar la reserva."
)

// embeddedStatic contains the kiosk page served at /.
//
//go:embed all:static
var embeddedStatic embed.FS

// Server exposes the calendar UI and its JSON surface. All widget and
// form mutation goes through the controller; handlers read UI state back
// from ui.
type Server struct {
	cfg  *config.Config
	api  *fetch.Client
	ctrl *calendar.Controller
	pipe *pipeline.Pipeline
	sub  *submit.Submitter
	ui   *UIState
	mux  *http.ServeMux
}

func NewServer(cfg *config.Config, api *fetch.Client, ctrl *calendar.Controller, pipe *pipeline.Pipeline, sub *submit.Submitter, ui *UIState) *Server {
	s := &Server{
		cfg:  cfg,
		api:  api,
		ctrl: ctrl,
		pipe: pipe,
		sub:  sub,
		ui:   ui,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, wrapped with Basic
// Auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware guards every route except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="roomcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/rooms", s.handleRooms)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("POST /api/view/resize", s.handleViewResize)
	s.mux.HandleFunc("POST /api/slot", s.handleSlot)
	s.mux.HandleFunc("POST /api/events/{id}/activate", s.handleEventActivate)
	s.mux.HandleFunc("POST /api/hover", s.handleHover)
	s.mux.HandleFunc("POST /api/bookings", s.handleBookingSubmit)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventsResponse is the JSON shape of GET /api/events: the full current
// event set plus the static widget options.
type eventsResponse struct {
	Events    []booking.CalendarEvent `json:"events"`
	Options   view.Options            `json:"options"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:    s.ui.Events(),
		Options:   s.widgetOptions(),
		UpdatedAt: s.ui.UpdatedAt(),
	})
}

// handleRooms proxies the upstream room collection for the booking form's
// room selector.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.api.Rooms(r.Context())
	if err != nil {
		appLog.Error("room fetch for form failed", err)
		writeError(w, http.StatusBadGateway, "failed to fetch rooms")
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleRefresh triggers an on-demand synchronization pass. A failed pass
// keeps the previous event set.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.pipe.Run(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "synchronization failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"events": len(s.ui.Events())})
}

func (s *Server) widgetOptions() view.Options {
	opts := view.DefaultOptions()
	opts.Locale = s.cfg.Locale
	opts.SlotMinTime = s.cfg.SlotMinTime
	opts.SlotMaxTime = s.cfg.SlotMaxTime
	return opts
}

// handleView resolves the view policy for the client's viewport width.
// GET /api/view?width=1024
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil || width <= 0 {
		writeError(w, http.StatusBadRequest, "width query parameter is required")
		return
	}
	writeJSON(w, http.StatusOK, view.ResolveAt(width, s.cfg.NarrowBreakpointPx))
}

type resizeRequest struct {
	Width       int    `json:"width"`
	CurrentView string `json:"current_view"`
}

type resizeResponse struct {
	View    string `json:"view"`
	Changed bool   `json:"changed"`
}

// handleViewResize applies the documented resize policy: crossing the
// breakpoint forces the matching grid view.
func (s *Server) handleViewResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Width <= 0 {
		writeError(w, http.StatusBadRequest, "width and current_view are required")
		return
	}
	next, changed := view.OnResize(req.Width, s.cfg.NarrowBreakpointPx, req.CurrentView)
	writeJSON(w, http.StatusOK, resizeResponse{View: next, Changed: changed})
}

type slotRequest struct {
	DateTime string `json:"date_time"`
}

type slotResponse struct {
	Form       FormState `json:"form"`
	DialogOpen bool      `json:"dialog_open"`
}

// handleSlot routes a slot activation through the controller and returns
// the resulting form pre-fill and dialog state.
func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DateTime == "" {
		writeError(w, http.StatusBadRequest, "date_time is required")
		return
	}

	s.ctrl.OnSlotActivate(req.DateTime)

	form, open := s.ui.Form()
	writeJSON(w, http.StatusOK, slotResponse{Form: form, DialogOpen: open})
}

func (s *Server) handleEventActivate(w http.ResponseWriter, r *http.Request) {
	id := booking.ID(r.PathValue("id"))
	detail, err := s.ctrl.OnEventActivate(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown event")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type hoverRequest struct {
	ID      booking.ID `json:"id"`
	Entered bool       `json:"entered"`
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	s.ctrl.OnHoverChange(req.ID, req.Entered)
	w.WriteHeader(http.StatusNoContent)
}

// handleBookingSubmit forwards the booking form upstream. Rejections come
// back with the server's detail verbatim and the form state untouched;
// transport failures get a generic notice.
func (s *Server) handleBookingSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "formulario inválido")
		return
	}

	form := submit.Form{
		RoomID:    r.PostFormValue("room_id"),
		UserName:  r.PostFormValue("user_name"),
		UserEmail: r.PostFormValue("user_email"),
		Area:      r.PostFormValue("area"),
		Date:      r.PostFormValue("booking_date"),
		StartTime: r.PostFormValue("start_time"),
		EndTime:   r.PostFormValue("end_time"),
		Attendees: r.PostFormValue("attendees"),
	}

	err := s.sub.Submit(r.Context(), form)
	if err == nil {
		writeJSON(w, http.StatusCreated, map[string]string{"message": msgBookingCreated})
		return
	}

	var rejected *submit.RejectedError
	if errors.As(err, &rejected) {
		writeDetail(w, rejected.Status, rejected.Detail)
		return
	}

	appLog.Error("booking submission transport failure", err)
	writeDetail(w, http.StatusBadGateway, msgGenericFailure)
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	feed, err := ics.Feed(s.ui.Events(), time.Local)
	if err != nil {
		appLog.Error("ics feed generation failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar feed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="roomcal.ics"`)
	_, _ = w.Write([]byte(feed))
}

// handlePreview serves the last captured kiosk snapshot. http.ServeFile
// handles missing-file and permission cases with sensible statuses.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Snapshot.Output)
}

// staticFileServer serves the embedded kiosk page for everything that is
// not an API route.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// API paths never fall through to the static UI.
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDetail mirrors the upstream API's failure shape so the page can
// treat local and proxied errors uniformly.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
