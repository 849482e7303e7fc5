package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appscans "github.com/bryanwahyu/visiai/internal/application/scans"
	domain "github.com/bryanwahyu/visiai/internal/domain/scans"
	"github.com/bryanwahyu/visiai/internal/middleware"
)

// screenshots arrive base64 encoded in the request body
const maxBodyBytes = 20 << 20

// Options groups what the router needs besides the scan service.
type Options struct {
	Health         map[string]middleware.HealthChecker
	Metrics        *middleware.Metrics     // nil disables /metrics and HTTP metrics
	Limiter        *middleware.RateLimiter // nil disables rate limiting
	APIKeys        map[string]string
	AllowedOrigins []string
}

type Router struct {
	scansSvc *appscans.Service
}

func NewRouter(scansSvc *appscans.Service, opts Options) http.Handler {
	r := &Router{scansSvc: scansSvc}
	mux := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.Limiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.Limiter))
	}

	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.HealthHandler("visiai", opts.Health))
		rt.Post("/scan", r.wrap(r.handleScan))
		rt.Get("/results", r.wrap(r.handleList))
		rt.Get("/results/{id}", r.wrap(r.handleGet))
		rt.Delete("/results/{id}", r.wrap(r.handleDelete))
		rt.Get("/errors", r.wrap(r.handleErrors))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks request validation failures.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var bad badRequest
		switch {
		case errors.As(err, &bad), errors.Is(err, domain.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "scan not found")
		case errors.Is(err, domain.ErrCapture):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			logrus.WithError(err).WithField("path", req.URL.Path).Error("request failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

// POST /api/scan
// Body: {"url": "https://...", "screenshot": "<base64 or data URI, optional>"}
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL        string `json:"url"`
		Screenshot string `json:"screenshot"`
	}
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	body.URL = middleware.SanitizeString(body.URL)
	if body.URL == "" {
		return badRequest{msg: "URL is required"}
	}
	if err := middleware.ValidateURL(body.URL); err != nil {
		return badRequest{msg: err.Error()}
	}

	scan, err := r.scansSvc.Analyze(req.Context(), appscans.AnalyzeCommand{
		URL:        body.URL,
		Screenshot: body.Screenshot,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": scan})
	return nil
}

type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// GET /api/results?page=1&limit=20&include_screenshot=false
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	withShot, _ := strconv.ParseBool(q.Get("include_screenshot"))
	page = middleware.ValidatePage(page)
	limit = middleware.ValidateLimit(limit)

	res, err := r.scansSvc.List(req.Context(), page, limit, withShot)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    res.Data,
		"pagination": pagination{
			Total: res.Total,
			Page:  res.Page,
			Limit: res.PageSize,
			Pages: res.TotalPages,
		},
	})
	return nil
}

// GET /api/results/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return sql.ErrNoRows
	}
	scan, err := r.scansSvc.Get(req.Context(), domain.ScanID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": scan})
	return nil
}

// DELETE /api/results/{id}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateScanID(id); err != nil {
		return sql.ErrNoRows
	}
	if err := r.scansSvc.Delete(req.Context(), domain.ScanID(id)); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Result deleted successfully"})
	return nil
}

// GET /api/errors?url=&limit=20
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	target := middleware.SanitizeString(req.URL.Query().Get("url"))

	list, err := r.scansSvc.FailedAnalyses(req.Context(), target, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": list})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
