package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/truthlens/internal/application/analysis"
	"github.com/bryanwahyu/truthlens/internal/domain/ai"
	domain "github.com/bryanwahyu/truthlens/internal/domain/analysis"
	"github.com/bryanwahyu/truthlens/internal/domain/files"
	"github.com/bryanwahyu/truthlens/internal/middleware"
)

// multipart framing allowance on top of the file ceiling
const multipartOverhead = 1 << 20

var errBadRequest = errors.New("bad request")

// Options holds everything the router needs besides the pipeline.
type Options struct {
	Version        string
	MaxUploadSize  int64
	AllowedOrigins []string
	Metrics        *middleware.Metrics
	Checkers       map[string]middleware.HealthChecker
	Logger         *zap.Logger
}

type Router struct {
	svc     *appanalysis.Service
	maxSize int64
	version string
	log     *zap.Logger
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = files.DefaultMaxSize
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, maxSize: opts.MaxUploadSize, version: opts.Version, log: opts.Logger}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(opts.Logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	mux.Get("/", r.handleWelcome)

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", middleware.LivenessHandler)
		rt.Get("/ready", middleware.ReadinessHandler(opts.Checkers))
		if opts.Metrics != nil {
			rt.Get("/metrics", opts.Metrics.Handler)
		}

		rt.Post("/analyze/text", r.wrap(r.handleAnalyzeText))
		rt.Post("/analyze/upload", r.wrap(r.handleAnalyzeUpload))
		rt.Get("/analyze/{file_id}", r.wrap(r.handleAnalyzeStored))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.log.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err))
		} else {
			r.log.Warn("request rejected",
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Error(err))
		}
		writeJSON(w, status, map[string]string{"detail": err.Error()})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, files.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, files.ErrDisallowedType),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, middleware.ErrInvalidID),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, files.ErrSizeExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /
func (r *Router) handleWelcome(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "TruthLens misinformation analysis API",
		"version": r.version,
	})
}

// POST /api/analyze/text
// Body: {"content": "...", "file_type": "text", "source_url": "..."}
func (r *Router) handleAnalyzeText(w http.ResponseWriter, req *http.Request) error {
	var body domain.Request
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}

	res, err := r.svc.AnalyzeText(req.Context(), body.Content)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /api/analyze/upload[?preview=true]
// Multipart field "file". Analyzes synchronously and removes the upload,
// or with preview returns the stored id and a short excerpt.
func (r *Router) handleAnalyzeUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxSize+multipartOverhead)

	file, header, err := req.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: request body over %d bytes", files.ErrSizeExceeded, tooBig.Limit)
		}
		return fmt.Errorf("%w: multipart field \"file\" is required: %v", errBadRequest, err)
	}
	defer file.Close()

	name := middleware.SanitizeFilename(header.Filename)
	if !files.IsAllowed(name) {
		return fmt.Errorf("%w: %q (allowed: pdf, docx, txt, jpg, jpeg, png, gif)", files.ErrDisallowedType, name)
	}
	if header.Size > r.maxSize {
		return fmt.Errorf("%w: %d bytes", files.ErrSizeExceeded, header.Size)
	}

	if preview, _ := strconv.ParseBool(req.URL.Query().Get("preview")); preview {
		resp, err := r.svc.Preview(req.Context(), name, file)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, resp)
	}

	res, err := r.svc.AnalyzeUpload(req.Context(), name, file)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/analyze/{file_id}
func (r *Router) handleAnalyzeStored(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "file_id")
	// ids are minted as UUIDs, so anything else cannot name a stored file
	if err := middleware.ValidateFileID(id); err != nil {
		return fmt.Errorf("%w: %w", files.ErrNotFound, err)
	}

	res, err := r.svc.AnalyzeStored(req.Context(), strings.ToLower(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}
