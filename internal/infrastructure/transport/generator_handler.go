package transport

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mcgenerator/app/usecase"
	"mcgenerator/internal/domain/entity"
	"mcgenerator/internal/infrastructure/metrics"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	formTemplate   = "form"
	outputTemplate = "output"
)

type Options struct {
	DefaultHostCount int
	MaxHostsPerRole  int
}

type GeneratorHandler struct {
	manifestService usecase.ManifestUseCase
	opts            Options
	logger          *slog.Logger
	pages           *template.Template

	// per-route HTTP metrics
	reqDuration *prometheus.HistogramVec
	reqCount    *prometheus.CounterVec
	errCount    *prometheus.CounterVec
}

func NewGeneratorHandler(
	manifestService usecase.ManifestUseCase,
	opts Options,
	logger *slog.Logger,
	reg prometheus.Registerer,
) (*GeneratorHandler, error) {
	pages, err := template.New("pages").Funcs(sprig.FuncMap()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	reqDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	reqCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path"},
	)

	errCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of HTTP request errors.",
		},
		[]string{"method", "path", "status"},
	)

	for _, c := range []prometheus.Collector{reqDuration, reqCount, errCount} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &GeneratorHandler{
		manifestService: manifestService,
		opts:            opts,
		logger:          logger,
		pages:           pages,
		reqDuration:     reqDuration,
		reqCount:        reqCount,
		errCount:        errCount,
	}, nil
}

// routeLabel keeps the path label bounded: the matched route template when
// mux resolved one, the raw path otherwise.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// instrument records count, latency and 4xx/5xx responses per route.
func (h *GeneratorHandler) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)

		route := routeLabel(r)
		code := strconv.Itoa(sw.Status())
		h.reqCount.WithLabelValues(r.Method, route).Inc()
		h.reqDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		if sw.Status() >= http.StatusBadRequest {
			h.errCount.WithLabelValues(r.Method, route, code).Inc()
		}
	}
}

// statusWriter remembers the first status written; an implicit 200 is
// reported when the handler only calls Write.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

func (h *GeneratorHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.instrument(h.handleIndex)).Methods(http.MethodGet, http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.instrument(h.handleHealth)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// GET|POST /
//
// Without the generate field the input form is shown; with it the manifest
// (or the error that prevented it) is shown.
func (h *GeneratorHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return
	}
	params := nonEmpty(r.Form)
	view := DecodeFormView(params, h.opts.DefaultHostCount, h.opts.MaxHostsPerRole)

	if params.Get(generateField) == "" {
		metrics.IncFormView()
		status := http.StatusOK
		if view.Error != "" {
			status = http.StatusBadRequest
		}
		h.render(w, status, formTemplate, view)
		return
	}

	view.Error = ""
	req, err := DecodeGenerationRequest(params, h.opts.MaxHostsPerRole)
	if err != nil {
		h.logger.Info("rejected generation request", "type", usecase.ErrorType(err), "err", err)
		metrics.IncError("transport", usecase.ErrorType(err))
		view.Error = err.Error()
		h.render(w, statusFor(err), outputTemplate, view)
		return
	}

	result, err := h.manifestService.Generate(r.Context(), req)
	if err != nil {
		view.Error = err.Error()
		h.render(w, statusFor(err), outputTemplate, view)
		return
	}

	view.Output = result.Manifest
	view.RequestID = result.RequestID
	w.Header().Set("X-Request-ID", result.RequestID)
	h.render(w, http.StatusOK, outputTemplate, view)
}

// GET /api/v1/health
func (h *GeneratorHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"ok": true,
		"ts": time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *GeneratorHandler) render(w http.ResponseWriter, code int, name string, view entity.FormView) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, view); err != nil {
		h.logger.Error("render page failed", "template", name, "err", err)
		metrics.IncError("transport", "template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func statusFor(err error) int {
	var analysis *entity.AnalysisError
	switch {
	case errors.As(err, &analysis):
		return http.StatusUnprocessableEntity
	case usecase.ErrorType(err) == "internal", usecase.ErrorType(err) == "canceled":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
