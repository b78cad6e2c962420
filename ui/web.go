package ui

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"stackcalc/core/evaluator"
	"stackcalc/core/rewriter"
	"stackcalc/logger"
	"stackcalc/metrics"
	"stackcalc/models"
	"stackcalc/service/auth"
	"stackcalc/service/calculator"
	"stackcalc/service/sessions"
)

//go:embed static
var staticFiles embed.FS

type ctxKey struct{}

// maxBodySize - предельный размер тела запроса API
const maxBodySize = 64 << 10

type WebInterface struct {
	calc           *calculator.Calculator
	issuer         *auth.Issuer
	hub            *Hub
	evaluator      *evaluator.Evaluator
	allowedOrigins []string
	log            *log.Logger
}

func NewWebInterface(calc *calculator.Calculator, issuer *auth.Issuer, allowedOrigins []string) *WebInterface {
	w := &WebInterface{
		calc:           calc,
		issuer:         issuer,
		evaluator:      evaluator.NewEvaluator(),
		allowedOrigins: allowedOrigins,
		log:            logger.With("web"),
	}
	w.hub = NewHub(calc, issuer, w.checkOrigin)
	return w
}

// Hub - websocket-подписки сервера
func (w *WebInterface) Hub() *Hub {
	return w.hub
}

// Middleware для метрик
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrapper для захвата статус кода
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// шаблон маршрута, чтобы не плодить метки на каждый путь
		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}

		metrics.HttpRequestsTotal.WithLabelValues(
			r.Method,
			endpoint,
			strconv.Itoa(wrapped.statusCode),
		).Inc()

		metrics.HttpRequestDuration.WithLabelValues(
			r.Method,
			endpoint,
		).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack нужен для перехода на websocket
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Handler - маршруты API, websocket, метрики и статическая страница
func (w *WebInterface) Handler() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		// API routes с метриками
		r.Use(metricsMiddleware)

		r.Post("/api/session", w.handleCreateSession)
		r.Post("/api/evaluate", w.handleEvaluate)
		r.Get("/api/rewrite", w.handleRewrite)

		r.Group(func(r chi.Router) {
			r.Use(w.authMiddleware)
			r.Get("/api/state", w.handleState)
			r.Post("/api/command", w.handleCommand)
		})

		r.Get("/ws", w.hub.handleWebSocket)
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Static files
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServer(http.FS(static)))

	return cors.New(cors.Options{
		AllowedOrigins:   w.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)
}

// Server - http.Server с маршрутами интерфейса
func (w *WebInterface) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           w.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (w *WebInterface) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range w.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	// тот же хост, с которого отдана страница
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

func (w *WebInterface) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(wr http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(wr, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		sessionID, err := w.issuer.VerifyToken(token)
		if err != nil {
			writeError(wr, http.StatusUnauthorized, "Invalid token")
			return
		}

		// токен выдан нами, поэтому сессию можно поднять из хранилища
		w.calc.Sessions().Resume(r.Context(), sessionID)

		ctx := context.WithValue(r.Context(), ctxKey{}, sessionID)
		next.ServeHTTP(wr, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (w *WebInterface) handleCreateSession(wr http.ResponseWriter, r *http.Request) {
	manager := w.calc.Sessions()
	id := manager.Create(r.Context())

	token, expires, err := w.issuer.CreateToken(id)
	if err != nil {
		w.log.Error("failed to create token", "err", err)
		writeError(wr, http.StatusInternalServerError, "Failed to create token")
		return
	}

	state, err := manager.State(id)
	if err != nil {
		writeError(wr, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(wr, http.StatusCreated, models.SessionResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		State:     state,
	})
}

func (w *WebInterface) handleState(wr http.ResponseWriter, r *http.Request) {
	state, err := w.calc.Sessions().State(sessionFrom(r.Context()))
	if err != nil {
		writeSessionError(wr, err)
		return
	}
	writeJSON(wr, http.StatusOK, state)
}

func (w *WebInterface) handleCommand(wr http.ResponseWriter, r *http.Request) {
	var req models.CommandRequest
	if !decodeBody(wr, r, &req) {
		return
	}

	state, err := w.calc.Execute(r.Context(), sessionFrom(r.Context()), req.Command)
	if err != nil {
		writeSessionError(wr, err)
		return
	}
	writeJSON(wr, http.StatusOK, state)
}

func (w *WebInterface) handleEvaluate(wr http.ResponseWriter, r *http.Request) {
	var req models.EvaluateRequest
	if !decodeBody(wr, r, &req) {
		return
	}

	mode, err := parseMode(req.AngleMode)
	if err != nil {
		writeError(wr, http.StatusBadRequest, err.Error())
		return
	}

	res := w.evaluator.Evaluate(req.Expression, mode)
	metrics.ObserveEvaluation(res.OK())

	writeJSON(wr, http.StatusOK, models.EvaluateResponse{
		Expression: req.Expression,
		Rewritten:  rewriter.Rewrite(req.Expression, mode),
		Result:     res.String(),
		OK:         res.OK(),
	})
}

func (w *WebInterface) handleRewrite(wr http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("expr")
	mode, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(wr, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(wr, http.StatusOK, models.RewriteResponse{
		Expression: expr,
		Rewritten:  rewriter.Rewrite(expr, mode),
		AngleMode:  mode.String(),
	})
}

// decodeBody читает JSON-тело не больше maxBodySize; при ошибке ответ уже записан
func decodeBody(wr http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(wr, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(wr, http.StatusRequestEntityTooLarge, "Request too large")
			return false
		}
		writeError(wr, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

// parseMode - пустое значение означает режим по умолчанию (DEG)
func parseMode(s string) (rewriter.AngleMode, error) {
	if s == "" {
		return rewriter.Degrees, nil
	}
	return rewriter.ParseAngleMode(s)
}

func writeSessionError(wr http.ResponseWriter, err error) {
	if errors.Is(err, sessions.ErrUnknownSession) {
		writeError(wr, http.StatusNotFound, "Session not found")
		return
	}
	writeError(wr, http.StatusInternalServerError, err.Error())
}

func writeJSON(wr http.ResponseWriter, status int, v interface{}) {
	wr.Header().Set("Content-Type", "application/json")
	wr.WriteHeader(status)
	if err := json.NewEncoder(wr).Encode(v); err != nil {
		logger.Warn("failed to encode response", "err", err)
	}
}

func writeError(wr http.ResponseWriter, status int, message string) {
	writeJSON(wr, status, models.ErrorResponse{Error: message})
}
