package http

import (
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/safe"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	authUC   AuthUseCase
	staticFS fs.FS
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithStaticFS serves the built admin SPA for every non-API path
func WithStaticFS(staticFS fs.FS) Options {
	return func(s *Server) {
		s.staticFS = staticFS
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Get("/auth/me", authMeHandler)
			r.Get("/catalog", catalogHandler(uc.Model))

			r.Route("/models", func(r chi.Router) {
				h := &modelHandler{uc: uc.Model}
				r.Get("/", h.list)
				r.Post("/", h.create)

				r.Route("/{modelID}", func(r chi.Router) {
					r.Get("/", h.get)
					r.Delete("/", h.delete)
					r.Post("/clone", h.clone)

					r.Get("/draft", h.getDraft)
					r.Delete("/draft", h.discardDraft)
					r.Patch("/sections/{section}", h.updateSection)
					r.Post("/save", h.save)
					r.Post("/validate", h.validate)
					r.Post("/lock", h.lock(true))
					r.Post("/unlock", h.lock(false))
					r.Get("/resolve", h.resolve)

					r.Get("/overrides", h.overrides)
					r.Put("/overrides", h.setOverride)
					r.Get("/overrides/download", h.downloadOverrides)
					r.Delete("/overrides/{entryID}", h.removeOverride)

					u := &uploadHandler{uc: uc.Upload}
					r.Get("/uploads", u.listByModel)
					r.Post("/uploads", u.upload)
					r.Post("/uploads/retry", u.retryFailed)
				})
			})

			r.Route("/uploads/{uploadID}", func(r chi.Router) {
				u := &uploadHandler{uc: uc.Upload}
				r.Get("/", u.get)
				r.Get("/content", u.download)
				r.Post("/retry", u.retry)
			})
		})
	})

	// Static file serving for SPA (catch-all, must be last)
	if s.staticFS != nil {
		r.Get("/*", spaHandler(s.staticFS))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger attaches a logger tagged with the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// spaHandler handles SPA routing by serving static files and falling back to index.html
func spaHandler(staticFS fs.FS) http.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(r.URL.Path, "/")

		if urlPath == "" {
			urlPath = "index.html"
		}

		file, err := staticFS.Open(urlPath)
		if err != nil {
			// Unknown path, serve index.html for client side routing
			indexFile, err := staticFS.Open("index.html")
			if err != nil {
				http.NotFound(w, r)
				return
			}
			defer safe.Close(r.Context(), indexFile)
			w.Header().Set("Content-Type", "text/html")
			safe.Copy(r.Context(), w, indexFile)
			return
		}
		safe.Close(r.Context(), file)

		fileServer.ServeHTTP(w, r)
	}
}
