package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"whisper-audio-service/application/extraction"
	"whisper-audio-service/domain/storage"
)

// Server exposes the extraction pipeline and the artifact store over
// HTTP.
type Server struct {
	extractor  *extraction.Service
	store      storage.ArtifactStore
	graceDelay time.Duration
	logger     zerolog.Logger
}

// New creates a new Server. graceDelay is how long a downloaded
// artifact survives after its stream completes, to tolerate slow
// consumers still reading from the response.
func New(extractor *extraction.Service, store storage.ArtifactStore, graceDelay time.Duration, logger zerolog.Logger) *Server {
	return &Server{
		extractor:  extractor,
		store:      store,
		graceDelay: graceDelay,
		logger:     logger,
	}
}

// Router builds the HTTP routing table. The API is mounted both at the
// root and under /api/youtube, matching what browser clients expect.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	register := func(r chi.Router) {
		r.Post("/info", s.handleInfo)
		r.Post("/extract-audio", s.handleExtract)
		r.Get("/download/{filename}", s.handleDownload)
	}

	register(r)
	r.Route("/api/youtube", register)

	r.Get("/health", s.handleHealth)
	r.Get("/api/health", s.handleHealth)

	return r
}

// requestLogger logs one line per completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
