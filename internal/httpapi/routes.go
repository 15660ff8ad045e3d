package httpapi

import (
	"net/http"
	"strings"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/lobby"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Options struct {
	Tracker       Tracker
	Lobby         *lobby.Lobby
	ControlSecret string
	CORSOrigins   []string
	Log           *zap.Logger
}

func SetupRoutes(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{tracker: opts.Tracker, secret: opts.ControlSecret, log: log.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Control-Secret"},
		MaxAge:         300,
	}))

	// Public routes
	r.Get("/health", Health)
	r.Get("/healthz", Healthz)
	r.Get("/draft", h.GetDraft)
	r.Get("/session", h.GetSession)

	// Control routes (shared-secret gated in the handlers)
	r.Post("/set_match", h.SetMatch)
	r.Delete("/session", h.ClearSession)

	if opts.Lobby != nil {
		r.Get("/ws", ws.Handler(opts.Lobby, wsOrigins(opts.CORSOrigins), log))
	}
	return r
}

// wsOrigins turns the CORS list into websocket origin patterns. "*" in CORS
// means any origin, which coder/websocket spells the same way.
func wsOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "" {
			continue
		}
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		out = append(out, o)
	}
	return out
}
