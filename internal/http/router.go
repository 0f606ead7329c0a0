package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ideaspark/internal/auth"
	"ideaspark/internal/config"
	"ideaspark/internal/http/handler"
	mw "ideaspark/internal/http/middleware"
	"ideaspark/internal/journal"
)

type Deps struct {
	Journals *journal.Service
	Users    auth.Users
	JWT      *auth.JWT
	Log      *zap.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)

	r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{Users: d.Users, JWT: d.JWT, Log: d.Log}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(d.JWT)).Get("/me", me.Me)

	jh := &handler.JournalHandler{Svc: d.Journals, Log: d.Log}

	r.Route("/journal", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Post("/", jh.Initialize)
		r.Get("/", jh.Get)
		r.Get("/streak", jh.Streak)
		r.Post("/ideas", jh.LogIdea)
	})

	r.Route("/journals/{key}", func(r chi.Router) {
		r.Use(auth.RequireAuth(d.JWT))

		r.Get("/", jh.Get)
		r.Get("/streak", jh.Streak)
		r.Post("/ideas", jh.LogIdea)
	})

	return r
}
