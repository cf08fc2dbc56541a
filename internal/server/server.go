// Package server wires the HTTP surface.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"Civica/internal/auth"
	"Civica/internal/calc/gradation"
	"Civica/internal/calc/importer"
	"Civica/internal/calc/quantity"
	"Civica/internal/calc/report"
	"Civica/internal/calc/session"
	"Civica/internal/calc/standards"
	"Civica/internal/logger"
	"Civica/internal/metrics"
	"Civica/internal/repo"
	"Civica/internal/saved"
)

type Deps struct {
	Registry *session.Registry
	Repo     repo.Repository
	Auth     *auth.Authenv
	Limiter  *auth.IPRateLimiter
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// New builds the router. Metrics and Limiter are optional.
func New(d Deps) http.Handler {
	lib := d.Registry.Library()
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	r := mux.NewRouter()
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(logger.Middleware(d.Log))
	if d.Metrics != nil {
		api.Use(d.Metrics.Middleware)
	}
	if d.Limiter != nil {
		api.Use(d.Limiter.LimitMiddleware)
	}

	api.HandleFunc("/login", d.Auth.AuthHandler).Methods("POST")
	api.HandleFunc("/register", d.Auth.RegisterHandler).Methods("POST")

	catalogH := &standards.Handler{Library: lib}
	api.HandleFunc("/calculators", catalogH.Calculators).Methods("GET")
	api.HandleFunc("/calculators/{calc}/standards", catalogH.Standards).Methods("GET")
	api.HandleFunc("/calculators/{calc}/standards/{standard}", catalogH.Standard).Methods("GET")

	gradationH := &gradation.Handler{Library: lib}
	quantityH := &quantity.Handler{Library: lib}
	importH := &importer.Handler{Library: lib}
	api.HandleFunc("/tools/gradation/calc", gradationH.Calc).Methods("POST")
	api.HandleFunc("/tools/gradation/recommend", gradationH.Recommend).Methods("POST")
	api.HandleFunc("/tools/gradation/import", importH.Gradation).Methods("POST")
	api.HandleFunc("/tools/quantity/calc", quantityH.Calc).Methods("POST")
	api.HandleFunc("/tools/bod/calc", quantityH.BOD).Methods("POST")

	sessionH := &session.Handler{Registry: d.Registry}
	reportH := &report.Handler{Registry: d.Registry}
	api.HandleFunc("/sessions", sessionH.Create).Methods("POST")
	api.HandleFunc("/sessions/{id}", sessionH.Get).Methods("GET")
	api.HandleFunc("/sessions/{id}", sessionH.Delete).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/events", sessionH.Events).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", sessionH.Reset).Methods("POST")
	api.HandleFunc("/sessions/{id}/report.pdf", reportH.Session).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(d.Auth.AuthMiddleware)

	savedH := &saved.Handler{Repo: d.Repo, Registry: d.Registry, Log: d.Log}
	secureApi.HandleFunc("/sessions/{id}/save", savedH.Save).Methods("POST")
	secureApi.HandleFunc("/favorites/{calculator}", savedH.ToggleFavorite).Methods("POST")
	secureApi.HandleFunc("/favorites/{calculator}", savedH.CheckFavorite).Methods("GET")
	secureApi.HandleFunc("/saved", savedH.List).Methods("GET")

	return CORS(r)
}
