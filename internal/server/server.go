package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"callpulse/internal/analysis"
	"callpulse/internal/company"
	"callpulse/internal/interfaces"
	"callpulse/internal/logger"
	"callpulse/internal/store"
	"callpulse/internal/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// sentimentDisplayFields is the subset of the structured sentiment report
// exposed through the API.
var sentimentDisplayFields = []string{
	"sentiment_score",
	"sentiment_explanation",
	"analyst_reaction_score",
	"analyst_reaction_explanation",
	"key_sentiment_indicators",
}

// Server is the REST front-end over the analysis core. Each analyze
// endpoint fetches a ticker's recent transcripts and runs one analysis kind
// over the batch.
type Server struct {
	cfg       *store.Config
	analyzer  *analysis.Analyzer
	fetcher   interfaces.TranscriptFetcher
	companies *company.Lookup
	router    chi.Router
	username  string
	password  string
}

func NewServer(cfg *store.Config, analyzer *analysis.Analyzer, fetcher interfaces.TranscriptFetcher, companies *company.Lookup, username, password string) *Server {
	srv := &Server{
		cfg:       cfg,
		analyzer:  analyzer,
		fetcher:   fetcher,
		companies: companies,
		username:  username,
		password:  password,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(srv.cors)

	r.Get("/ping", srv.handlePing)
	r.Route("/api/analyze", func(r chi.Router) {
		r.Use(srv.basicAuth)
		r.Post("/summary", srv.handleKind(types.KindSummary))
		r.Post("/topics", srv.handleKind(types.KindTopics))
		r.Post("/sentiment", srv.handleKind(types.KindSentiment))
	})

	srv.router = r
	return srv
}

// Handler exposes the router for tests and for custom http.Server setups.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	logger.Info(context.Background(), "Starting HTTP API", "addr", s.cfg.Server.Addr)
	return http.ListenAndServe(s.cfg.Server.Addr, s.router)
}

func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.Server.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// basicAuth enforces HTTP basic auth with constant-time credential
// comparison. Requests are rejected when no credentials are configured.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || s.username == "" || s.password == "" ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="callpulse"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// handleKind builds the analyze handler for one analysis kind.
func (s *Server) handleKind(kind types.AnalysisKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed form body"})
			return
		}
		ticker := r.PostFormValue("ticker")
		if ticker == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ticker is required"})
			return
		}

		transcripts, err := s.fetcher.GetLastNQuarters(ctx, ticker, s.cfg.Analysis.Quarters)
		if err != nil {
			logger.ErrorWithErr(ctx, "Transcript fetch failed", err, "ticker", ticker)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "transcript fetch failed"})
			return
		}

		results, err := s.analyzer.AnalyzeBatch(ctx, transcripts, kind, 0)
		if err != nil {
			logger.ErrorWithErr(ctx, "Batch analysis failed", err, "ticker", ticker, "kind", string(kind))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		if kind == types.KindSentiment {
			writeJSON(w, http.StatusOK, renderSentiment(results))
			return
		}
		writeJSON(w, http.StatusOK, s.renderText(ticker, results))
	}
}

// renderText produces the summary/topics response body. Successful entries
// are prefixed with the company name heading; failures keep the bare
// "ERROR: ..." string clients check for.
func (s *Server) renderText(ticker string, results map[string]analysis.Result) map[string]string {
	name := s.companies.Name(ticker)
	out := make(map[string]string, len(results))
	for id, res := range results {
		if res.Failed() {
			out[id] = res.Render()
			continue
		}
		out[id] = "### Company Name : " + name + " \n\n" + res.Value
	}
	return out
}

// renderSentiment filters each structured report down to the display field
// subset. Failures appear as the "ERROR: ..." string in place of a report.
func renderSentiment(results map[string]analysis.Result) map[string]any {
	out := make(map[string]any, len(results))
	for id, res := range results {
		if res.Failed() || res.Report == nil {
			out[id] = res.Render()
			continue
		}

		full := map[string]any{}
		b, err := json.Marshal(res.Report)
		if err != nil {
			out[id] = res.Render()
			continue
		}
		if err := json.Unmarshal(b, &full); err != nil {
			out[id] = res.Render()
			continue
		}

		filtered := make(map[string]any, len(sentimentDisplayFields))
		for _, field := range sentimentDisplayFields {
			if v, ok := full[field]; ok {
				filtered[field] = v
			}
		}
		out[id] = filtered
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
