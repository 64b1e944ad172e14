package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/accountability-ledger/internal/gateway/session"
	"github.com/radieske/accountability-ledger/internal/shared/cache"
	"github.com/radieske/accountability-ledger/internal/shared/config"
	"github.com/radieske/accountability-ledger/internal/shared/logger"
	"github.com/radieske/accountability-ledger/internal/shared/metrics"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Redis: onde vivem as sessões
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	sessions := session.NewStore(rdb, cfg.SessionTTL)

	// target
	ledgerURL := os.Getenv("LEDGER_URL")
	if ledgerURL == "" {
		ledgerURL = "http://localhost:8083"
	}
	ledgerProxy := rp(ledgerURL)

	mux := http.NewServeMux()

	// rotas do ledger (ex.: /api/bets/* -> ledger-service), atrás da sessão
	mux.Handle("/api/bets", http.StripPrefix("/api", sessions.Middleware(ledgerProxy)))
	mux.Handle("/api/bets/", http.StripPrefix("/api", sessions.Middleware(ledgerProxy)))
	mux.Handle("/api/accuracy", http.StripPrefix("/api", sessions.Middleware(ledgerProxy)))

	// logout invalida a sessão corrente
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c, err := r.Cookie(session.CookieName)
		if err != nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := sessions.Destroy(r.Context(), c.Value); err != nil {
			http.Error(w, "logout failed", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
