package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// CookieName é o cookie que carrega o id de sessão emitido no login.
const CookieName = "session_id"

var ErrNoSession = errors.New("session not found")

// Store guarda sessões no Redis com TTL; o valor é o userId do dono.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create emite uma nova sessão para o usuário e retorna o id.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+id, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// UserID resolve uma sessão para o userId dono, ou ErrNoSession.
func (s *Store) UserID(ctx context.Context, sessionID string) (string, error) {
	v, err := s.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Destroy invalida uma sessão (logout).
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, keyPrefix+sessionID).Err()
}

// Middleware valida o cookie de sessão e injeta o X-User-Id confiável
// no request antes do proxy. Header vindo do cliente é sempre descartado.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del("X-User-Id")

		c, err := r.Cookie(CookieName)
		if err != nil {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		userID, err := s.UserID(r.Context(), c.Value)
		if err == ErrNoSession {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "session check failed", http.StatusServiceUnavailable)
			return
		}

		r.Header.Set("X-User-Id", userID)
		next.ServeHTTP(w, r)
	})
}
