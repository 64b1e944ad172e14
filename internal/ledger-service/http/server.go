package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/accountability-ledger/internal/ledger-service/dto"
	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
	"github.com/radieske/accountability-ledger/pkg/contracts/events"
)

// Publisher emite os eventos de ciclo de vida consumidos pelo scoreboard-worker
type Publisher interface {
	PublishBetCreated(context.Context, events.BetCreated) error
	PublishBetResolved(context.Context, events.BetResolved) error
}

type Server struct {
	log    *zap.Logger
	ledger *ledger.Ledger
	publ   Publisher
}

func NewServer(log *zap.Logger, l *ledger.Ledger, p Publisher) *Server {
	return &Server{log: log, ledger: l, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.bets)                // POST cria | GET lista (?quarter=)
	mux.HandleFunc("/bets/pending", s.pendingBets) // GET
	mux.HandleFunc("/bets/", s.betSubroutes)       // GET /bets/{id} | POST /bets/{id}/resolve
	mux.HandleFunc("/accuracy", s.accuracy)        // GET (?quarter=)
	return mux
}

// userID confiável vem do api-gateway via header, depois da checagem de sessão
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBet(w, r)
	case http.MethodGet:
		s.listBets(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	// content só é exigido aqui na borda; o ledger não re-checa
	if req.Content == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return
	}

	var deadline time.Time
	if req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			http.Error(w, "invalid deadline", http.StatusBadRequest)
			return
		}
		deadline = t
	}

	b, err := s.ledger.CreateBet(r.Context(), ledger.NewBet{
		UserID:              userID,
		Content:             req.Content,
		FalsifiableCriteria: req.FalsifiableCriteria,
		Deadline:            deadline,
		Quarter:             req.Quarter,
	})
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	_ = s.publ.PublishBetCreated(r.Context(), events.BetCreated{
		BetID:    b.ID,
		UserID:   b.UserID,
		Quarter:  b.Quarter,
		Deadline: b.Deadline.UnixMilli(),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dto.FromBet(b))
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var (
		bets []ledger.Bet
		err  error
	)
	if q := r.URL.Query().Get("quarter"); q != "" {
		bets, err = s.ledger.GetBetsByQuarter(r.Context(), userID, q)
	} else {
		bets, err = s.ledger.GetUserBets(r.Context(), userID)
	}
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, dto.FromBets(bets))
}

func (s *Server) pendingBets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := callerID(r)
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	bets, err := s.ledger.GetPendingBets(r.Context(), userID)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, dto.FromBets(bets))
}

// betSubroutes trata /bets/{id} e /bets/{id}/resolve
func (s *Server) betSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bets/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.getBet(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "resolve":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.resolveBet(w, r, parts[0])
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request, betID string) {
	userID := callerID(r)
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	b, err := s.ledger.GetBetByID(r.Context(), betID)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	// aposta de outro usuário é indistinguível de inexistente
	if b.UserID != userID {
		http.Error(w, "Bet not found", http.StatusNotFound)
		return
	}
	writeJSON(w, dto.FromBet(b))
}

func (s *Server) resolveBet(w http.ResponseWriter, r *http.Request, betID string) {
	userID := callerID(r)
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req dto.ResolveBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	// o enum é fechado aqui na borda; o ledger já recebe o tipo validado
	outcome, ok := ledger.ParseOutcome(req.Outcome)
	if !ok {
		http.Error(w, "outcome must be hit, miss or excused", http.StatusBadRequest)
		return
	}

	// checagem de posse uma camada acima do ledger, comparando dono e caller
	existing, err := s.ledger.GetBetByID(r.Context(), betID)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	if existing.UserID != userID {
		http.Error(w, "Bet not found", http.StatusNotFound)
		return
	}

	b, err := s.ledger.ResolveBet(r.Context(), betID, ledger.Resolution{
		Outcome:    outcome,
		Evidence:   req.Evidence,
		Reflection: req.Reflection,
	})
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	_ = s.publ.PublishBetResolved(r.Context(), events.BetResolved{
		BetID:   b.ID,
		UserID:  b.UserID,
		Quarter: b.Quarter,
		Outcome: string(*b.Outcome),
	})

	writeJSON(w, dto.FromBet(b))
}

func (s *Server) accuracy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := callerID(r)
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	acc, err := s.ledger.CalculateAccuracy(r.Context(), userID, r.URL.Query().Get("quarter"))
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, acc)
}

// writeLedgerError mapeia a taxonomia do ledger para status HTTP.
// Erros de infraestrutura ficam opacos: logados e respondidos como 500 genérico.
func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Message, http.StatusBadRequest)
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, "Bet not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrAlreadyResolved):
		http.Error(w, "Bet has already been resolved", http.StatusConflict)
	default:
		s.log.Error("ledger op failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
