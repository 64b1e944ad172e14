package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/accountability-ledger/internal/ledger-service/dto"
	lhttp "github.com/radieske/accountability-ledger/internal/ledger-service/http"
	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger/ledgertest"
	"github.com/radieske/accountability-ledger/pkg/contracts/events"
)

// fakePublisher captura os eventos publicados pelo handler
type fakePublisher struct {
	created  []events.BetCreated
	resolved []events.BetResolved
}

func (f *fakePublisher) PublishBetCreated(_ context.Context, e events.BetCreated) error {
	f.created = append(f.created, e)
	return nil
}

func (f *fakePublisher) PublishBetResolved(_ context.Context, e events.BetResolved) error {
	f.resolved = append(f.resolved, e)
	return nil
}

func newTestServer() (http.Handler, *ledger.Ledger, *fakePublisher) {
	led := ledger.New(ledgertest.New())
	pub := &fakePublisher{}
	srv := lhttp.NewServer(zap.NewNop(), led, pub)
	return srv.Router(), led, pub
}

func doJSON(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		r.Header.Set("X-User-Id", userID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func createBet(t *testing.T, h http.Handler, userID string) dto.BetResponse {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/bets", userID, dto.CreateBetRequest{
		Content:             "dobrar o número de demos até o fim do quarter",
		FalsifiableCriteria: "20 demos agendadas no CRM até a última sexta",
		Deadline:            time.Now().Add(90 * 24 * time.Hour).Format(time.RFC3339),
		Quarter:             "Q1-2025",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.BetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateBetEndpoint(t *testing.T) {
	t.Run("cria e publica evento", func(t *testing.T) {
		h, _, pub := newTestServer()
		resp := createBet(t, h, "u1")

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "u1", resp.UserID)
		assert.Equal(t, "pending", resp.Status)
		assert.Nil(t, resp.Outcome)

		require.Len(t, pub.created, 1)
		assert.Equal(t, resp.ID, pub.created[0].BetID)
	})

	t.Run("sem sessao e 401", func(t *testing.T) {
		h, _, _ := newTestServer()
		w := doJSON(t, h, http.MethodPost, "/bets", "", dto.CreateBetRequest{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("content exigido na borda", func(t *testing.T) {
		h, _, _ := newTestServer()
		w := doJSON(t, h, http.MethodPost, "/bets", "u1", dto.CreateBetRequest{
			FalsifiableCriteria: "x",
			Deadline:            time.Now().Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "content required")
	})

	t.Run("deadline ausente vira 400 do ledger", func(t *testing.T) {
		h, _, _ := newTestServer()
		w := doJSON(t, h, http.MethodPost, "/bets", "u1", dto.CreateBetRequest{
			Content:             "qualquer",
			FalsifiableCriteria: "critério",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Deadline is required")
	})

	t.Run("criterio em branco vira 400 do ledger", func(t *testing.T) {
		h, _, _ := newTestServer()
		w := doJSON(t, h, http.MethodPost, "/bets", "u1", dto.CreateBetRequest{
			Content:             "qualquer",
			FalsifiableCriteria: "   ",
			Deadline:            time.Now().Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Falsifiable criteria is required")
	})

	t.Run("deadline malformado e 400", func(t *testing.T) {
		h, _, _ := newTestServer()
		w := doJSON(t, h, http.MethodPost, "/bets", "u1", dto.CreateBetRequest{
			Content:             "qualquer",
			FalsifiableCriteria: "critério",
			Deadline:            "31/03/2025",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid deadline")
	})
}

func TestResolveBetEndpoint(t *testing.T) {
	t.Run("resolve e publica evento", func(t *testing.T) {
		h, _, pub := newTestServer()
		created := createBet(t, h, "u1")

		ev := "print do CRM anexado"
		w := doJSON(t, h, http.MethodPost, "/bets/"+created.ID+"/resolve", "u1", dto.ResolveBetRequest{
			Outcome:  "hit",
			Evidence: &ev,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.BetResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "resolved", resp.Status)
		require.NotNil(t, resp.Outcome)
		assert.Equal(t, "hit", *resp.Outcome)
		assert.NotNil(t, resp.ResolvedAt)

		require.Len(t, pub.resolved, 1)
		assert.Equal(t, "hit", pub.resolved[0].Outcome)
	})

	t.Run("outcome desconhecido e rejeitado na borda", func(t *testing.T) {
		h, _, pub := newTestServer()
		created := createBet(t, h, "u1")

		w := doJSON(t, h, http.MethodPost, "/bets/"+created.ID+"/resolve", "u1", dto.ResolveBetRequest{
			Outcome: "won",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, pub.resolved)
	})

	t.Run("dupla resolucao e 409", func(t *testing.T) {
		h, _, _ := newTestServer()
		created := createBet(t, h, "u1")

		w := doJSON(t, h, http.MethodPost, "/bets/"+created.ID+"/resolve", "u1", dto.ResolveBetRequest{Outcome: "miss"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, h, http.MethodPost, "/bets/"+created.ID+"/resolve", "u1", dto.ResolveBetRequest{Outcome: "hit"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Bet has already been resolved")
	})

	t.Run("aposta inexistente e 404", func(t *testing.T) {
		h, _, _ := newTestServer()
		w := doJSON(t, h, http.MethodPost, "/bets/nope/resolve", "u1", dto.ResolveBetRequest{Outcome: "hit"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Bet not found")
	})

	t.Run("aposta de outro usuario e 404", func(t *testing.T) {
		h, _, pub := newTestServer()
		created := createBet(t, h, "u1")

		w := doJSON(t, h, http.MethodPost, "/bets/"+created.ID+"/resolve", "u2", dto.ResolveBetRequest{Outcome: "hit"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, pub.resolved)

		// dono ainda consegue resolver depois
		w = doJSON(t, h, http.MethodPost, "/bets/"+created.ID+"/resolve", "u1", dto.ResolveBetRequest{Outcome: "hit"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestListAndDetailEndpoints(t *testing.T) {
	h, _, _ := newTestServer()
	b1 := createBet(t, h, "u1")
	b2 := createBet(t, h, "u1")
	createBet(t, h, "u2")

	t.Run("lista so do usuario", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/bets", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var bets []dto.BetResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bets))
		assert.Len(t, bets, 2)
	})

	t.Run("filtro por quarter", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/bets?quarter=Q4-2019", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, strings.TrimSpace(w.Body.String()), "[]")
	})

	t.Run("pendentes", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/bets/pending", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var bets []dto.BetResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bets))
		assert.Len(t, bets, 2)
	})

	t.Run("detalhe do dono", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/bets/"+b1.ID, "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got dto.BetResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, b1.ID, got.ID)
	})

	t.Run("detalhe de outro usuario e 404", func(t *testing.T) {
		w := doJSON(t, h, http.MethodGet, "/bets/"+b2.ID, "u2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAccuracyEndpoint(t *testing.T) {
	h, led, _ := newTestServer()
	ctx := context.Background()

	outcomes := []ledger.Outcome{ledger.OutcomeHit, ledger.OutcomeHit, ledger.OutcomeMiss, ledger.OutcomeExcused}
	for _, o := range outcomes {
		b, err := led.CreateBet(ctx, ledger.NewBet{
			UserID:              "u1",
			Content:             "meta",
			FalsifiableCriteria: "critério",
			Deadline:            time.Now().Add(time.Hour),
			Quarter:             "Q1-2025",
		})
		require.NoError(t, err)
		_, err = led.ResolveBet(ctx, b.ID, ledger.Resolution{Outcome: o})
		require.NoError(t, err)
	}

	w := doJSON(t, h, http.MethodGet, "/accuracy", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var acc ledger.Accuracy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acc))
	assert.Equal(t, ledger.Accuracy{Percentage: 67, Total: 3, Hits: 2, Misses: 1, Excused: 1}, acc)

	// quarter sem apostas julgadas volta zerado, nunca erro
	w = doJSON(t, h, http.MethodGet, "/accuracy?quarter=Q3-2030", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acc))
	assert.Equal(t, ledger.Accuracy{}, acc)
}
