package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
	"github.com/radieske/accountability-ledger/internal/scoreboard-worker/stats"
)

// Scoreboard é a visão derivada servida a dashboards; a fonte de verdade segue no Postgres.
type Scoreboard struct {
	Accuracy        ledger.Accuracy `json:"accuracy"`
	Streaks         stats.Streaks   `json:"streaks"`
	UpdatedAtUnixMs int64           `json:"updated_at_unix_ms"`
}

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func key(userID, quarter string) string {
	if quarter == "" {
		return "scoreboard:" + userID
	}
	return "scoreboard:" + userID + ":" + quarter
}

func (c *Cache) Get(ctx context.Context, userID, quarter string) (Scoreboard, bool, error) {
	var sb Scoreboard
	b, err := c.R.Get(ctx, key(userID, quarter)).Bytes()
	if err == redis.Nil {
		return sb, false, nil
	}
	if err != nil {
		return sb, false, err
	}
	return sb, true, json.Unmarshal(b, &sb)
}

func (c *Cache) Set(ctx context.Context, userID, quarter string, sb Scoreboard, ttl time.Duration) error {
	b, _ := json.Marshal(sb)
	return c.R.Set(ctx, key(userID, quarter), b, ttl).Err()
}
