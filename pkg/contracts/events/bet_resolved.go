package events

type BetResolved struct {
	BetID    string `json:"bet_id"`
	UserID   string `json:"user_id"`
	Quarter  string `json:"quarter"`
	Outcome  string `json:"outcome"` // "hit" | "miss" | "excused"
	TsUnixMs int64  `json:"ts_unix_ms"`
}
